package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/lnp-works/tlvstream/internal/inspect"
	"github.com/lnp-works/tlvstream/internal/logging"
	"github.com/lnp-works/tlvstream/tlv"
)

func main() {
	logging.ConfigureRuntime()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "dump":
		err = runDump(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "tlvctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tlvctl <dump|serve> [-config file] [args]")
}

// runDump decodes one binary TLV stream file ("-" for stdin) and prints its
// records.
func runDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	configPath := fs.String("config", "", "path to tlvctl config.toml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("dump wants exactly one stream file")
	}

	cfg, err := loadRuntimeConfig(*configPath)
	if err != nil {
		return err
	}

	in := os.Stdin
	if path := fs.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	decoder := tlv.NewDecoder(cfg.Registry)
	stream, err := decoder.Decode(bufio.NewReader(in))
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for _, id := range stream.TypeIDs() {
		name := cfg.Names[id]
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(out, "%d\t%s\t%s\n", id, name, renderValue(stream, id))
	}
	log.Info().Int("records", stream.Len()).Msg("stream decoded")
	return nil
}

func renderValue(stream *tlv.Stream, id tlv.TypeID) string {
	if v, ok := tlv.Get[tlv.RawRecord](stream, id); ok {
		return "raw:" + hex.EncodeToString(v)
	}
	if v, ok := tlv.Get[uint16](stream, id); ok {
		return fmt.Sprintf("u16:%d", v)
	}
	if v, ok := tlv.Get[uint32](stream, id); ok {
		return fmt.Sprintf("u32:%d", v)
	}
	if v, ok := tlv.Get[uint64](stream, id); ok {
		return fmt.Sprintf("u64:%d", v)
	}
	if v, ok := tlv.Get[[]byte](stream, id); ok {
		return "bytes:" + hex.EncodeToString(v)
	}
	v, _ := stream.Entry(id).Get()
	return fmt.Sprintf("opaque:%v", v)
}

// runServe runs the inspector HTTP service until interrupted.
func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to tlvctl config.toml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadRuntimeConfig(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := inspect.NewServer(cfg.Inspect, tlv.NewDecoder(cfg.Registry))
	return server.Run(ctx)
}
