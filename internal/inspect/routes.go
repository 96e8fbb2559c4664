package inspect

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/lnp-works/tlvstream/internal/observability"
	"github.com/lnp-works/tlvstream/tlv"
)

const maxRequestBytes = 4 * tlv.MaxRecordLen

// recordJSON is one decoded record in an inspection response.
type recordJSON struct {
	Type  uint64 `json:"type"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"uptime":    time.Since(s.started).String(),
			"component": "tlv-inspect",
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"uptime": time.Since(s.started).String(),
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.POST("/v1/decode", s.handleDecode)
}

// handleDecode accepts one TLV stream, raw for application/octet-stream
// bodies and hex text otherwise, and responds with the decoded records or
// the failure kind.
func (s *Server) handleDecode(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return
	}
	if len(body) > maxRequestBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "stream too large"})
		return
	}

	data := body
	if c.ContentType() != "application/octet-stream" {
		trimmed := strings.TrimSpace(string(body))
		data, err = hex.DecodeString(trimmed)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body is not valid hex"})
			return
		}
	}

	start := time.Now()
	stream, err := s.decoder.Decode(bytes.NewReader(data))
	if err != nil {
		observability.RecordDecode(0, time.Since(start), err)
		kind := observability.ErrorKind(err)
		log.Debug().Err(err).Str("kind", kind).Msg("decode rejected")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
			"kind":  kind,
		})
		return
	}
	observability.RecordDecode(stream.Len(), time.Since(start), nil)

	records := make([]recordJSON, 0, stream.Len())
	for _, id := range stream.TypeIDs() {
		records = append(records, renderRecord(stream, id))
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   stream.Len(),
		"records": records,
	})
}

func renderRecord(stream *tlv.Stream, id tlv.TypeID) recordJSON {
	if v, ok := tlv.Get[tlv.RawRecord](stream, id); ok {
		return recordJSON{Type: uint64(id), Kind: "raw", Value: hex.EncodeToString(v)}
	}
	if v, ok := tlv.Get[uint16](stream, id); ok {
		return recordJSON{Type: uint64(id), Kind: "u16", Value: fmt.Sprintf("%d", v)}
	}
	if v, ok := tlv.Get[uint32](stream, id); ok {
		return recordJSON{Type: uint64(id), Kind: "u32", Value: fmt.Sprintf("%d", v)}
	}
	if v, ok := tlv.Get[uint64](stream, id); ok {
		return recordJSON{Type: uint64(id), Kind: "u64", Value: fmt.Sprintf("%d", v)}
	}
	if v, ok := tlv.Get[[]byte](stream, id); ok {
		return recordJSON{Type: uint64(id), Kind: "bytes", Value: hex.EncodeToString(v)}
	}
	v, _ := stream.Entry(id).Get()
	return recordJSON{Type: uint64(id), Kind: "opaque", Value: fmt.Sprintf("%v", v)}
}
