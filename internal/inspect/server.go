// Package inspect exposes the TLV decoder as a small debug/ops HTTP
// surface.
//
// Ownership boundary:
// - decode-over-HTTP endpoint for stream inspection
// - health/ready/metrics routes
//
// The decoder itself lives in package tlv; inspect owns only the transport
// and the JSON shape of decoded records.
package inspect

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lnp-works/tlvstream/internal/observability"
	"github.com/lnp-works/tlvstream/tlv"
)

// Config shapes one inspector instance.
type Config struct {
	ListenAddr  string
	CorsOrigins []string
}

func DefaultConfig() Config {
	return Config{ListenAddr: ":9300"}
}

// Server owns the HTTP surface and the decoder it serves.
type Server struct {
	cfg     Config
	decoder *tlv.Decoder
	router  *gin.Engine
	httpSrv *http.Server
	started time.Time
}

// NewServer builds an inspector around an already-populated decoder.
func NewServer(cfg Config, decoder *tlv.Decoder) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(observability.RequestLogger(log.Logger))
	router.Use(observability.RequestMetricsMiddleware())
	if len(cfg.CorsOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CorsOrigins
		router.Use(cors.New(corsCfg))
	}

	s := &Server{
		cfg:     cfg,
		decoder: decoder,
		router:  router,
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

// Run serves until ctx is cancelled, then drains with a short shutdown
// grace period.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{Addr: s.cfg.ListenAddr, Handler: s.router}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.ListenAddr).Msg("inspect server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
			return
		}
		errc <- nil
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }
