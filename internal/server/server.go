package server

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/bookrise/internal/config"
)

// NewServer serves the handler over HTTP/1.1 and cleartext HTTP/2.
func NewServer(cfg config.ServerConfig, service Service) *http.Server {
	handler := NewHandler(service)
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           CORSMiddleware(h2c.NewHandler(handler, &http2.Server{}), cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
