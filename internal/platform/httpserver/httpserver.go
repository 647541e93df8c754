package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server serving the audit API. Reconstructing a large
// history can take a while, so the write timeout stays well above the
// read-side ones.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
