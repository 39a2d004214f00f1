package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Write and idle timeouts stay generous because
// document uploads and upstream scoring calls both sit inside a request.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
