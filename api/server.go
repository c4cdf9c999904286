package api

import (
	"net/http"
	"time"
)

// NewServer wraps the handler in an http.Server with sane timeouts.
func NewServer(port string, h *Handler) *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      h.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
