package main

import (
	"fmt"

	mdhttp "github.com/fwojciec/mdextract/http"
)

// Run starts the HTTP server and blocks until the context is cancelled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := mdhttp.NewServer(deps.Processor, deps.Logger)
	s.Addr = c.Addr
	if c.MaxUpload > 0 {
		s.MaxUploadSize = c.MaxUpload
	}
	s.AllowedOrigins = c.AllowedOrigins

	if err := s.Open(); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.Addr, err)
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", s.URL())

	<-deps.Ctx.Done()
	return s.Close()
}
