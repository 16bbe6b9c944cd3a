package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener. TLS is applied according
// to the server's TLSOptions.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger,
	}
	var challenge *http.Server
	if s.tls.enabled() {
		setup, err := s.tlsConfig(ctx)
		if err != nil {
			_ = ln.Close()
			return err
		}
		srv.TLSConfig = setup.conf
		if setup.challenge != nil && s.tls.HTTPAddr != "" {
			challenge = &http.Server{Addr: s.tls.HTTPAddr, Handler: setup.challenge, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				if err := challenge.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.logger.Printf("challenge server failed addr=%s err=%v", s.tls.HTTPAddr, err)
				}
			}()
		}
	}

	errc := make(chan error, 1)
	go func() {
		if srv.TLSConfig != nil {
			errc <- srv.ServeTLS(ln, "", "")
			return
		}
		errc <- srv.Serve(ln)
	}()
	s.logger.Printf("serving site addr=%s tls=%t", ln.Addr(), s.tls.enabled())

	select {
	case err := <-errc:
		if challenge != nil {
			_ = challenge.Close()
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if challenge != nil {
		_ = challenge.Shutdown(shutdownCtx)
	}
	err := srv.Shutdown(shutdownCtx)
	if serr := <-errc; serr != nil && !errors.Is(serr, http.ErrServerClosed) {
		return serr
	}
	s.logger.Printf("stopped site server")
	return err
}

type tlsSetup struct {
	conf      *tls.Config
	challenge http.Handler
}

func (s *Server) tlsConfig(ctx context.Context) (tlsSetup, error) {
	if s.tls.Domain != "" {
		conf, h, err := BuildCertMagicTLS(ctx, s.tls, http.HandlerFunc(redirectHTTPS))
		if err != nil {
			return tlsSetup{}, err
		}
		return tlsSetup{conf: conf, challenge: h}, nil
	}
	conf, err := BuildFileTLS(s.tls.CertFile, s.tls.KeyFile)
	if err != nil {
		return tlsSetup{}, err
	}
	return tlsSetup{conf: conf}, nil
}
