package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/caddyserver/certmagic"
)

// TLSOptions selects how Serve terminates TLS. Domain enables ACME through
// CertMagic; CertFile/KeyFile load a static keypair; neither means plain HTTP.
type TLSOptions struct {
	Domain string
	Email  string
	// CA defaults to Let's Encrypt production.
	CA string
	// StorageDir defaults to $XDG_CACHE_HOME/homepage/certmagic.
	StorageDir string
	// HTTPAddr serves the HTTP-01 challenge and redirects to HTTPS.
	HTTPAddr string

	CertFile string
	KeyFile  string
}

func (o TLSOptions) enabled() bool {
	return o.Domain != "" || (o.CertFile != "" && o.KeyFile != "")
}

// BuildCertMagicTLS provisions or loads certificates for o.Domain and returns
// the TLS config plus the HTTP-01 challenge handler wrapping fallback.
func BuildCertMagicTLS(ctx context.Context, o TLSOptions, fallback http.Handler) (*tls.Config, http.Handler, error) {
	if o.Domain == "" {
		return nil, nil, errors.New("tls: domain is required")
	}
	cm := certmagic.NewDefault()
	storage := o.StorageDir
	if storage == "" {
		storage = defaultCertDir()
	}
	if err := os.MkdirAll(storage, 0o700); err != nil {
		return nil, nil, fmt.Errorf("tls: cert storage: %w", err)
	}
	cm.Storage = &certmagic.FileStorage{Path: storage}

	issuer := certmagic.NewACMEIssuer(cm, certmagic.ACMEIssuer{
		CA:                      ifEmpty(o.CA, certmagic.LetsEncryptProductionCA),
		Email:                   o.Email,
		Agreed:                  true,
		DisableTLSALPNChallenge: true,
	})
	cm.Issuers = []certmagic.Issuer{issuer}

	if err := cm.ManageSync(ctx, []string{o.Domain}); err != nil {
		return nil, nil, fmt.Errorf("tls: manage %s: %w", o.Domain, err)
	}
	conf := cm.TLSConfig()
	conf.MinVersion = tls.VersionTLS12
	return conf, issuer.HTTPChallengeHandler(fallback), nil
}

func defaultCertDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "homepage", "certmagic")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "homepage", "certmagic")
}

func ifEmpty(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

// BuildFileTLS loads a certificate from PEM files for BYO certs.
func BuildFileTLS(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" || keyFile == "" {
		return nil, errors.New("tls: both cert_file and key_file are required")
	}
	c, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tls: load keypair: %w", err)
	}
	now := time.Now()
	for i, b := range c.Certificate {
		cert, err := x509.ParseCertificate(b)
		if err != nil {
			return nil, fmt.Errorf("tls: invalid certificate at index %d: %w", i, err)
		}
		if now.Before(cert.NotBefore) {
			return nil, fmt.Errorf("tls: certificate not yet valid (starts %s)", cert.NotBefore)
		}
		if now.After(cert.NotAfter) {
			return nil, fmt.Errorf("tls: certificate expired on %s", cert.NotAfter)
		}
	}
	return &tls.Config{Certificates: []tls.Certificate{c}, MinVersion: tls.VersionTLS12}, nil
}

// redirectHTTPS sends plain HTTP requests to the same path over HTTPS.
func redirectHTTPS(w http.ResponseWriter, r *http.Request) {
	target := "https://" + hostOnly(r.Host) + r.URL.RequestURI()
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

func hostOnly(hostport string) string {
	for i := len(hostport) - 1; i >= 0; i-- {
		switch hostport[i] {
		case ':':
			return hostport[:i]
		case ']':
			return hostport
		}
	}
	return hostport
}
