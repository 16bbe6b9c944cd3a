package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/viper"
)

// CheckConfigValidity reports every problem in v at once.
func CheckConfigValidity(v *viper.Viper) error {
	var errs []error

	switch src := ContentSource(v); src {
	case SourceFiles, SourceSQLite:
	default:
		errs = append(errs, fmt.Errorf("content.source must be %q or %q, got %q", SourceFiles, SourceSQLite, src))
	}
	if dir := ResolveContentDir(v); dir != "" {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			errs = append(errs, fmt.Errorf("content_dir %s is not a directory", dir))
		}
	}
	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if err := checkAddr(v.GetString("http_addr")); err != nil {
		errs = append(errs, fmt.Errorf("http_addr: %w", err))
	}
	if style := strings.TrimSpace(v.GetString("render.highlight_style")); style != "" {
		if _, ok := styles.Registry[strings.ToLower(style)]; !ok {
			errs = append(errs, fmt.Errorf("render.highlight_style %q is not a known chroma style", style))
		}
	}
	if strings.TrimSpace(v.GetString("export.out_dir")) == "" {
		errs = append(errs, errors.New("export.out_dir is required"))
	}

	domain := strings.TrimSpace(v.GetString("tls.domain"))
	cert := strings.TrimSpace(v.GetString("tls.cert_file"))
	key := strings.TrimSpace(v.GetString("tls.key_file"))
	if (cert == "") != (key == "") {
		errs = append(errs, errors.New("tls.cert_file and tls.key_file must be set together"))
	}
	if domain != "" && cert != "" {
		errs = append(errs, errors.New("tls.domain and tls.cert_file are mutually exclusive"))
	}
	if domain != "" {
		if err := checkAddr(v.GetString("tls.http_addr")); err != nil {
			errs = append(errs, fmt.Errorf("tls.http_addr: %w", err))
		}
	}
	return errors.Join(errs...)
}

func checkAddr(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("address is required")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return err
	}
	return nil
}
