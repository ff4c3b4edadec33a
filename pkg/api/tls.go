package api

import (
	"crypto/tls"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/acme/autocert"

	"sitemap-console/pkg/config"
)

// buildAutocert prepares Let's Encrypt certificates for the console hosts.
// The returned server answers HTTP-01 challenges and redirects everything
// else to HTTPS.
func buildAutocert(cfg config.TLSConfig, logger *slog.Logger) (*tls.Config, *http.Server) {
	m := &autocert.Manager{
		Cache:      autocert.DirCache(cfg.CacheDir),
		Prompt:     autocert.AcceptTOS,
		Email:      cfg.Email,
		HostPolicy: autocert.HostWhitelist(cfg.Hosts...),
	}

	acmeHTTP := &http.Server{
		Addr:    cfg.HTTP01Address,
		Handler: m.HTTPHandler(nil),
	}

	tlsCfg := m.TLSConfig()
	tlsCfg.MinVersion = tls.VersionTLS12

	logger.Info("Autocert enabled for the console (HTTP-01)", "hosts", cfg.Hosts, "cache", cfg.CacheDir)
	return tlsCfg, acmeHTTP
}
