package extractor

import (
	"fmt"
	"net/http"

	"golang.org/x/net/proxy"

	"customsdesk/internal/config"
)

// NewHTTPClient returns an HTTP client bounded by the configured timeout.
// When a proxy host is set, connections are dialed through SOCKS5 and host
// names are resolved on the proxy side.
func NewHTTPClient(cfg *config.ExtractorConfig) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.Proxy.Enabled() {
		var auth *proxy.Auth
		if cfg.Proxy.User != "" {
			auth = &proxy.Auth{User: cfg.Proxy.User, Password: cfg.Proxy.Password}
		}
		dialer, err := proxy.SOCKS5("tcp", cfg.Proxy.Address(), auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("configuring socks5 proxy %s: %w", cfg.Proxy.Address(), err)
		}
		contextDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks5 dialer for %s does not support contexts", cfg.Proxy.Address())
		}
		transport.Proxy = nil
		transport.DialContext = contextDialer.DialContext
	}

	return &http.Client{Timeout: cfg.Timeout(), Transport: transport}, nil
}
