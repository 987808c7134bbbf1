// Proxy rewrites requests bound for the public Lanyard API to a self-hosted instance
package proxy

import (
	"net/http"
	"strings"
)

type Logger func(s string)

type HostRewriter struct {
	host   string
	scheme string
	next   http.RoundTripper
	logger Logger
}

// NewHostRewriter returns a RoundTripper sending every request to host.
//
// host may carry a scheme ("https://lanyard.example.com"), otherwise http is used
// as self-hosted instances usually sit behind a local port
func NewHostRewriter(host string, next http.RoundTripper, logger Logger) HostRewriter {
	scheme := "http"

	if before, after, ok := strings.Cut(host, "://"); ok {
		scheme = before
		host = after
	}

	if next == nil {
		next = http.DefaultTransport
	}

	return HostRewriter{
		host:   strings.TrimSuffix(host, "/"),
		scheme: scheme,
		next:   next,
		logger: logger,
	}
}

func (rt HostRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the callers request
	req = req.Clone(req.Context())

	from := req.URL.Host

	req.URL.Host = rt.host
	req.URL.Scheme = rt.scheme
	req.Host = rt.host

	if rt.logger != nil {
		rt.logger("Rewriting host to " + rt.host + " from " + from + " [" + req.URL.String() + "]")
	}

	return rt.next.RoundTrip(req)
}
