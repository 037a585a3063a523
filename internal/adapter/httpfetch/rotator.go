package httpfetch

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
)

// Rotator hands out proxies in round-robin order and user agents at random.
// Either list may be empty.
type Rotator struct {
	proxies    []*url.URL
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
}

// NewRotator parses the proxy URLs up front so a typo fails at startup.
func NewRotator(proxies, userAgents []string) (*Rotator, error) {
	r := &Rotator{userAgents: userAgents}
	for _, p := range proxies {
		u, err := url.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("parse proxy %q: %w", p, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("parse proxy %q: scheme and host are required", p)
		}
		r.proxies = append(r.proxies, u)
	}
	return r, nil
}

// HasProxies reports whether Proxy will ever return a proxy.
func (r *Rotator) HasProxies() bool {
	return len(r.proxies) > 0
}

// Proxy has the signature of http.Transport.Proxy.
func (r *Rotator) Proxy(*http.Request) (*url.URL, error) {
	if len(r.proxies) == 0 {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.proxies[r.proxyIndex]
	r.proxyIndex = (r.proxyIndex + 1) % len(r.proxies)
	return p, nil
}

// UserAgent returns one of the configured agents, or "" when there are none.
func (r *Rotator) UserAgent() string {
	if len(r.userAgents) == 0 {
		return ""
	}
	return r.userAgents[rand.IntN(len(r.userAgents))]
}
