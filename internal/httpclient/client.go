// Package httpclient builds the HTTP clients embedding providers talk
// through. A client is bound to one base URL and never follows a redirect
// to another host, so API keys stay with the endpoint they were issued for.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teranos/fundlink/errors"
)

// DefaultMaxRedirects caps redirects when Options leaves it zero.
const DefaultMaxRedirects = 3

// Options tunes a Client.
type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	// BlockPrivateIP refuses connections that resolve to private, loopback
	// or link-local addresses. Local providers such as Ollama leave it off.
	BlockPrivateIP bool
}

// Client is an http.Client bound to a base URL.
type Client struct {
	*http.Client
	base *url.URL
	opts Options
}

// New validates baseURL and returns a Client bound to it.
func New(baseURL string, opts Options) (*Client, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}

	c := &Client{
		Client: &http.Client{Timeout: opts.Timeout},
		base:   base,
		opts:   opts,
	}
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= c.opts.MaxRedirects {
			return errors.Newf("stopped after %d redirects", c.opts.MaxRedirects)
		}
		if err := c.checkHost(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}

	if opts.BlockPrivateIP {
		dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
		c.Transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, _, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, errors.Wrap(err, "invalid address")
				}
				ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
				if err != nil {
					return nil, errors.Wrapf(err, "failed to resolve host %q", host)
				}
				for _, ip := range ips {
					if IsPrivateIP(ip) {
						return nil, errors.Newf("private IP address blocked: %s", ip)
					}
				}
				return dialer.DialContext(ctx, network, addr)
			},
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}
	return c, nil
}

// ParseBaseURL accepts absolute http(s) URLs without embedded credentials.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "invalid base URL"), "use a URL such as http://localhost:11434")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, errors.Newf("scheme %q not allowed (allowed: http, https)", u.Scheme)
	}
	if u.User != nil {
		return nil, errors.New("base URL must not carry credentials")
	}
	if u.Hostname() == "" {
		return nil, errors.New("base URL missing hostname")
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// BaseURL returns the bound base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Endpoint joins path onto the base URL.
func (c *Client) Endpoint(path string) string {
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

// Do sends req after checking it targets the bound host.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.checkHost(req.URL); err != nil {
		return nil, errors.Wrap(err, "request blocked")
	}
	return c.Client.Do(req)
}

func (c *Client) checkHost(u *url.URL) error {
	if !strings.EqualFold(u.Host, c.base.Host) {
		return errors.Newf("host %q differs from %q", u.Host, c.base.Host)
	}
	if !strings.EqualFold(u.Scheme, c.base.Scheme) {
		return errors.Newf("scheme %q differs from %q", u.Scheme, c.base.Scheme)
	}
	return nil
}

var privateBlocks = []net.IPNet{
	{IP: net.IPv4(10, 0, 0, 0), Mask: net.CIDRMask(8, 32)},
	{IP: net.IPv4(172, 16, 0, 0), Mask: net.CIDRMask(12, 32)},
	{IP: net.IPv4(192, 168, 0, 0), Mask: net.CIDRMask(16, 32)},
	{IP: net.IPv4(127, 0, 0, 0), Mask: net.CIDRMask(8, 32)},
	{IP: net.IPv4(169, 254, 0, 0), Mask: net.CIDRMask(16, 32)},
	{IP: net.IPv4(0, 0, 0, 0), Mask: net.CIDRMask(8, 32)},
	{IP: net.IPv4(224, 0, 0, 0), Mask: net.CIDRMask(4, 32)},
	{IP: net.IPv4(240, 0, 0, 0), Mask: net.CIDRMask(4, 32)},
}

// IsPrivateIP reports whether ip is private, loopback, link-local,
// multicast or otherwise not publicly routable.
func IsPrivateIP(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		for _, block := range privateBlocks {
			if block.Contains(ip4) {
				return true
			}
		}
		return false
	}
	if len(ip) != net.IPv6len {
		return false
	}
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsMulticast() || ip.IsUnspecified() {
		return true
	}
	// unique local fc00::/7
	return ip[0]&0xfe == 0xfc
}
