package httpclient

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr string
	}{
		{name: "ollama default", url: "http://localhost:11434", want: "http://localhost:11434"},
		{name: "trailing slash trimmed", url: "https://api.example.com/v1/", want: "https://api.example.com/v1"},
		{name: "file scheme", url: "file:///etc/passwd", wantErr: "scheme"},
		{name: "no scheme", url: "localhost:11434", wantErr: "scheme"},
		{name: "credentials", url: "http://user:pw@example.com", wantErr: "credentials"},
		{name: "no host", url: "http:///path", wantErr: "hostname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseBaseURL(tt.url)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestClient_Endpoint(t *testing.T) {
	c, err := New("http://localhost:11434/", Options{Timeout: time.Second})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434/api/embeddings", c.Endpoint("/api/embeddings"))
	assert.Equal(t, "http://localhost:11434", c.BaseURL())
	assert.Equal(t, DefaultMaxRedirects, c.opts.MaxRedirects)
}

func TestClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{Timeout: 5 * time.Second})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, c.Endpoint("ping"), nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	other, err := http.NewRequest(http.MethodGet, "http://example.com/ping", nil)
	require.NoError(t, err)
	_, err = c.Do(other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "differs")
}

func TestClient_RedirectToOtherHostBlocked(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	// both listen on 127.0.0.1, on different ports
	redirector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/landing", http.StatusFound)
	}))
	defer redirector.Close()

	c, err := New(redirector.URL, Options{Timeout: 5 * time.Second})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, c.Endpoint("start"), nil)
	require.NoError(t, err)
	_, err = c.Do(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect blocked")
}

func TestClient_RedirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/again", http.StatusFound)
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{Timeout: 5 * time.Second, MaxRedirects: 2})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, c.Endpoint("start"), nil)
	require.NoError(t, err)
	_, err = c.Do(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 2 redirects")
}

func TestClient_BlockPrivateIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{Timeout: 5 * time.Second, BlockPrivateIP: true})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, c.Endpoint("x"), nil)
	require.NoError(t, err)
	_, err = c.Do(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private IP address blocked")
}

func TestIsPrivateIP(t *testing.T) {
	tests := map[string]bool{
		"10.1.2.3":    true,
		"172.20.0.1":  true,
		"192.168.1.1": true,
		"127.0.0.1":   true,
		"169.254.1.1": true,
		"8.8.8.8":     false,
		"::1":         true,
		"fe80::1":     true,
		"fd00::1":     true,
		"2606:4700::": false,
	}
	for ip, want := range tests {
		assert.Equal(t, want, IsPrivateIP(net.ParseIP(ip)), ip)
	}
}
