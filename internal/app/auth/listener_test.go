package auth

import (
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name        string
		requestLine string
		want        string
		wantErr     string
	}{
		{
			name:        "Valid redirect",
			requestLine: "GET /login?code=ABC123&state=xyz HTTP/1.1",
			want:        "ABC123",
		},
		{
			name:        "Code only",
			requestLine: "GET /login?code=tok HTTP/1.1",
			want:        "tok",
		},
		{
			name:        "Missing code parameter",
			requestLine: "GET /login?state=xyz HTTP/1.1",
			wantErr:     "no authorization code",
		},
		{
			name:        "User denied authorization",
			requestLine: "GET /login?error=access_denied&state=xyz HTTP/1.1",
			wantErr:     "no authorization code",
		},
		{
			name:        "Malformed request line",
			requestLine: "GARBAGE",
			wantErr:     "malformed redirect",
		},
		{
			name:        "Empty line",
			requestLine: "\r\n",
			wantErr:     "malformed redirect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := ExtractCode(tt.requestLine)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestAwaitRedirect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	type result struct {
		code string
		err  error
	}
	resultCh := make(chan result, 1)
	go func() {
		code, err := awaitRedirect(ln)
		resultCh <- result{code: code, err: err}
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "GET /login?code=ABC123&state=xyz HTTP/1.1\r\nHost: 127.0.0.1\r\n\r\n")
	require.NoError(t, err)

	res := <-resultCh
	require.NoError(t, res.err)
	assert.Equal(t, "ABC123", res.code)

	// The browser gets a plain success page.
	response, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(response), "HTTP/1.1 200 OK\r\n"))
	assert.Contains(t, string(response), successMessage)
}

func TestAwaitRedirectWithoutCode(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := awaitRedirect(ln)
		errCh <- err
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "GET /login?error=access_denied HTTP/1.1\r\n\r\n")
	require.NoError(t, err)

	assert.ErrorContains(t, <-errCh, "no authorization code")
}

func TestRedirectURIFor(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	uri := redirectURIFor(ln)
	assert.True(t, strings.HasPrefix(uri, "http://127.0.0.1:"))
	assert.True(t, strings.HasSuffix(uri, "/login"))
}
