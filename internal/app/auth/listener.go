package auth

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// successMessage is the fixed page shown in the browser after a successful
// redirect.
const successMessage = "Authorization successful! You can close this tab and return to strum."

// defaultListen binds the redirect listener to a freshly chosen free port on
// the loopback interface.
func defaultListen() (net.Listener, error) {
	return net.Listen("tcp", "127.0.0.1:0")
}

// redirectURIFor derives the redirect URI handed to the authorization server
// from the bound listener.
func redirectURIFor(ln net.Listener) string {
	port := ln.Addr().(*net.TCPAddr).Port
	return fmt.Sprintf("http://127.0.0.1:%d/login", port)
}

// awaitRedirect accepts exactly one connection, reads one HTTP request line
// and extracts the authorization code. On success it replies with a fixed
// plaintext page before closing.
func awaitRedirect(ln net.Listener) (string, error) {
	conn, err := ln.Accept()
	if err != nil {
		return "", errors.Wrap(err, "redirect listener terminated without a connection")
	}
	defer conn.Close()

	requestLine, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "failed to read redirect request")
	}

	code, err := ExtractCode(requestLine)
	if err != nil {
		return "", err
	}

	response := fmt.Sprintf("HTTP/1.1 200 OK\r\ncontent-length: %d\r\n\r\n%s",
		len(successMessage), successMessage)
	if _, err := io.WriteString(conn, response); err != nil {
		zlog.Warn().Msgf("failed to respond to browser: %v", err)
	}

	return code, nil
}

// ExtractCode parses the authorization code out of an HTTP request line such
// as "GET /login?code=abc&state=xyz HTTP/1.1". A redirect without a code
// parameter is a hard error; the caller decides whether to re-prompt.
func ExtractCode(requestLine string) (string, error) {
	fields := strings.Fields(requestLine)
	if len(fields) < 2 {
		return "", errors.Newf("malformed redirect request line %q", strings.TrimSpace(requestLine))
	}

	u, err := url.Parse(fields[1])
	if err != nil {
		return "", errors.Wrap(err, "failed to parse redirect path")
	}

	code := u.Query().Get("code")
	if code == "" {
		return "", errors.Newf("no authorization code found in redirect %q", fields[1])
	}
	return code, nil
}
