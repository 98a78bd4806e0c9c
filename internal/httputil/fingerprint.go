package httputil

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// fingerprintTransport implements http.RoundTripper on top of utls with a
// Chrome ClientHello, speaking HTTP/2 when the server negotiates it.
type fingerprintTransport struct {
	dialer   *net.Dialer
	h2       *http2.Transport
	fallback http.RoundTripper
}

func newFingerprintTransport(timeout time.Duration) *fingerprintTransport {
	return &fingerprintTransport{
		dialer: &net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		},
		h2: &http2.Transport{
			DisableCompression: false,
			AllowHTTP:          false,
		},
		fallback: http.DefaultTransport,
	}
}

func (t *fingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Plain HTTP has no ClientHello to disguise.
	if req.URL.Scheme != "https" {
		return t.fallback.RoundTrip(req)
	}

	host := req.URL.Hostname()
	port := req.URL.Port()
	if port == "" {
		port = "443"
	}

	conn, err := t.dialer.DialContext(req.Context(), "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", host, err)
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloChrome_120)
	if err := tlsConn.HandshakeContext(req.Context()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("TLS handshake with %s: %w", host, err)
	}

	if tlsConn.ConnectionState().NegotiatedProtocol == http2.NextProtoTLS {
		cc, err := t.h2.NewClientConn(tlsConn)
		if err != nil {
			tlsConn.Close()
			return nil, fmt.Errorf("starting HTTP/2 with %s: %w", host, err)
		}
		resp, err := cc.RoundTrip(req)
		if err != nil {
			cc.Close()
			return nil, err
		}
		resp.Body = &closeWith{ReadCloser: resp.Body, close: cc.Close}
		return resp, nil
	}

	if err := req.Write(tlsConn); err != nil {
		tlsConn.Close()
		return nil, fmt.Errorf("writing request to %s: %w", host, err)
	}
	resp, err := http.ReadResponse(bufio.NewReader(tlsConn), req)
	if err != nil {
		tlsConn.Close()
		return nil, fmt.Errorf("reading response from %s: %w", host, err)
	}
	resp.Body = &closeWith{ReadCloser: resp.Body, close: tlsConn.Close}
	return resp, nil
}

// closeWith closes the underlying connection together with the body; the
// transport does not pool connections.
type closeWith struct {
	io.ReadCloser
	close func() error
}

func (c *closeWith) Close() error {
	err := c.ReadCloser.Close()
	if cerr := c.close(); err == nil {
		err = cerr
	}
	return err
}
