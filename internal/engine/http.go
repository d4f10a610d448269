package engine

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

const defaultConnectTimeout = 5 * time.Second

// newHTTPClient builds the shared transport for server-backed engines.
// Client.Timeout stays zero: every request carries a context deadline.
func newHTTPClient(connectTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: tr, Timeout: 0}
}

// withTimeout applies d to ctx when positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return ctx, func() {}
}

// doErr normalizes a transport error: context errors pass through, dial
// failures become dependency-unavailable.
func doErr(ctx context.Context, name string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var op *net.OpError
	if errors.As(err, &op) && op.Op == "dial" {
		return ErrDependencyUnavailable(name + " server unreachable: " + err.Error())
	}
	return err
}

// checkStatus converts a non-2xx response into a ServerError.
func checkStatus(name string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &ServerError{Engine: name, Status: resp.StatusCode, Body: string(b)}
}
