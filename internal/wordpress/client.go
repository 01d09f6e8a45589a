// Package wordpress talks to a WordPress site over its XML-RPC API.
//
// Every call carries the blog id and credentials as its first three
// parameters. Faults are translated into the domain error kinds so callers
// never depend on the transport.
package wordpress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/rpc"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kolo/xmlrpc"

	"github.com/pbaille/mdpress/internal/domain"
)

// Options configures a Client
type Options struct {
	Endpoint  string
	User      string
	Password  string
	BlogID    int
	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client is an XML-RPC client for the wp.* API
type Client struct {
	rpc    *xmlrpc.Client
	opts   Options
	logger *slog.Logger
}

// New creates a Client for the given endpoint
func New(opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Client{opts: opts, logger: opts.Logger}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	rpcClient, err := xmlrpc.NewClient(c.opts.Endpoint, c.opts.Transport)
	if err != nil {
		return fmt.Errorf("xmlrpc client %s: %w", c.opts.Endpoint, err)
	}
	c.rpc = rpcClient
	return nil
}

// call issues method with the credential prefix and waits for the reply or ctx.
// A failed call leaves the underlying rpc client shut down, so it is replaced.
func (c *Client) call(ctx context.Context, method string, reply interface{}, args ...interface{}) error {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	params := append([]interface{}{c.opts.BlogID, c.opts.User, c.opts.Password}, args...)
	start := time.Now()
	pending := c.rpc.Go(method, params, reply, nil)

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-pending.Done:
		err = pending.Error
	}
	c.logger.Debug("xmlrpc call", "method", method, "duration", time.Since(start), "error", err)

	if err == nil {
		return nil
	}
	c.rpc.Close()
	if cerr := c.connect(); cerr != nil {
		c.logger.Warn("xmlrpc reconnect failed", "error", cerr)
	}
	return fmt.Errorf("%s: %w", method, translate(err))
}

var faultPattern = regexp.MustCompile(`Fault\((-?\d+)\): (.*)`)

// translate maps XML-RPC faults onto domain errors
func translate(err error) error {
	code, message := 0, ""

	var fault xmlrpc.FaultError
	var faultPtr *xmlrpc.FaultError
	var serverErr rpc.ServerError
	switch {
	case errors.As(err, &fault):
		code, message = fault.Code, fault.String
	case errors.As(err, &faultPtr):
		code, message = faultPtr.Code, faultPtr.String
	case errors.As(err, &serverErr):
		if m := faultPattern.FindStringSubmatch(string(serverErr)); m != nil {
			code, _ = strconv.Atoi(m[1])
			message = m[2]
		}
	}

	switch {
	case code == 403 && (strings.Contains(strings.ToLower(message), "username") ||
		strings.Contains(strings.ToLower(message), "password")):
		return fmt.Errorf("%s: %w", message, domain.ErrCredential)
	case code == 404:
		return fmt.Errorf("%s: %w", message, domain.ErrNotFound)
	default:
		return err
	}
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.rpc.Close()
}
