package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	units "github.com/docker/go-units"

	"github.com/bft-labs/dropship/pkg/form"
	"github.com/bft-labs/dropship/pkg/log"
	"github.com/bft-labs/dropship/pkg/profile"
	"github.com/bft-labs/dropship/pkg/resolve"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// HTTPClient abstracts request execution. *http.Client satisfies it and
// must be safe for concurrent use, as it is shared by every upload.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request is one file to upload with the profile describing where.
type Request struct {
	Profile  *profile.Profile
	Filename string
	Data     []byte
}

// Client uploads files. It holds no per-upload state.
type Client struct {
	http       HTTPClient
	logger     log.Logger
	dispatcher Dispatcher
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport. The default is an *http.Client
// without a timeout; cancellation comes from the context.
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l log.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// WithDispatcher sets where callbacks run. The default is
// DefaultDispatcher.
func WithDispatcher(d Dispatcher) Option {
	return func(cl *Client) {
		cl.dispatcher = d
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	c.logger = log.OrNoop(c.logger)
	if c.dispatcher == nil {
		c.dispatcher = DefaultDispatcher()
	}
	return c
}

// Upload sends req and returns the resolved URL. onProgress may be nil;
// when set it is invoked through the client's Dispatcher.
func (c *Client) Upload(ctx context.Context, req Request, onProgress ProgressFunc) (*url.URL, error) {
	var fn ProgressFunc
	if onProgress != nil {
		fn = func(f float64) {
			c.dispatcher.Dispatch(func() { onProgress(f) })
		}
	}
	return c.upload(ctx, req, newProgressMeter(fn))
}

func (c *Client) upload(ctx context.Context, req Request, meter *progressMeter) (*url.URL, error) {
	if req.Profile == nil {
		return nil, &Error{Kind: ErrInvalidURL, Err: errors.New("no server profile")}
	}
	p := req.Profile

	httpReq, err := c.buildRequest(ctx, req, meter)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("upload starting",
		log.String("method", httpReq.Method),
		log.String("host", httpReq.URL.Host),
		log.String("file", req.Filename),
		log.String("size", units.HumanSize(float64(len(req.Data)))),
	)

	if ctx.Err() != nil {
		return nil, classifyTransport(ctx, ctx.Err())
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransport(ctx, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:       ErrServer,
			StatusCode: resp.StatusCode,
			Detail:     resolve.Preview(body),
		}
	}

	meter.update(1)

	res, err := resolve.Resolve(p, body)
	if err != nil {
		var nf *resolve.NotFoundError
		detail := resolve.Preview(body)
		if errors.As(err, &nf) {
			detail = nf.Preview
		}
		return nil, &Error{Kind: ErrNoURLFound, StatusCode: resp.StatusCode, Detail: detail, Err: err}
	}

	c.logger.Debug("upload complete",
		log.String("url", res.URL.String()),
		log.String("strategy", res.Strategy.String()),
		log.Int("status", resp.StatusCode),
		log.Duration("elapsed", time.Since(start)),
	)
	return res.URL, nil
}

// buildRequest assembles method, URL, headers and multipart body.
func (c *Client) buildRequest(ctx context.Context, req Request, meter *progressMeter) (*http.Request, error) {
	p := req.Profile

	endpoint, err := p.Endpoint()
	if err != nil {
		return nil, &Error{Kind: ErrInvalidURL, Err: err}
	}

	boundary := form.NewBoundary()
	body := form.Encode(boundary, p.Arguments(), form.File{
		FieldName:   p.FileFormName(),
		Filename:    req.Filename,
		ContentType: form.MIMEType(req.Filename),
		Data:        req.Data,
	})

	httpReq, err := http.NewRequestWithContext(ctx, p.Method(), endpoint.String(), newProgressReader(body, meter))
	if err != nil {
		return nil, &Error{Kind: ErrInvalidURL, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.ContentLength = int64(len(body))
	httpReq.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	for k, v := range p.Headers() {
		if strings.EqualFold(k, "Host") {
			httpReq.Host = v
			continue
		}
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Content-Type", form.ContentType(boundary))

	return httpReq, nil
}
