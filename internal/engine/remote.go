package engine

import (
	"context"
	"errors"
	"time"

	"github.com/valyala/fasthttp"
)

// Remote posts the payload to an HTTP endpoint speaking the same protocol
// as a Process engine. Args travel as repeated "arg" query parameters.
type Remote struct {
	URL     string
	client  *fasthttp.Client
	timeout time.Duration
}

func NewRemote(url string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		URL:     url,
		timeout: timeout,
		client: &fasthttp.Client{
			Name:                "storecore-engine",
			MaxResponseBodySize: maxOutputSize,
		},
	}
}

func (r *Remote) Run(ctx context.Context, args []string, payload []byte) ([]byte, error) {
	if ctxErr := contextError(ctx); ctxErr != nil {
		return nil, ctxErr
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.URL)
	for _, arg := range args {
		req.URI().QueryArgs().Add("arg", arg)
	}
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	deadline := time.Now().Add(r.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := r.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, &Error{Kind: KindTimeout, Err: err}
		}
		return nil, &Error{Kind: KindSpawn, Err: err}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return nil, &Error{Kind: KindExit, Code: status, Stderr: string(resp.Body())}
	}
	return append([]byte(nil), resp.Body()...), nil
}
