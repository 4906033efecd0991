package upstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storecore/internal/catalog"
	"github.com/fastygo/storecore/internal/resilience"
)

// Client fetches the full product list from a dummyjson-compatible catalog
// provider: GET {base}/products?limit={n} returning {"products":[...]}.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	limit   int
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[[]catalog.RawProduct]
	logger  *zap.Logger
}

type productsEnvelope struct {
	Products []catalog.RawProduct `json:"products"`
}

func NewClient(baseURL string, limit int, timeout time.Duration, logger *zap.Logger) *Client {
	if limit <= 0 {
		limit = 100
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "storecore",
			MaxResponseBodySize: 32 << 20,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		timeout: timeout,
		breaker: resilience.NewBreaker[[]catalog.RawProduct]("catalog-upstream", resilience.BreakerConfig{
			ConsecutiveFailures: 3,
			OpenTimeout:         time.Minute,
		}, logger),
		logger: logger.Named("upstream"),
	}
}

// FetchProducts implements catalog.Provider.
func (c *Client) FetchProducts(ctx context.Context) ([]catalog.RawProduct, error) {
	products, err := c.breaker.Execute(func() ([]catalog.RawProduct, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return products, nil
}

func (c *Client) fetch(ctx context.Context) ([]catalog.RawProduct, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/products?limit=%d", c.baseURL, c.limit))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}
	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return nil, fmt.Errorf("catalog provider returned status %d", status)
	}

	var envelope productsEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	c.logger.Debug("catalog fetched", zap.Int("records", len(envelope.Products)))
	return envelope.Products, nil
}

var _ catalog.Provider = (*Client)(nil)
