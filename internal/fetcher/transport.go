package fetcher

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 10
)

type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

// Transport performs a single GET. Implementations must not retry.
type Transport interface {
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

type RestyTransport struct {
	client *resty.Client
}

func NewRestyTransport(timeout time.Duration, maxRedirects int) *RestyTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))

	return &RestyTransport{client: client}
}

func (t *RestyTransport) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode:  resp.StatusCode(),
		Body:        resp.Body(),
		ContentType: resp.Header().Get("Content-Type"),
	}, nil
}
