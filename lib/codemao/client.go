// Package codemao drives the CodeMao community platform through its
// private web API. It is a thin I/O layer: one method per endpoint, no
// business logic. Transport failures (network errors, non-2xx statuses)
// are surfaced as a nil document rather than an error so callers can
// treat them as "no data for this call".
package codemao

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"

	"codemaobot/lib/telemetry"
)

var tracer = otel.Tracer("codemao/client")

const defaultBaseURL = "https://api.codemao.cn"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Client struct {
	http *resty.Client
}

type ClientOptions struct {
	// BaseUrl defaults to the production API host.
	BaseUrl string
	// SessionCookie is an existing authenticated session, sent verbatim
	// in the Cookie header. Acquiring one is out of scope here.
	SessionCookie string
	Timeout       time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", userAgent)
	client.SetHeader("content-type", "application/json")
	client.SetTimeout(timeout)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	telemetry.InstrumentResty(client, "codemao/http")

	c := &Client{http: client}
	if opts.SessionCookie != "" {
		c.SetCookie(opts.SessionCookie)
	}
	return c, nil
}

// SetCookie replaces the session cookie on every subsequent request.
func (c *Client) SetCookie(cookie string) {
	c.http.SetHeader("cookie", cookie)
}

// Execute issues one request and JSON-decodes a 2xx response body.
// Network failures, non-2xx statuses and undecodable bodies all yield
// (nil, nil): the failure sentinel. A non-nil error is reserved for
// request construction problems.
func (c *Client) Execute(ctx context.Context, endpoint, method string, query map[string]string, body any) (map[string]any, error) {
	res, err := c.do(ctx, endpoint, method, query, body)
	if err != nil {
		slog.WarnContext(ctx, "request failed",
			"endpoint", endpoint,
			"method", method,
			"err", err.Error(),
		)
		return nil, nil
	}
	if res.IsError() {
		slog.WarnContext(ctx, "request rejected",
			"endpoint", endpoint,
			"method", method,
			"status", res.StatusCode(),
			"body", truncate(res.String(), 256),
		)
		return nil, nil
	}

	var doc map[string]any
	err = json.Unmarshal(res.Body(), &doc)
	if err != nil {
		slog.WarnContext(ctx, "response is not a json object",
			"endpoint", endpoint,
			"err", err.Error(),
		)
		return nil, nil
	}
	return doc, nil
}

// ExecuteRaw issues one request and exposes the status code and raw
// body. A transport failure yields status 0.
func (c *Client) ExecuteRaw(ctx context.Context, endpoint, method string, query map[string]string, body any) (int, []byte) {
	res, err := c.do(ctx, endpoint, method, query, body)
	if err != nil {
		slog.WarnContext(ctx, "request failed",
			"endpoint", endpoint,
			"method", method,
			"err", err.Error(),
		)
		return 0, nil
	}
	return res.StatusCode(), res.Body()
}

func (c *Client) do(ctx context.Context, endpoint, method string, query map[string]string, body any) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	return req.Execute(method, endpoint)
}

// decodeList is for the few endpoints whose response root is a JSON
// array instead of an object.
func decodeList[T any](raw []byte) []T {
	var out []T
	err := json.Unmarshal(raw, &out)
	if err != nil {
		return nil
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func itoa(id int64) string {
	return fmt.Sprintf("%d", id)
}
