// Package diffbot implements the remote web analysis strategy on the
// Diffbot Analyze API.
package diffbot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/mdextract"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Diffbot API endpoint.
const DefaultBaseURL = "https://api.diffbot.com"

// DefaultRPS is the default request rate allowed by the client.
const DefaultRPS = 1.0

// TimestampLayout formats the report timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

var _ mdextract.Extractor = (*Client)(nil)

// Client analyzes web pages remotely and renders the response as a
// markdown report.
type Client struct {
	Token string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Limiter guards the API quota. Nil disables rate limiting.
	Limiter *rate.Limiter

	// Now returns the report timestamp. Defaults to time.Now.
	Now func() time.Time

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient returns a Client limited to rps requests per second.
func NewClient(token string, rps float64) *Client {
	if rps <= 0 {
		rps = DefaultRPS
	}
	return &Client{
		Token:      token,
		BaseURL:    DefaultBaseURL,
		Limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		Now:        time.Now,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Extract implements mdextract.Extractor for enterprise web requests.
func (c *Client) Extract(ctx context.Context, req *mdextract.Request) (*mdextract.Extraction, error) {
	if c.Token == "" {
		return nil, mdextract.Errorf(mdextract.ECONFIG, "Diffbot token is not configured")
	}

	u, err := mdextract.ValidateURL(req.URL)
	if err != nil {
		return nil, err
	}

	data, err := c.analyze(ctx, u.String())
	if err != nil {
		return nil, err
	}

	return &mdextract.Extraction{Report: Report(u.String(), c.now(), data)}, nil
}

func (c *Client) analyze(ctx context.Context, pageURL string) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	q := url.Values{"token": {c.Token}, "url": {pageURL}}
	endpoint := strings.TrimRight(c.baseURL(), "/") + "/v3/analyze?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, mdextract.Wrap(mdextract.EINTERNAL, err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		// The transport error embeds the request URL, token included.
		c.logger().Warn("diffbot request failed", "url", pageURL, "err", redact(err, c.Token))
		return nil, mdextract.Errorf(mdextract.EBACKEND, "Diffbot request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, mdextract.Errorf(mdextract.EBACKEND, "Diffbot response unreadable: %v", err)
	}

	if msg := gjson.GetBytes(body, "error"); msg.Exists() {
		return nil, mdextract.Errorf(mdextract.EBACKEND, "Diffbot error: %s", msg.String())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, mdextract.Errorf(mdextract.EBACKEND, "Diffbot error: HTTP %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, mdextract.Errorf(mdextract.EBACKEND, "Diffbot returned invalid JSON")
	}
	return body, nil
}

// Report renders an analysis response as a markdown document.
func Report(pageURL string, at time.Time, data []byte) string {
	var sb strings.Builder
	sb.WriteString("# Scraped Data Report\n\n")
	fmt.Fprintf(&sb, "## Source URL\n%s\n\n", pageURL)
	fmt.Fprintf(&sb, "## Timestamp\n%s\n\n", at.Format(TimestampLayout))
	sb.WriteString("## Extracted Content\n")
	sb.WriteString("```\n")
	sb.WriteString(strings.TrimRight(string(pretty.PrettyOptions(data, &pretty.Options{Width: 80, Indent: "  "})), "\n"))
	sb.WriteString("\n```\n")
	return sb.String()
}

func redact(err error, secret string) string {
	return strings.ReplaceAll(err.Error(), url.QueryEscape(secret), "REDACTED")
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

func (c *Client) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
