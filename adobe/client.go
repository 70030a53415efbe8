// Package adobe implements the remote enterprise PDF strategy on the Adobe
// PDF Services REST API.
package adobe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/mdextract"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the PDF Services endpoint.
const DefaultBaseURL = "https://pdf-services.adobe.io"

// DefaultPollTimeout bounds how long a submitted job may run.
const DefaultPollTimeout = 5 * time.Minute

// Elements requested from the extract operation.
var (
	extractElements   = []string{"text", "tables"}
	extractRenditions = []string{"tables", "figures"}
)

var _ mdextract.Extractor = (*Client)(nil)

// Client submits PDFs to the extract operation and returns the result
// archive as an opaque bundle.
type Client struct {
	ClientID     string
	ClientSecret string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// PollTimeout bounds the polling phase. Zero uses DefaultPollTimeout.
	PollTimeout time.Duration

	// Backoff controls the delay between status polls.
	Backoff Backoff

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient returns a Client for the given credentials.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		BaseURL:      DefaultBaseURL,
		PollTimeout:  DefaultPollTimeout,
		Backoff:      DefaultBackoff(),
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Extract implements mdextract.Extractor for enterprise PDF requests.
func (c *Client) Extract(ctx context.Context, req *mdextract.Request) (*mdextract.Extraction, error) {
	if c.ClientID == "" || c.ClientSecret == "" {
		return nil, mdextract.Errorf(mdextract.ECONFIG, "PDF Services credentials are not configured")
	}
	if len(req.PDF) == 0 {
		return nil, mdextract.Errorf(mdextract.EINVALID, "Empty PDF file")
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	assetID, uploadURI, err := c.createAsset(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := c.upload(ctx, uploadURI, req.PDF); err != nil {
		return nil, err
	}

	location, err := c.submit(ctx, token, assetID)
	if err != nil {
		return nil, err
	}

	downloadURI, err := c.poll(ctx, token, location)
	if err != nil {
		return nil, err
	}

	bundle, err := c.download(ctx, downloadURI)
	if err != nil {
		return nil, err
	}

	return &mdextract.Extraction{Bundle: bundle}, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	form := url.Values{
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/token"), strings.NewReader(form.Encode()))
	if err != nil {
		return "", mdextract.Wrap(mdextract.EINTERNAL, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req, http.StatusOK)
	if err != nil {
		return "", err
	}
	token := gjson.GetBytes(body, "access_token").String()
	if token == "" {
		return "", mdextract.Errorf(mdextract.EBACKEND, "PDF Services returned no access token")
	}
	return token, nil
}

func (c *Client) createAsset(ctx context.Context, token string) (assetID, uploadURI string, err error) {
	req, err := c.jsonRequest(ctx, http.MethodPost, c.endpoint("/assets"), token, map[string]string{
		"mediaType": "application/pdf",
	})
	if err != nil {
		return "", "", err
	}

	body, err := c.do(req, http.StatusOK)
	if err != nil {
		return "", "", err
	}
	res := gjson.GetManyBytes(body, "assetID", "uploadUri")
	if res[0].String() == "" || res[1].String() == "" {
		return "", "", mdextract.Errorf(mdextract.EBACKEND, "PDF Services returned an incomplete asset")
	}
	return res[0].String(), res[1].String(), nil
}

func (c *Client) upload(ctx context.Context, uploadURI string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURI, bytes.NewReader(data))
	if err != nil {
		return mdextract.Wrap(mdextract.EINTERNAL, err)
	}
	req.Header.Set("Content-Type", "application/pdf")

	_, err = c.do(req, http.StatusOK)
	return err
}

func (c *Client) submit(ctx context.Context, token, assetID string) (string, error) {
	req, err := c.jsonRequest(ctx, http.MethodPost, c.endpoint("/operation/extractpdf"), token, map[string]any{
		"assetID":                     assetID,
		"elementsToExtract":           extractElements,
		"elementsToExtractRenditions": extractRenditions,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", mdextract.Errorf(mdextract.EBACKEND, "PDF Services request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return "", backendError(resp.StatusCode, body)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", mdextract.Errorf(mdextract.EBACKEND, "PDF Services returned no job location")
	}
	return location, nil
}

func (c *Client) download(ctx context.Context, downloadURI string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURI, nil)
	if err != nil {
		return nil, mdextract.Wrap(mdextract.EINTERNAL, err)
	}
	return c.do(req, http.StatusOK)
}

func (c *Client) jsonRequest(ctx context.Context, method, endpoint, token string, payload any) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, mdextract.Wrap(mdextract.EINTERNAL, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, mdextract.Wrap(mdextract.EINTERNAL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, token)
	return req, nil
}

func (c *Client) authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-api-key", c.ClientID)
}

// do sends req and returns the body if the response has the wanted status.
func (c *Client) do(req *http.Request, want int) ([]byte, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, mdextract.Errorf(mdextract.EBACKEND, "PDF Services request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, mdextract.Errorf(mdextract.EBACKEND, "PDF Services response unreadable: %v", err)
	}
	if resp.StatusCode != want {
		return nil, backendError(resp.StatusCode, body)
	}
	return body, nil
}

// backendError carries the service's own error message when it sent one.
func backendError(status int, body []byte) error {
	for _, path := range []string{"error.message", "message", "error_description", "error"} {
		if msg := gjson.GetBytes(body, path); msg.Type == gjson.String && msg.String() != "" {
			return mdextract.Errorf(mdextract.EBACKEND, "PDF Services error (HTTP %d): %s", status, msg.String())
		}
	}
	return mdextract.Errorf(mdextract.EBACKEND, "PDF Services error (HTTP %d)", status)
}

func (c *Client) endpoint(path string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + path
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

func (c *Client) pollTimeout() time.Duration {
	if c.PollTimeout <= 0 {
		return DefaultPollTimeout
	}
	return c.PollTimeout
}
