// Package catalog resolves user-supplied card and edition identifiers to
// canonical catalog identities. Lookups go to a Scryfall-compatible HTTP
// API through a process-wide pacer and land in read-time-freshness-checked
// caches shared by every space.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"wantbot/internal/logging"
)

// Card is a canonical catalog identity for one printing.
type Card struct {
	Name        string
	EditionCode string
	EditionName string
}

// Edition is a canonical printing/release.
type Edition struct {
	Name string
	Code string
}

// Client is the wire-level catalog interface. Implementations return
// *Error for every failure so the resolver can classify without knowing
// transport details.
type Client interface {
	// NamedCard does a fuzzy name lookup, constrained to an edition when
	// editionCode is non-empty.
	NamedCard(ctx context.Context, name, editionCode string) (Card, error)
	// Edition looks an edition up by its exact code.
	Edition(ctx context.Context, code string) (Edition, error)
	// ListEditions returns every edition the catalog knows.
	ListEditions(ctx context.Context) ([]Edition, error)
}

// HTTPConfig configures the HTTP catalog client.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultHTTPConfig returns the production catalog endpoint settings.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		BaseURL: "https://api.scryfall.com",
		Timeout: 10 * time.Second,
	}
}

// HTTPClient talks to a Scryfall-compatible catalog API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a catalog client. Zero-value config fields fall
// back to defaults.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	def := DefaultHTTPConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// SetTimeout adjusts the request timeout at runtime (config hot reload).
func (c *HTTPClient) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

// cardPayload is the catalog's card response body.
type cardPayload struct {
	Name    string `json:"name"`
	Set     string `json:"set"`
	SetName string `json:"set_name"`
}

// editionPayload is the catalog's edition (set) response body.
type editionPayload struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type editionListPayload struct {
	Data []editionPayload `json:"data"`
}

// errorPayload is the catalog's structured error body.
type errorPayload struct {
	Code    string `json:"code"`
	Type    string `json:"type"`
	Details string `json:"details"`
}

// NamedCard implements Client.
func (c *HTTPClient) NamedCard(ctx context.Context, name, editionCode string) (Card, error) {
	query := url.Values{"fuzzy": {name}}
	if editionCode != "" {
		query.Set("set", editionCode)
	}

	var payload cardPayload
	if err := c.get(ctx, "/cards/named?"+query.Encode(), &payload); err != nil {
		return Card{}, err
	}
	return Card{
		Name:        payload.Name,
		EditionCode: payload.Set,
		EditionName: payload.SetName,
	}, nil
}

// Edition implements Client.
func (c *HTTPClient) Edition(ctx context.Context, code string) (Edition, error) {
	var payload editionPayload
	if err := c.get(ctx, "/sets/"+url.PathEscape(code), &payload); err != nil {
		return Edition{}, err
	}
	return Edition{Name: payload.Name, Code: payload.Code}, nil
}

// ListEditions implements Client.
func (c *HTTPClient) ListEditions(ctx context.Context) ([]Edition, error) {
	var payload editionListPayload
	if err := c.get(ctx, "/sets", &payload); err != nil {
		return nil, err
	}
	editions := make([]Edition, 0, len(payload.Data))
	for _, e := range payload.Data {
		editions = append(editions, Edition{Name: e.Name, Code: e.Code})
	}
	return editions, nil
}

// get issues one GET and decodes the response into out, converting every
// failure mode into a *Error.
func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	// Apply the client timeout when the context carries no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &Error{Kind: KindConnectFailed, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Err: err}
	}

	logging.CatalogDebug("GET %s -> %d in %v", path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindParseFailed, Err: fmt.Errorf("decoding catalog response: %w", err)}
	}
	return nil
}

// transportError classifies a failed round trip.
func transportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindConnectFailed, Err: err}
}

// decodeError maps the catalog's structured error body onto an error Kind.
func decodeError(status int, body []byte) *Error {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return &Error{
			Kind: KindNetwork,
			Err:  fmt.Errorf("catalog returned status %d", status),
		}
	}

	switch {
	case payload.Type == "ambiguous":
		return &Error{Kind: KindAmbiguous, Message: payload.Details}
	case payload.Code == "not_found":
		return &Error{Kind: KindNotFound, Message: payload.Details}
	default:
		return &Error{
			Kind: KindNetwork,
			Err:  fmt.Errorf("catalog error %s (status %d): %s", payload.Code, status, payload.Details),
		}
	}
}
