package liststore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"shipdesk-hq/gateway/pkg/auth"
	"shipdesk-hq/gateway/pkg/config"
	"shipdesk-hq/gateway/pkg/telemetry/metrics"
	"shipdesk-hq/gateway/pkg/telemetry/tracing"
)

// maxResponseBytes bounds the size of a list store response.
const maxResponseBytes = 16 << 20

// maxPages bounds how many @odata.nextLink pages a collection read follows.
const maxPages = 50

// Client talks to the list store REST API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	siteHost   string
	sitePath   string
	httpClient *http.Client

	invalidator auth.Invalidator
	logger      *slog.Logger
	metrics     *metrics.Collector
	tracer      *tracing.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithInvalidator registers the token source to notify when the list store
// rejects a token with 401.
func WithInvalidator(inv auth.Invalidator) Option {
	return func(c *Client) { c.invalidator = inv }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer sets the tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// NewClient creates a client for the site configured in cfg.
func NewClient(cfg *config.ListStoreConfig, opts ...Option) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = config.DefaultListStoreBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid list store base URL %q: %w", raw, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultListStoreTimeout
	}

	c := &Client{
		baseURL:    base,
		siteHost:   cfg.SiteHost,
		sitePath:   cfg.SitePath,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "liststore")
	return c, nil
}

// ResolveSite returns the id of the configured site.
func (c *Client) ResolveSite(ctx context.Context, token auth.Token) (id string, err error) {
	ctx, span := c.tracer.Start(ctx, "liststore.resolve_site")
	defer tracing.End(span, &err)

	path := "/sites/" + url.PathEscape(c.siteHost) + ":/sites/" + escapeSitePath(c.sitePath)

	var site Site
	if err := c.get(ctx, token, "resolve_site", c.endpoint(path, ""), &site); err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String(tracing.AttrSiteID, site.ID))
	return site.ID, nil
}

// ListLists returns the lists of a site in the order the list store
// enumerates them.
func (c *Client) ListLists(ctx context.Context, token auth.Token, siteID string) (lists []List, err error) {
	ctx, span := c.tracer.Start(ctx, "liststore.list_lists")
	defer tracing.End(span, &err)
	span.SetAttributes(attribute.String(tracing.AttrSiteID, siteID))

	path := "/sites/" + url.PathEscape(siteID) + "/lists"
	lists, err = getCollection[List](ctx, c, token, "list_lists", c.endpoint(path, ""))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrRows, len(lists)))
	return lists, nil
}

// ResolveList returns the id of the first list of the site whose display
// name equals name. The comparison is exact and case-sensitive.
func (c *Client) ResolveList(ctx context.Context, token auth.Token, siteID, name string) (string, error) {
	lists, err := c.ListLists(ctx, token, siteID)
	if err != nil {
		return "", err
	}
	for _, l := range lists {
		if l.DisplayName == name {
			return l.ID, nil
		}
	}
	return "", &ListNotFoundError{Name: name}
}

// GetItem returns an item with its fields expanded.
func (c *Client) GetItem(ctx context.Context, token auth.Token, siteID, listID, itemID string) (item *Item, err error) {
	ctx, span := c.tracer.Start(ctx, "liststore.get_item")
	defer tracing.End(span, &err)
	tracing.SetListAttributes(span, siteID, "", listID)
	span.SetAttributes(attribute.String(tracing.AttrItemID, itemID))

	path := "/sites/" + url.PathEscape(siteID) + "/lists/" + url.PathEscape(listID) + "/items/" + url.PathEscape(itemID)

	item = &Item{}
	if err := c.get(ctx, token, "get_item", c.endpoint(path, "expand=fields"), item); err != nil {
		return nil, err
	}
	return item, nil
}

// QueryItems returns the items of a list whose field equals value. The
// field is given by display name and encoded with EncodeFieldName.
func (c *Client) QueryItems(ctx context.Context, token auth.Token, siteID, listID, field, value string) (items []Item, err error) {
	ctx, span := c.tracer.Start(ctx, "liststore.query_items")
	defer tracing.End(span, &err)

	filter := EqualsFilter(field, value)
	tracing.SetListAttributes(span, siteID, "", listID)
	span.SetAttributes(attribute.String(tracing.AttrFilter, "fields/"+EncodeFieldName(field)))

	path := "/sites/" + url.PathEscape(siteID) + "/lists/" + url.PathEscape(listID) + "/items"
	query := "$expand=fields&$filter=" + encodeComponent(filter)

	items, err = getCollection[Item](ctx, c, token, "query_items", c.endpoint(path, query))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrRows, len(items)))
	return items, nil
}

// Check resolves the configured site. It is registered as a readiness
// check together with the token source.
func (c *Client) Check(ctx context.Context, tokens auth.Source) error {
	tok, err := tokens.Token(ctx)
	if err != nil {
		return err
	}
	_, err = c.ResolveSite(ctx, tok)
	return err
}

// endpoint joins the base URL with an escaped path and a raw query.
// escapeSitePath escapes each segment of a server-relative site path and
// keeps the separating slashes, so nested sites resolve.
func escapeSitePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func (c *Client) endpoint(escapedPath, rawQuery string) string {
	u := *c.baseURL
	u.RawPath = ""
	s := u.String() + escapedPath
	if rawQuery != "" {
		s += "?" + rawQuery
	}
	return s
}

// collectionPage is one page of a collection response.
type collectionPage[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// getCollection reads every page of a collection, following
// @odata.nextLink on the same host.
func getCollection[T any](ctx context.Context, c *Client, token auth.Token, op, endpoint string) ([]T, error) {
	out := []T{}
	for page := 0; endpoint != ""; page++ {
		if page == maxPages {
			return nil, fmt.Errorf("liststore %s: more than %d pages", op, maxPages)
		}

		var p collectionPage[T]
		if err := c.get(ctx, token, op, endpoint, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Value...)

		next, err := c.sameHost(p.NextLink)
		if err != nil {
			return nil, fmt.Errorf("liststore %s: %w", op, err)
		}
		endpoint = next
	}
	return out, nil
}

// sameHost validates a nextLink so the bearer token is only ever sent to
// the configured list store.
func (c *Client) sameHost(link string) (string, error) {
	if link == "" {
		return "", nil
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid next link: %w", err)
	}
	if u.Scheme != c.baseURL.Scheme || u.Host != c.baseURL.Host {
		return "", fmt.Errorf("next link points to foreign host %q", u.Host)
	}
	return link, nil
}

// get performs an authorized GET and decodes a 2xx JSON response into out.
func (c *Client) get(ctx context.Context, token auth.Token, op, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("liststore %s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", token.AuthorizationHeader())
	req.Header.Set("Accept", "application/json")
	tracing.Inject(ctx, req.Header)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamCall("liststore", op, "error", time.Since(start))
		c.metrics.RecordUpstreamError("liststore", "transport")
		return fmt.Errorf("liststore %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordUpstreamCall("liststore", op, "error", elapsed)
		c.metrics.RecordUpstreamError("liststore", "transport")
		return fmt.Errorf("liststore %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.RecordUpstreamCall("liststore", op, "error", elapsed)
		c.metrics.RecordUpstreamError("liststore", fmt.Sprintf("http_%d", resp.StatusCode))

		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Body: body}
		if resp.StatusCode == http.StatusUnauthorized && c.invalidator != nil {
			c.invalidator.Invalidate(token)
		}
		c.logger.Debug("list store request failed", "op", op, "status", resp.StatusCode, "duration", elapsed)
		return apiErr
	}

	c.metrics.RecordUpstreamCall("liststore", op, "success", elapsed)

	if err := json.Unmarshal(body, out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("liststore %s: malformed response at offset %d: %w", op, syntaxErr.Offset, err)
		}
		return fmt.Errorf("liststore %s: decode response: %w", op, err)
	}
	return nil
}
