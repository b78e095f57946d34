// Package storefront fetches product snapshots from a storefront's public catalog.
package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Houeta/catalog-flow/internal/models"
)

// ErrUnexpectedStatus is returned when the catalog endpoint answers with a non-200 status.
var ErrUnexpectedStatus = errors.New("unexpected status code")

const (
	productsPath     = "/products.json"
	defaultUserAgent = "Mozilla/5.0 (compatible; GoHttpClient/1.0)"
	defaultPageLimit = 250
	defaultMaxPages  = 5
	defaultCountry   = "GB"
	defaultCurrency  = "GBP"
)

// Client reads products.json from one storefront.
type Client struct {
	log       *slog.Logger
	client    *http.Client
	baseURL   *url.URL
	userAgent string
	country   string
	currency  string
	pageLimit int
	maxPages  int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the http client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.client = client }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithLocalization sets the country and currency cookies so prices come back in that currency.
func WithLocalization(country, currency string) Option {
	return func(c *Client) {
		if country != "" {
			c.country = country
		}
		if currency != "" {
			c.currency = currency
		}
	}
}

// WithPageLimit sets the number of products requested per page.
func WithPageLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.pageLimit = limit
		}
	}
}

// WithMaxPages caps the number of pages read per fetch.
func WithMaxPages(pages int) Option {
	return func(c *Client) {
		if pages > 0 {
			c.maxPages = pages
		}
	}
}

// NewClient creates a Client for the storefront at baseURL.
func NewClient(log *slog.Logger, baseURL *url.URL, opts ...Option) *Client {
	c := &Client{
		log:       log,
		client:    http.DefaultClient,
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
		country:   defaultCountry,
		currency:  defaultCurrency,
		pageLimit: defaultPageLimit,
		maxPages:  defaultMaxPages,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchProducts returns the current snapshots of the requested product ids, keyed by id.
// Ids that are not in the catalog are absent from the result.
func (c *Client) FetchProducts(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	const opn = "storefront.FetchProducts"
	log := c.log.With("op", opn)

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	products := make(map[int64]models.Product, len(ids))

	for page := 1; page <= c.maxPages && len(products) < len(wanted); page++ {
		catalog, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to fetch page %d: %w", opn, page, err)
		}

		if len(catalog.Products) == 0 {
			break
		}

		for _, p := range catalog.Products {
			if _, ok := wanted[p.ID]; ok {
				products[p.ID] = p
			}
		}

		log.DebugContext(ctx, "Catalog page read", "page", page, "products", len(catalog.Products), "matched", len(products))

		if len(catalog.Products) < c.pageLimit {
			break
		}
	}

	if len(products) < len(wanted) {
		log.WarnContext(ctx, "Some tracked products were not found in the catalog",
			"tracked", len(wanted), "found", len(products))
	}

	return products, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (*models.Catalog, error) {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: productsPath})
	query := reqURL.Query()
	query.Set("limit", strconv.Itoa(c.pageLimit))
	query.Set("page", strconv.Itoa(page))
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request %s: %w", reqURL.String(), err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", fmt.Sprintf("localization=%s;cart_currency=%s;", c.country, c.currency))

	c.log.DebugContext(ctx, "Send request", "method", req.Method, "URL", req.URL)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", reqURL.String(), err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: [%d] %s", ErrUnexpectedStatus, res.StatusCode, res.Status)
	}

	var catalog models.Catalog
	if err = json.NewDecoder(res.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("data cannot be parsed as catalog JSON: %w", err)
	}

	return &catalog, nil
}
