package giftshop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://giftshop-tw.line.me"
	DefaultTimeout = 15 * time.Second

	maxBodyBytes   = 4 << 20
	maxSummaryLen  = 256
	categoriesPath = "/api/category/v3"
)

// listingQuery is fixed: price-descending one-time vouchers of either period type.
var listingQuery = url.Values{
	"sortType":     {"PRICE_DESC"},
	"periodTypes":  {"FIXED", "FLEXIBLE"},
	"voucherTypes": {"ONE_TIME"},
	"payType":      {"NORMAL"},
}

// Client talks to the gift-shop catalog API. It never retries; callers decide.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient builds a Client with a pooled transport. The per-request timeout is
// applied through the request context, not the http.Client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ListCategories returns the ids of every voucher category.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var res envelope[categoriesResult]
	if _, err := c.getJSON(ctx, categoriesPath, nil, &res); err != nil {
		return nil, err
	}
	if res.Result == nil {
		return nil, malformed("%s: missing result", categoriesPath)
	}
	ids := make([]string, 0, len(res.Result.VoucherCategories))
	for _, cat := range res.Result.VoucherCategories {
		if cat.CategoryID == "" {
			continue
		}
		ids = append(ids, cat.CategoryID.String())
	}
	return ids, nil
}

// ListCategoryPage returns one 1-based page of a category listing.
func (c *Client) ListCategoryPage(ctx context.Context, categoryID string, page int) (Page, error) {
	path := "/api/category/v2/" + url.PathEscape(categoryID) + "/products/more"
	query := url.Values{}
	for k, v := range listingQuery {
		query[k] = v
	}
	query.Set("page", strconv.Itoa(page))

	var res envelope[Page]
	if _, err := c.getJSON(ctx, path, query, &res); err != nil {
		return Page{}, err
	}
	if res.Result == nil {
		return Page{}, malformed("%s page %d: missing result", path, page)
	}
	return *res.Result, nil
}

// FetchDetail returns the raw `result` object of a product detail response.
func (c *Client) FetchDetail(ctx context.Context, giftID int64) ([]byte, error) {
	path := "/api/products/v3/" + formatID(giftID)

	var res struct {
		Result json.RawMessage `json:"result"`
	}
	if _, err := c.getJSON(ctx, path, nil, &res); err != nil {
		return nil, err
	}
	if len(res.Result) == 0 || string(res.Result) == "null" {
		return nil, fmt.Errorf("%w: product %d has no result", ErrNotFound, giftID)
	}
	return res.Result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("giftshop: build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrTransient, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read %s: %v", ErrTransient, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &StatusError{
			URL:        path,
			StatusCode: resp.StatusCode,
			Body:       summarizePayload(body),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, malformed("decode %s: %v", path, err)
	}
	return resp.StatusCode, nil
}

func summarizePayload(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSummaryLen {
		return s[:maxSummaryLen] + "..."
	}
	return s
}
