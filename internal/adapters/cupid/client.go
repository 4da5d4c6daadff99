// Package cupid reads hotel content, reviews and prices from the Cupid
// content API.
package cupid

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"placepage/internal/adapters/httpclient"
	"placepage/internal/domain"
)

type Client struct {
	http *httpclient.Client
}

func New(base, key string, rps int, timeout time.Duration) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	hc, err := httpclient.New(httpclient.Options{
		Base: base, Name: "cupid", APIKey: key, RPS: rps, Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

// ---- Public API (tries modern endpoints first, falls back to legacy variants) ----

// GetProperty returns the property payload with the lang translation laid
// over it. A missing translation is not an error.
func (c *Client) GetProperty(ctx context.Context, id string, lang string) (map[string]any, error) {
	id = url.PathEscape(id)
	var out map[string]any
	if err := c.http.GetFirst(ctx, "property", []string{
		"/properties/" + id, // preferred
		"/property/" + id,   // legacy
	}, &out); err != nil {
		return nil, err
	}
	if lang == "" {
		return out, nil
	}

	var tr map[string]any
	err := c.http.GetFirst(ctx, "translation", []string{
		fmt.Sprintf("/properties/%s/translations/%s", id, lang),
		fmt.Sprintf("/property/%s/lang/%s", id, lang),
	}, &tr)
	switch {
	case errors.Is(err, httpclient.ErrNotFound):
		return out, nil
	case err != nil:
		return nil, err
	}
	for k, v := range tr {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

func (c *Client) GetReviews(ctx context.Context, id string, count int) ([]map[string]any, error) {
	id = url.PathEscape(id)
	var out []map[string]any
	return out, c.http.GetFirst(ctx, "reviews", []string{
		fmt.Sprintf("/properties/%s/reviews?limit=%d", id, count), // preferred
		fmt.Sprintf("/property/reviews/%s/%d", id, count),         // legacy
	}, &out)
}

// GetPrice returns the lowest nightly price in currency.
func (c *Client) GetPrice(ctx context.Context, id, currency string) (domain.Price, error) {
	var out map[string]any
	path := fmt.Sprintf("/properties/%s/rates?currency=%s", url.PathEscape(id), url.QueryEscape(currency))
	if err := c.http.Get(ctx, "price", path, &out); err != nil {
		return domain.Price{}, err
	}
	amount := ""
	for _, k := range []string{"min_price", "price", "amount"} {
		if amount = amountString(out[k]); amount != "" {
			break
		}
	}
	if amount == "" {
		return domain.Price{}, fmt.Errorf("cupid: no price for %s: %w", id, domain.ErrNotFound)
	}
	cur, _ := out["currency"].(string)
	if cur == "" {
		cur = currency
	}
	return domain.Price{Amount: amount, Currency: strings.ToUpper(cur)}, nil
}

func amountString(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return strings.TrimSpace(t)
	}
	return ""
}
