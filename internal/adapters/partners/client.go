// Package partners talks to the city-tours and rentals marketplace API.
package partners

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"placepage/internal/adapters/httpclient"
	"placepage/internal/domain"
)

type Client struct {
	http *httpclient.Client
}

func New(base, key string, rps int, timeout time.Duration) (*Client, error) {
	hc, err := httpclient.New(httpclient.Options{
		Base: base, Name: "partners", APIKey: key, KeyHeader: "Authorization", RPS: rps, Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

type tour struct {
	Title        string  `json:"title"`
	ShortDesc    string  `json:"short_description"`
	Rating       float64 `json:"rating"`
	Price        float64 `json:"price"`
	PriceFormat  string  `json:"price_formatted"`
	Currency     string  `json:"currency"`
	PhotoURL     string  `json:"photo_url"`
	PageURL      string  `json:"page_url"`
	DurationText string  `json:"duration"`
}

type rental struct {
	Rooms    int     `json:"rooms"`
	Area     float64 `json:"area"`
	Floor    string  `json:"floor"`
	Address  string  `json:"address"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Photo    string  `json:"photo"`
	URL      string  `json:"url"`
}

// CityTours lists tours for a destination, priced in currency.
func (c *Client) CityTours(ctx context.Context, destID, currency string) ([]domain.Product, error) {
	q := url.Values{"destination": {destID}, "currency": {currency}}
	var out struct {
		Data []tour `json:"data"`
	}
	if err := c.http.Get(ctx, "tours", "/tours?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	items := make([]domain.Product, 0, len(out.Data))
	for _, t := range out.Data {
		price := t.PriceFormat
		if price == "" && t.Price > 0 {
			price = strconv.FormatFloat(t.Price, 'f', -1, 64)
		}
		items = append(items, domain.Product{
			Title:    t.Title,
			Subtitle: firstNonEmpty(t.DurationText, t.ShortDesc),
			Rating:   t.Rating,
			Price:    price,
			Currency: t.Currency,
			ImageURL: t.PhotoURL,
			URL:      t.PageURL,
		})
	}
	return items, nil
}

// RentalsNearby lists flats offered around a point; featureID narrows the
// search to one building when the partner knows it.
func (c *Client) RentalsNearby(ctx context.Context, lat, lon float64, featureID string) ([]domain.Product, error) {
	q := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', 6, 64)},
	}
	if featureID != "" {
		q.Set("feature", featureID)
	}
	var out []rental
	if err := c.http.Get(ctx, "rentals", "/rentals/nearby?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	items := make([]domain.Product, 0, len(out))
	for _, r := range out {
		items = append(items, domain.Product{
			Title:    fmt.Sprintf("%d rooms, %.0f m²", r.Rooms, r.Area),
			Subtitle: firstNonEmpty(r.Address, r.Floor),
			Price:    strconv.FormatFloat(r.Price, 'f', -1, 64),
			Currency: r.Currency,
			ImageURL: r.Photo,
			URL:      r.URL,
		})
	}
	return items, nil
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
