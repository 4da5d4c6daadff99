package domain

import (
	"fmt"
	"strings"
)

// Kind is the origin of a selected map object.
type Kind string

const (
	KindPOI        Kind = "poi"
	KindBookmark   Kind = "bookmark"
	KindSearch     Kind = "search"
	KindAPIPoint   Kind = "api_point"
	KindMyPosition Kind = "my_position"
)

// Metadata keys carried by a place.
const (
	MetaPhone     = "phone"
	MetaWebsite   = "website"
	MetaURL       = "url"
	MetaEmail     = "email"
	MetaOperator  = "operator"
	MetaOpenHours = "opening_hours"
	MetaInternet  = "internet"
	MetaWikipedia = "wikipedia"
	MetaFlats     = "flats"
	MetaCuisine   = "cuisine"
)

type LocalAdInfo struct {
	Available bool   `json:"available"`
	Customer  bool   `json:"customer"`
	URL       string `json:"url"`
}

type BannerPlacement struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

// SponsoredData is what the backend attached to the feature: a provider
// flag plus whatever the provider already told us about it.
type SponsoredData struct {
	Provider       string `json:"provider"`
	ContentID      string `json:"content_id"`
	Rating         string `json:"rating"`
	Impress        int    `json:"impress"`
	Price          string `json:"price"`
	URL            string `json:"url"`
	DescriptionURL string `json:"description_url"`
	ReviewURL      string `json:"review_url"`
}

// PlaceObject is a selected map entity. Only USER_POSITION objects have
// their coordinates updated after creation.
type PlaceObject struct {
	ID               string            `json:"id"`
	Kind             Kind              `json:"kind"`
	Title            string            `json:"title"`
	SecondaryTitle   string            `json:"secondary_title"`
	Subtitle         string            `json:"subtitle"`
	Address          string            `json:"address"`
	Lat              float64           `json:"lat"`
	Lon              float64           `json:"lon"`
	FeatureID        string            `json:"feature_id"`
	RegionID         string            `json:"region_id"`
	Metadata         map[string]string `json:"metadata"`
	Sponsored        *SponsoredData    `json:"sponsored,omitempty"`
	LocalAd          *LocalAdInfo      `json:"local_ad,omitempty"`
	TaxiProviders    []string          `json:"taxi_providers,omitempty"`
	Banners          []BannerPlacement `json:"banners,omitempty"`
	BookingSearchURL string            `json:"booking_search_url"`
	BookmarkNote     string            `json:"bookmark_note"`
	RoutePoint       bool              `json:"route_point"`
}

// Identity is the stable id, or a kind+coordinate composite when the
// source has none.
func (o *PlaceObject) Identity() string {
	if o == nil {
		return ""
	}
	if o.ID != "" {
		return o.ID
	}
	return fmt.Sprintf("%s@%.6f,%.6f", o.Kind, o.Lat, o.Lon)
}

func (o *PlaceObject) Meta(key string) string {
	if o == nil || o.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(o.Metadata[key])
}

func (o *PlaceObject) IsOfKind(k Kind) bool { return o != nil && o.Kind == k }

func (o *PlaceObject) HasPhone() bool { return o.Meta(MetaPhone) != "" }

// SamePlace reports whether a and b denote the same selection.
func SamePlace(a, b *PlaceObject) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind == b.Kind && a.Identity() == b.Identity()
}

type Location struct {
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Altitude *float64 `json:"altitude,omitempty"`
	Speed    *float64 `json:"speed,omitempty"`
}
