package sponsored

import (
	"strings"

	"placepage/internal/domain"
)

// backend provider flags, first match wins
var providerAliases = []struct {
	t       domain.ProviderType
	aliases []string
}{
	{domain.ProviderBooking, []string{"booking", "booking.com"}},
	{domain.ProviderOpentable, []string{"opentable"}},
	{domain.ProviderGeochat, []string{"geochat"}},
	{domain.ProviderCityTours, []string{"city_tours", "citytours", "viator", "thor"}},
	{domain.ProviderRentals, []string{"rentals", "rental", "cian"}},
}

// Resolve classifies obj and returns the provider type with the key used to
// talk to that provider. Rentals are keyed by feature id, everything else by
// the backend content id.
func Resolve(obj *domain.PlaceObject) (domain.ProviderType, string) {
	if obj == nil || obj.Sponsored == nil {
		return domain.ProviderNone, ""
	}
	flag := strings.ToLower(strings.TrimSpace(obj.Sponsored.Provider))
	for _, p := range providerAliases {
		for _, a := range p.aliases {
			if flag != a {
				continue
			}
			if p.t == domain.ProviderRentals {
				return p.t, obj.FeatureID
			}
			return p.t, obj.Sponsored.ContentID
		}
	}
	return domain.ProviderNone, ""
}

// Info derives a fresh SponsoredInfo for obj; nil when obj is nil.
func Info(obj *domain.PlaceObject) *domain.SponsoredInfo {
	if obj == nil {
		return nil
	}
	t, key := Resolve(obj)
	info := &domain.SponsoredInfo{Type: t, ID: key}
	if s := obj.Sponsored; s != nil && t != domain.ProviderNone {
		info.Rating = s.Rating
		info.Impress = s.Impress
		info.Price = s.Price
		info.URL = s.URL
		info.DescriptionURL = s.DescriptionURL
		info.ReviewURL = s.ReviewURL
	}
	return info
}

// IsSponsored reports a resolved, non-NONE provider.
func IsSponsored(info *domain.SponsoredInfo) bool {
	return info != nil && info.Type != domain.ProviderNone
}
