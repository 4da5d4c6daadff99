package domain

// ProviderType identifies the enrichment provider that applies to a place.
type ProviderType string

const (
	ProviderNone      ProviderType = "none"
	ProviderBooking   ProviderType = "booking"
	ProviderOpentable ProviderType = "opentable"
	ProviderGeochat   ProviderType = "geochat"
	ProviderCityTours ProviderType = "city_tours"
	ProviderRentals   ProviderType = "rentals"
)

// HasGallery reports whether the provider delivers a product list.
func (t ProviderType) HasGallery() bool {
	return t == ProviderCityTours || t == ProviderRentals
}

// SponsoredInfo is derived from a PlaceObject on every selection and never
// mutated afterwards. Results are valid only while ID matches.
type SponsoredInfo struct {
	Type           ProviderType `json:"type"`
	ID             string       `json:"id"`
	Rating         string       `json:"rating"`
	Impress        int          `json:"impress"`
	Price          string       `json:"price"`
	URL            string       `json:"url"`
	DescriptionURL string       `json:"description_url"`
	ReviewURL      string       `json:"review_url"`
}

// GalleryURL is the link used by the gallery logo and "more" item.
func (s *SponsoredInfo) GalleryURL() string {
	if s == nil {
		return ""
	}
	if s.URL != "" {
		return s.URL
	}
	return s.DescriptionURL
}

type Facility struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type Image struct {
	SmallURL string `json:"small_url"`
	LargeURL string `json:"large_url"`
}

type NearbyObject struct {
	Category string  `json:"category"`
	Title    string  `json:"title"`
	Distance string  `json:"distance"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

type Review struct {
	Author   string  `json:"author"`
	Rating   float64 `json:"rating"`
	Positive string  `json:"positive"`
	Negative string  `json:"negative"`
	Date     string  `json:"date"`
}

// HotelInfo is the composite hotel enrichment; every field may be empty.
type HotelInfo struct {
	Description   string         `json:"description"`
	Facilities    []Facility     `json:"facilities"`
	Photos        []Image        `json:"photos"`
	Nearby        []NearbyObject `json:"nearby"`
	Reviews       []Review       `json:"reviews"`
	ReviewsAmount int            `json:"reviews_amount"`
	Rating        string         `json:"rating"`
}

// Product is one item of a city-tours or rentals gallery.
type Product struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle"`
	Rating   float64 `json:"rating"`
	Price    string  `json:"price"`
	Currency string  `json:"currency"`
	ImageURL string  `json:"image_url"`
	URL      string  `json:"url"`
}

type Price struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}
