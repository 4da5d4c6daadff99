package domain

type GalleryStatus string

const (
	GalleryLoading GalleryStatus = "loading"
	GalleryError   GalleryStatus = "error"
	GalleryReady   GalleryStatus = "ready"
)

// ReplaceMode tells the surface when to install new gallery content.
type ReplaceMode string

const (
	ReplaceNow             ReplaceMode = "now"
	ReplaceAfterTransition ReplaceMode = "after_transition"
)

// Gallery is the sponsored product strip (city tours, rentals).
type Gallery struct {
	Provider ProviderType  `json:"provider"`
	Key      string        `json:"key"`
	URL      string        `json:"url"`
	Status   GalleryStatus `json:"status"`
	Items    []Product     `json:"items,omitempty"`
}

func (g *Gallery) ContainsLoading() bool { return g != nil && g.Status == GalleryLoading }

type Button string

const (
	ButtonRouteRemove   Button = "route_remove"
	ButtonBack          Button = "back"
	ButtonBooking       Button = "booking"
	ButtonOpentable     Button = "opentable"
	ButtonBookingSearch Button = "booking_search"
	ButtonCall          Button = "call"
	ButtonBookmark      Button = "bookmark"
	ButtonRouteFrom     Button = "route_from"
	ButtonRouteTo       Button = "route_to"
	ButtonRouteAdd      Button = "route_add"
	ButtonShare         Button = "share"
)

type Preview struct {
	Title          string `json:"title"`
	SecondaryTitle string `json:"secondary_title"`
	Subtitle       string `json:"subtitle"`
	Address        string `json:"address"`
	Rating         string `json:"rating"`
	Impress        int    `json:"impress"`
	Price          string `json:"price"`
	// RatingBlock is shown for BOOKING places with a rating or a price.
	RatingBlock bool `json:"rating_block"`
}

type Details struct {
	Metadata      map[string]string `json:"metadata"`
	OpeningHours  string            `json:"opening_hours"`
	LocalAd       string            `json:"local_ad"`
	Taxi          string            `json:"taxi"`
	Bookmark      bool              `json:"bookmark"`
	BookmarkNote  string            `json:"bookmark_note"`
	NoteIsHTML    bool              `json:"note_is_html"`
	Buttons       []Button          `json:"buttons"`
	HotelViews    bool              `json:"hotel_views"`
	GalleryViews  bool              `json:"gallery_views"`
	GalleryTitle  string            `json:"gallery_title"`
	SponsoredMore bool              `json:"sponsored_more"`
}

// HotelView is the hotel section after a HotelInfo arrives.
type HotelView struct {
	Description   string         `json:"description"`
	Facilities    []Facility     `json:"facilities"`
	MoreFacility  bool           `json:"more_facilities"`
	Photos        []Image        `json:"photos"`
	Nearby        []NearbyObject `json:"nearby"`
	Reviews       []Review       `json:"reviews"`
	Rating        string         `json:"rating"`
	ReviewsAmount int            `json:"reviews_amount"`
}

type DownloaderView struct {
	RegionID   string       `json:"region_id"`
	Status     RegionStatus `json:"status"`
	Size       int64        `json:"size"`
	ChildCount int          `json:"child_count"`
	Local      int64        `json:"local"`
	Remote     int64        `json:"remote"`
}
