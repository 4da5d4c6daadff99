package domain

import "context"

// ---- control thread ----

// Scheduler runs fn on the control thread on a later turn.
type Scheduler interface {
	Post(fn func())
}

// ---- network gating ----

type Policy struct{ NetworkAllowed bool }

func (p Policy) CanUseNetwork() bool { return p.NetworkAllowed }

// NetworkPolicy resolves asynchronously and may prompt the user.
type NetworkPolicy interface {
	Check(done func(Policy))
}

type Connectivity interface {
	IsConnected() bool
}

// ---- providers ----

type PriceResult struct {
	ID       string
	Price    string
	Currency string
	Err      error
}

type InfoResult struct {
	ID   string
	Lang string
	Info HotelInfo
	Err  error
}

type ProductsResult struct {
	Provider ProviderType
	ID       string
	Items    []Product
	Err      error
}

// BookingProvider serves hotel prices and details. Calls return at once;
// the result is delivered through the callback on the control thread.
type BookingProvider interface {
	RequestPrice(id, currency string, p Policy, done func(PriceResult))
	RequestInfo(id, lang string, p Policy, done func(InfoResult))
}

type GalleryQuery struct {
	Currency string
	Lat, Lon float64
}

// GalleryProvider serves city-tours or rentals products.
type GalleryProvider interface {
	Request(id string, q GalleryQuery, p Policy, done func(ProductsResult))
	HasCache(id string) bool
}

// ---- map regions ----

type StorageCallback interface {
	OnStatusChanged(updates []StatusUpdate)
	OnProgress(regionID string, local, remote int64)
}

type RegionStorage interface {
	Fill(regionID string) (DownloadRegion, bool)
	Subscribe(cb StorageCallback) int
	Unsubscribe(slot int)
}

type Navigation interface {
	IsNavigating() bool
	IsPlanning() bool
}

// ---- presentation ----

// Surface receives idempotent per-field updates.
type Surface interface {
	SetPreview(p Preview)
	SetDetails(d Details)
	SetLatLon(text string)
	SetDistance(text string, visible bool)
	SetSubtitle(text string)
	SetDirection(azimuth float64, visible bool)
	SetPrice(text string)
	SetHotel(h *HotelView)
	SetGallery(g *Gallery, mode ReplaceMode)
	SetDownloader(d *DownloaderView)
	ClearRichContent()
	SetHeightCompensation(px int)
	SetPreviewBackground(open bool, bottomPadding int)
	ScrollDetailsTop()
}

type Banner interface {
	UpdateData(banners []BannerPlacement)
	IsOpened() bool
	Open()
	// Close reports whether an open banner was closed.
	Close() bool
	LastBannerHeight() int
	IsBannerVisible() bool
}

// Animator is the panel animation collaborator.
type Animator interface {
	SetState(s PanelState, k Kind)
}

type Geodesy interface {
	DistanceAndAzimuth(lat, lon, fromLat, fromLon, northAzimuth float64) (distance string, azimuth float64)
	FormatLatLon(lat, lon float64, dms bool) (string, string)
	FormatAltitude(meters float64) string
	FormatSpeed(mps float64) string
}

// ---- content backends ----

type ContentRepository interface {
	UpsertHotelInfo(ctx context.Context, id, lang string, h HotelInfo) error
	GetHotelInfo(ctx context.Context, id, lang string) (HotelInfo, error)
	LogMiss(ctx context.Context, id string, status int, reason string) error
}

type ContentClient interface {
	GetProperty(ctx context.Context, id string, lang string) (map[string]any, error)
	GetReviews(ctx context.Context, id string, count int) ([]map[string]any, error)
	GetPrice(ctx context.Context, id, currency string) (Price, error)
}

type PartnerClient interface {
	CityTours(ctx context.Context, destID, currency string) ([]Product, error)
	RentalsNearby(ctx context.Context, lat, lon float64, featureID string) ([]Product, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
