// Package view holds the presentation surface served by the HTTP API. It
// keeps the last value of every semantic field so a client can render the
// panel from one JSON snapshot.
package view

import (
	"sync"

	"placepage/internal/domain"
)

const defaultBannerHeight = 180

type BannerState struct {
	Placements []domain.BannerPlacement `json:"placements,omitempty"`
	Opened     bool                     `json:"opened"`
	Visible    bool                     `json:"visible"`
	Height     int                      `json:"height"`
}

type Snapshot struct {
	Version            int64                  `json:"version"`
	State              domain.PanelState      `json:"state"`
	Kind               domain.Kind            `json:"kind,omitempty"`
	Preview            domain.Preview         `json:"preview"`
	Details            domain.Details         `json:"details"`
	LatLon             string                 `json:"lat_lon"`
	Distance           string                 `json:"distance"`
	DistanceVisible    bool                   `json:"distance_visible"`
	Subtitle           string                 `json:"subtitle"`
	Direction          float64                `json:"direction"`
	DirectionVisible   bool                   `json:"direction_visible"`
	Price              string                 `json:"price"`
	Hotel              *domain.HotelView      `json:"hotel,omitempty"`
	Gallery            *domain.Gallery        `json:"gallery,omitempty"`
	GalleryMode        domain.ReplaceMode     `json:"gallery_mode,omitempty"`
	Downloader         *domain.DownloaderView `json:"downloader,omitempty"`
	RichContentClears  int                    `json:"rich_content_clears"`
	HeightCompensation int                    `json:"height_compensation"`
	PreviewOpen        bool                   `json:"preview_open"`
	BottomPadding      int                    `json:"bottom_padding"`
	Banner             BannerState            `json:"banner"`
}

// Model implements domain.Surface, domain.Banner and domain.Animator.
type Model struct {
	mu           sync.RWMutex
	s            Snapshot
	bannerHeight int
}

func New() *Model {
	return &Model{s: Snapshot{State: domain.StateHidden}, bannerHeight: defaultBannerHeight}
}

// Snapshot returns a copy safe to marshal outside the lock.
func (m *Model) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s
}

func (m *Model) update(fn func(s *Snapshot)) {
	m.mu.Lock()
	fn(&m.s)
	m.s.Version++
	m.mu.Unlock()
}

// ---- domain.Surface ----

func (m *Model) SetPreview(p domain.Preview) { m.update(func(s *Snapshot) { s.Preview = p }) }

func (m *Model) SetDetails(d domain.Details) { m.update(func(s *Snapshot) { s.Details = d }) }

func (m *Model) SetLatLon(text string) { m.update(func(s *Snapshot) { s.LatLon = text }) }

func (m *Model) SetDistance(text string, visible bool) {
	m.update(func(s *Snapshot) { s.Distance, s.DistanceVisible = text, visible })
}

func (m *Model) SetSubtitle(text string) { m.update(func(s *Snapshot) { s.Subtitle = text }) }

func (m *Model) SetDirection(azimuth float64, visible bool) {
	m.update(func(s *Snapshot) { s.Direction, s.DirectionVisible = azimuth, visible })
}

func (m *Model) SetPrice(text string) { m.update(func(s *Snapshot) { s.Price = text }) }

func (m *Model) SetHotel(h *domain.HotelView) { m.update(func(s *Snapshot) { s.Hotel = h }) }

func (m *Model) SetGallery(g *domain.Gallery, mode domain.ReplaceMode) {
	m.update(func(s *Snapshot) {
		if g != nil {
			cp := *g
			g = &cp
		}
		s.Gallery, s.GalleryMode = g, mode
	})
}

func (m *Model) SetDownloader(d *domain.DownloaderView) {
	m.update(func(s *Snapshot) { s.Downloader = d })
}

func (m *Model) ClearRichContent() {
	m.update(func(s *Snapshot) {
		s.RichContentClears++
		s.Details.BookmarkNote = ""
		s.Details.NoteIsHTML = false
	})
}

func (m *Model) SetHeightCompensation(px int) {
	m.update(func(s *Snapshot) { s.HeightCompensation = px })
}

func (m *Model) SetPreviewBackground(open bool, bottomPadding int) {
	m.update(func(s *Snapshot) { s.PreviewOpen, s.BottomPadding = open, bottomPadding })
}

func (m *Model) ScrollDetailsTop() {}

// ---- domain.Animator ----

func (m *Model) SetState(st domain.PanelState, k domain.Kind) {
	m.update(func(s *Snapshot) { s.State, s.Kind = st, k })
}

// ---- domain.Banner ----

func (m *Model) UpdateData(banners []domain.BannerPlacement) {
	m.update(func(s *Snapshot) {
		s.Banner.Placements = banners
		s.Banner.Visible = len(banners) > 0
		if !s.Banner.Visible {
			s.Banner.Opened = false
		}
	})
}

func (m *Model) IsOpened() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s.Banner.Opened
}

func (m *Model) Open() {
	m.update(func(s *Snapshot) {
		if s.Banner.Visible {
			s.Banner.Opened = true
			s.Banner.Height = m.bannerHeight
		}
	})
}

func (m *Model) Close() bool {
	closed := false
	m.update(func(s *Snapshot) {
		if s.Banner.Opened {
			s.Banner.Opened = false
			closed = true
		}
	})
	return closed
}

func (m *Model) LastBannerHeight() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s.Banner.Height
}

func (m *Model) IsBannerVisible() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s.Banner.Visible
}
