// Package placepage is the entry point of the place panel. A Page wires the
// sponsored-content orchestrator, the region download subscription and the
// panel state machine around the current selection.
//
// A Page is not safe for concurrent use: every method, and every callback
// handed to its collaborators, runs on one control thread (see loop.Loop).
package placepage

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"placepage/internal/domain"
	"placepage/internal/downloader"
	"placepage/internal/orchestrator"
	"placepage/internal/panel"
	"placepage/internal/sponsored"
)

type Config struct {
	Currency string
	Lang     string
	Panel    panel.Config
	// CacheTTL bounds provider cache entries; zero keeps them for the session.
	CacheTTL time.Duration
}

// Collaborators are the external parts a Page talks to. Banner, Animator
// and Navigation may be nil.
type Collaborators struct {
	Sched      domain.Scheduler
	Policy     domain.NetworkPolicy
	Conn       domain.Connectivity
	Providers  orchestrator.Providers
	Regions    domain.RegionStorage
	Navigation domain.Navigation
	Surface    domain.Surface
	Banner     domain.Banner
	Animator   domain.Animator
	Geo        domain.Geodesy
}

type Page struct {
	sched   domain.Scheduler
	policy  domain.NetworkPolicy
	conn    domain.Connectivity
	nav     domain.Navigation
	surface domain.Surface
	banner  domain.Banner
	geo     domain.Geodesy

	orch      *orchestrator.Orchestrator
	downloads *downloader.Subscription
	panel     *panel.StateMachine

	generation uint64
	selection  string
	allowed    domain.Policy
	location   *domain.Location
	dms        bool
}

func New(cfg Config, c Collaborators) *Page {
	p := &Page{
		sched:   c.Sched,
		policy:  c.Policy,
		conn:    c.Conn,
		nav:     c.Navigation,
		surface: c.Surface,
		banner:  c.Banner,
		geo:     c.Geo,
	}
	p.orch = orchestrator.New(sponsored.NewCache(cfg.CacheTTL), c.Providers, c.Conn, c.Surface,
		orchestrator.Config{Currency: cfg.Currency, Lang: cfg.Lang})
	p.orch.OnPreviewChanged = p.refreshPreview
	p.downloads = downloader.New(c.Regions, c.Sched, c.Surface)
	p.panel = panel.New(c.Surface, c.Banner, c.Animator, p.orch.Object, cfg.Panel)
	return p
}

func (p *Page) Downloads() *downloader.Subscription { return p.downloads }

func (p *Page) Object() *domain.PlaceObject { return p.orch.Object() }

func (p *Page) Sponsored() *domain.SponsoredInfo { return p.orch.Sponsored() }

// SelectionID identifies the current selection in logs.
func (p *Page) SelectionID() string { return p.selection }

// SelectObject makes obj the current selection. Selecting the current
// object again is a no-op unless force is set. onComplete runs once the
// selection has been processed, or at once when nothing had to be done; a
// selection superseded while its policy check was pending still completes.
func (p *Page) SelectObject(obj *domain.PlaceObject, force bool, onComplete func()) {
	if !force && domain.SamePlace(p.orch.Object(), obj) {
		complete(onComplete)
		return
	}

	p.generation++
	gen := p.generation
	p.selection = uuid.NewString()

	// previous selection goes first, whatever comes next
	p.downloads.Detach()
	p.orch.Reset(obj)
	p.allowed = domain.Policy{}

	if obj == nil {
		p.clearViews()
		p.panel.SetState(domain.StateHidden)
		complete(onComplete)
		return
	}

	logger := log.With().Str("selection", p.selection).Str("object", obj.Identity()).Logger()
	if !requiresNetwork(obj) || p.policy == nil {
		logger.Debug().Msg("selection processed offline")
		p.proceed(gen, domain.Policy{}, onComplete)
		return
	}
	// A policy that answers inside Check is applied at once; a later answer,
	// possibly from another goroutine, is posted to the control thread.
	var (
		mu       sync.Mutex
		returned bool
		answer   *domain.Policy
	)
	p.policy.Check(func(pol domain.Policy) {
		mu.Lock()
		inline := !returned
		if inline {
			answer = &pol
		}
		mu.Unlock()
		if !inline {
			p.sched.Post(func() { p.proceed(gen, pol, onComplete) })
		}
	})
	mu.Lock()
	returned = true
	pol := answer
	mu.Unlock()
	if pol != nil {
		p.proceed(gen, *pol, onComplete)
		return
	}
	logger.Debug().Msg("selection waits for network policy")
}

func (p *Page) proceed(gen uint64, pol domain.Policy, onComplete func()) {
	defer complete(onComplete)
	if gen != p.generation {
		log.Debug().Uint64("generation", gen).Msg("policy resolved for a superseded selection")
		return
	}
	obj := p.orch.Object()
	p.allowed = pol
	p.orch.Process(pol)
	if obj.RegionID != "" && (p.nav == nil || !p.nav.IsNavigating()) {
		p.downloads.Attach(obj.RegionID)
	}
	p.refreshViews()
}

// Refresh re-renders every field of the current selection.
func (p *Page) Refresh() {
	if p.orch.Object() == nil {
		log.Error().Msg("placepage: refresh without a selection")
		return
	}
	p.refreshViews()
}

// Restore reselects the current object, re-issuing its provider requests.
func (p *Page) Restore() {
	if obj := p.orch.Object(); obj != nil {
		p.SelectObject(obj, true, nil)
	}
}

func (p *Page) SetState(s domain.PanelState) { p.panel.SetState(s) }

func (p *Page) State() domain.PanelState { return p.panel.State() }

func (p *Page) Mode() domain.PanelMode { return p.panel.Mode() }

// Hide releases the region subscription and collapses the panel.
func (p *Page) Hide() {
	p.downloads.Detach()
	p.panel.SetState(domain.StateHidden)
}

func (p *Page) HideOnTouch() { p.panel.HideOnTouch() }

func (p *Page) OnLayoutSettled() { p.panel.OnLayoutSettled() }

func (p *Page) OnNeedOpenBanner() { p.panel.OnNeedOpenBanner() }

// RefreshLocation records the user position. A USER_POSITION selection
// moves with it; any other selection gets a new distance.
func (p *Page) RefreshLocation(loc domain.Location) {
	p.location = &loc
	obj := p.orch.Object()
	if obj == nil {
		log.Error().Msg("placepage: location update without a selection")
		return
	}
	if obj.IsOfKind(domain.KindMyPosition) {
		obj.Lat, obj.Lon = loc.Lat, loc.Lon
		p.refreshLatLon(obj)
		p.surface.SetSubtitle(p.motionText(loc))
		return
	}
	p.refreshDistance(obj)
}

// RefreshAzimuth turns the direction arrow for a compass reading north
// (radians). Negative results mean no usable direction.
func (p *Page) RefreshAzimuth(north float64) {
	obj := p.orch.Object()
	if p.panel.IsHidden() || obj == nil || obj.IsOfKind(domain.KindMyPosition) || p.location == nil {
		return
	}
	_, az := p.geo.DistanceAndAzimuth(obj.Lat, obj.Lon, p.location.Lat, p.location.Lon, north)
	if az >= 0 {
		p.surface.SetDirection(az, true)
	}
}

// ToggleLatLonFormat switches between decimal and DMS coordinates.
func (p *Page) ToggleLatLonFormat() {
	p.dms = !p.dms
	if obj := p.orch.Object(); obj != nil {
		p.refreshLatLon(obj)
	}
}

// ---- rendering ----

func (p *Page) refreshViews() {
	obj := p.orch.Object()
	p.refreshPreview()
	p.refreshDetails()
	p.refreshLatLon(obj)
	if obj.IsOfKind(domain.KindMyPosition) {
		p.surface.SetDistance("", false)
		if p.location != nil {
			p.surface.SetSubtitle(p.motionText(*p.location))
		}
		return
	}
	p.refreshDistance(obj)
}

// clearViews blanks every field of a deselected place.
func (p *Page) clearViews() {
	p.surface.SetPreview(domain.Preview{})
	p.surface.SetDetails(domain.Details{})
	p.surface.SetLatLon("")
	p.surface.SetDistance("", false)
	p.surface.SetSubtitle("")
	p.surface.SetDirection(0, false)
	if p.banner != nil {
		p.banner.UpdateData(nil)
	}
}

func (p *Page) refreshPreview() {
	obj := p.orch.Object()
	if obj == nil {
		return
	}
	pv := buildPreview(obj, p.orch.Sponsored(), p.orch.Price())
	p.surface.SetPreview(pv)
	if p.banner == nil {
		return
	}
	if p.allowed.CanUseNetwork() && !obj.IsOfKind(domain.KindMyPosition) {
		p.banner.UpdateData(obj.Banners)
	} else {
		p.banner.UpdateData(nil)
	}
}

func (p *Page) refreshDetails() {
	obj := p.orch.Object()
	planning := p.nav != nil && p.nav.IsPlanning()
	taxiReady := p.location != nil && p.conn != nil && p.conn.IsConnected()
	p.surface.SetDetails(buildDetails(obj, p.orch.Sponsored(), planning, taxiReady))
}

func (p *Page) refreshLatLon(obj *domain.PlaceObject) {
	lat, lon := p.geo.FormatLatLon(obj.Lat, obj.Lon, p.dms)
	sep := ", "
	if p.dms {
		sep = " "
	}
	p.surface.SetLatLon(lat + sep + lon)
}

func (p *Page) refreshDistance(obj *domain.PlaceObject) {
	if p.location == nil {
		p.surface.SetDistance("", false)
		return
	}
	text, _ := p.geo.DistanceAndAzimuth(obj.Lat, obj.Lon, p.location.Lat, p.location.Lon, 0)
	p.surface.SetDistance(text, true)
}

func (p *Page) motionText(loc domain.Location) string {
	var parts []string
	if loc.Altitude != nil {
		parts = append(parts, "▲▼ "+p.geo.FormatAltitude(*loc.Altitude))
	}
	if loc.Speed != nil {
		parts = append(parts, p.geo.FormatSpeed(*loc.Speed))
	}
	return strings.Join(parts, "   ")
}

// requiresNetwork is true for sponsored objects and objects with banners.
func requiresNetwork(obj *domain.PlaceObject) bool {
	return sponsored.IsSponsored(sponsored.Info(obj)) || len(obj.Banners) > 0
}

func complete(fn func()) {
	if fn != nil {
		fn()
	}
}
