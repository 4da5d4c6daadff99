package orchestrator_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"placepage/internal/domain"
	"placepage/internal/orchestrator"
	"placepage/internal/sponsored"
	"placepage/internal/view"
)

// ---- fakes ----

type priceCall struct {
	id, currency string
	done         func(domain.PriceResult)
}

type infoCall struct {
	id, lang string
	done     func(domain.InfoResult)
}

type fakeBooking struct {
	prices []priceCall
	infos  []infoCall
}

func (f *fakeBooking) RequestPrice(id, currency string, p domain.Policy, done func(domain.PriceResult)) {
	f.prices = append(f.prices, priceCall{id, currency, done})
}

func (f *fakeBooking) RequestInfo(id, lang string, p domain.Policy, done func(domain.InfoResult)) {
	f.infos = append(f.infos, infoCall{id, lang, done})
}

type galleryCall struct {
	id   string
	q    domain.GalleryQuery
	done func(domain.ProductsResult)
}

type fakeGallery struct {
	cached map[string]bool
	calls  []galleryCall
}

func (f *fakeGallery) Request(id string, q domain.GalleryQuery, p domain.Policy, done func(domain.ProductsResult)) {
	f.calls = append(f.calls, galleryCall{id, q, done})
}

func (f *fakeGallery) HasCache(id string) bool { return f.cached[id] }

type conn bool

func (c conn) IsConnected() bool { return bool(c) }

var (
	allowed = domain.Policy{NetworkAllowed: true}
	denied  = domain.Policy{NetworkAllowed: false}
)

type fixture struct {
	o       *orchestrator.Orchestrator
	booking *fakeBooking
	tours   *fakeGallery
	rentals *fakeGallery
	surface *view.Model
	cache   *sponsored.Cache
}

func newFixture(connected bool) *fixture {
	return newFixtureWith(connected, orchestrator.Config{Currency: "USD", Lang: "en"})
}

func newFixtureWith(connected bool, cfg orchestrator.Config) *fixture {
	f := &fixture{
		booking: &fakeBooking{},
		tours:   &fakeGallery{cached: map[string]bool{}},
		rentals: &fakeGallery{cached: map[string]bool{}},
		surface: view.New(),
		cache:   sponsored.NewCache(0),
	}
	f.o = orchestrator.New(f.cache, orchestrator.Providers{
		Booking: f.booking,
		Galleries: map[domain.ProviderType]domain.GalleryProvider{
			domain.ProviderCityTours: f.tours,
			domain.ProviderRentals:   f.rentals,
		},
	}, conn(connected), f.surface, cfg)
	return f
}

func hotel(id string) *domain.PlaceObject {
	return &domain.PlaceObject{ID: "obj-" + id, Kind: domain.KindPOI,
		Sponsored: &domain.SponsoredData{Provider: "booking", ContentID: id, Rating: "8.7"}}
}

func tour(id string) *domain.PlaceObject {
	return &domain.PlaceObject{ID: "obj-" + id, Kind: domain.KindPOI,
		Sponsored: &domain.SponsoredData{Provider: "city_tours", ContentID: id, URL: "https://tours/" + id}}
}

func plain(id string) *domain.PlaceObject {
	return &domain.PlaceObject{ID: id, Kind: domain.KindPOI}
}

// ---- booking ----

func TestBooking_PriceAppliedForCurrentSelection(t *testing.T) {
	f := newFixture(true)
	f.o.OnObjectSelected(hotel("b1"), allowed)

	if len(f.booking.prices) != 1 || f.booking.prices[0].id != "b1" || f.booking.prices[0].currency != "USD" {
		t.Fatalf("expected one price request for (b1, USD), got %+v", f.booking.prices)
	}
	if len(f.booking.infos) != 1 {
		t.Fatalf("expected one info request, got %d", len(f.booking.infos))
	}

	previewRefreshes := 0
	f.o.OnPreviewChanged = func() { previewRefreshes++ }
	f.booking.prices[0].done(domain.PriceResult{ID: "b1", Price: "120", Currency: "USD"})

	if p := f.o.Price(); !strings.Contains(p, "120") {
		t.Fatalf("expected formatted price, got %q", p)
	}
	if f.surface.Snapshot().Price != f.o.Price() || previewRefreshes != 1 {
		t.Fatalf("price not pushed to the surface")
	}
	if f.o.InFlight() != 1 {
		t.Fatalf("only the info request should remain in flight, got %d", f.o.InFlight())
	}
}

func TestBooking_LateResultForSupersededSelectionDropped(t *testing.T) {
	f := newFixture(true)
	f.o.OnObjectSelected(hotel("b1"), allowed)
	f.o.OnObjectSelected(plain("B"), allowed)

	f.booking.prices[0].done(domain.PriceResult{ID: "b1", Price: "99", Currency: "USD"})
	f.booking.infos[0].done(domain.InfoResult{ID: "b1", Lang: "en", Info: domain.HotelInfo{Description: "late"}})

	s := f.surface.Snapshot()
	if s.Price != "" || s.Hotel != nil || f.o.Price() != "" {
		t.Fatalf("late b1 results leaked into B: price=%q hotel=%+v", s.Price, s.Hotel)
	}
	// still cached for the next visit
	if !f.cache.Has(domain.ProviderBooking, sponsored.PriceKey("b1", "USD")) {
		t.Fatalf("late result should still populate the cache")
	}
}

func TestBooking_RapidSelectionsOnlyFinalApplies(t *testing.T) {
	f := newFixture(true)
	for _, id := range []string{"b1", "b2", "b3"} {
		f.o.OnObjectSelected(hotel(id), allowed)
	}
	// answers arrive in reverse order
	for i := len(f.booking.prices) - 1; i >= 0; i-- {
		c := f.booking.prices[i]
		f.booking.prices[i].done(domain.PriceResult{ID: c.id, Price: strings.TrimPrefix(c.id, "b") + "00", Currency: "USD"})
	}
	if p := f.o.Price(); !strings.Contains(p, "300") {
		t.Fatalf("expected b3 price, got %q", p)
	}
}

func TestBooking_DuplicateInFlightNotReissued(t *testing.T) {
	f := newFixture(true)
	f.o.OnObjectSelected(hotel("b1"), allowed)
	f.o.OnObjectSelected(hotel("b1"), allowed)
	if len(f.booking.prices) != 1 || len(f.booking.infos) != 1 {
		t.Fatalf("expected de-duplicated requests, got %d/%d", len(f.booking.prices), len(f.booking.infos))
	}

	// reselecting after an unrelated object still gets the in-flight answer
	f.o.OnObjectSelected(plain("B"), allowed)
	f.o.OnObjectSelected(hotel("b1"), allowed)
	f.booking.infos[0].done(domain.InfoResult{ID: "b1", Lang: "en", Info: domain.HotelInfo{
		Description: "Sea view",
		Facilities:  make([]domain.Facility, 7),
	}})
	h := f.surface.Snapshot().Hotel
	if h == nil || h.Description != "Sea view" || !h.MoreFacility || h.Rating != "8.7" {
		t.Fatalf("unexpected hotel view: %+v", h)
	}
}

func TestBooking_PolicyDeniedServesCacheOnly(t *testing.T) {
	f := newFixture(true)
	f.cache.Put(domain.ProviderBooking, sponsored.PriceKey("b1", "USD"), domain.Price{Amount: "80", Currency: "USD"})

	f.o.OnObjectSelected(hotel("b1"), denied)
	if len(f.booking.prices) != 0 || len(f.booking.infos) != 0 {
		t.Fatalf("no request may be issued when network is denied")
	}
	if !strings.Contains(f.o.Price(), "80") {
		t.Fatalf("expected cached price, got %q", f.o.Price())
	}
}

func TestBooking_ErrorIsNonFatal(t *testing.T) {
	f := newFixture(true)
	f.o.OnObjectSelected(hotel("b1"), allowed)
	f.booking.prices[0].done(domain.PriceResult{ID: "b1", Currency: "USD", Err: errors.New("boom")})
	if f.o.InFlight() != 1 {
		t.Fatalf("failed request must leave the in-flight set")
	}
	if f.o.Price() != "" {
		t.Fatalf("price should stay empty after an error")
	}
}

func TestNoneProvider_SkipsEnrichment(t *testing.T) {
	f := newFixture(true)
	f.o.OnObjectSelected(plain("x"), allowed)
	f.o.OnObjectSelected(nil, allowed)
	if len(f.booking.prices)+len(f.tours.calls)+len(f.rentals.calls) != 0 {
		t.Fatalf("no provider should be contacted")
	}
	if f.o.Sponsored() != nil || f.o.Object() != nil {
		t.Fatalf("nil selection must clear sponsored info")
	}
}

// ---- galleries ----

func TestCityTours_OfflineWithoutCacheGivesEmptyResult(t *testing.T) {
	f := newFixture(false)
	f.o.OnObjectSelected(tour("d1"), allowed)

	if len(f.tours.calls) != 0 {
		t.Fatalf("no request expected while offline")
	}
	g := f.surface.Snapshot().Gallery
	if g == nil || g.Status != domain.GalleryError || g.URL != "https://tours/d1" {
		t.Fatalf("expected immediate empty-result placeholder, got %+v", g)
	}
	if f.o.Gallery().ContainsLoading() {
		t.Fatalf("no loading indicator may be left behind")
	}
}

func TestCityTours_LoadingThenProductsSwapAfterTransition(t *testing.T) {
	f := newFixture(true)
	f.o.OnObjectSelected(tour("d1"), allowed)

	s := f.surface.Snapshot()
	if s.Gallery == nil || s.Gallery.Status != domain.GalleryLoading {
		t.Fatalf("expected loading placeholder, got %+v", s.Gallery)
	}
	if len(f.tours.calls) != 1 || f.tours.calls[0].q.Currency != "USD" {
		t.Fatalf("expected one tours request, got %+v", f.tours.calls)
	}

	f.tours.calls[0].done(domain.ProductsResult{Provider: domain.ProviderCityTours, ID: "d1",
		Items: []domain.Product{{Title: "Boat trip"}}})
	s = f.surface.Snapshot()
	if s.Gallery.Status != domain.GalleryReady || s.GalleryMode != domain.ReplaceAfterTransition {
		t.Fatalf("expected ready gallery replaced after transition, got %+v mode=%s", s.Gallery, s.GalleryMode)
	}
	if !f.cache.Has(domain.ProviderCityTours, "d1") {
		t.Fatalf("products should be cached")
	}

	// second visit is served from cache without a loading placeholder
	f.o.OnObjectSelected(plain("x"), allowed)
	f.o.OnObjectSelected(tour("d1"), allowed)
	s = f.surface.Snapshot()
	if s.Gallery.Status != domain.GalleryReady || s.GalleryMode != domain.ReplaceNow {
		t.Fatalf("cached products should show immediately, got %+v", s.Gallery)
	}
}

func TestCityTours_InFlightNoDuplicateOrPlaceholder(t *testing.T) {
	f := newFixture(true)
	f.o.OnObjectSelected(tour("d1"), allowed)
	f.o.OnObjectSelected(tour("d1"), allowed)

	if len(f.tours.calls) != 1 {
		t.Fatalf("expected one request, got %d", len(f.tours.calls))
	}
	if f.o.Gallery() != nil {
		t.Fatalf("no second loading placeholder while a request is in flight")
	}
	f.tours.calls[0].done(domain.ProductsResult{Provider: domain.ProviderCityTours, ID: "d1",
		Items: []domain.Product{{Title: "Walk"}}})
	if s := f.surface.Snapshot(); s.Gallery == nil || s.GalleryMode != domain.ReplaceNow {
		t.Fatalf("expected gallery installed now, got %+v", s.Gallery)
	}
}

func TestCityTours_EmptyAndErrorTransitionInPlace(t *testing.T) {
	f := newFixture(true)
	f.o.OnObjectSelected(tour("d1"), allowed)
	f.tours.calls[0].done(domain.ProductsResult{Provider: domain.ProviderCityTours, ID: "d1"})

	g := f.surface.Snapshot().Gallery
	if g.Status != domain.GalleryError || g.Key != "d1" || g.URL != "https://tours/d1" {
		t.Fatalf("empty list should turn the placeholder into an error: %+v", g)
	}

	f.o.OnObjectSelected(plain("x"), allowed)
	f.o.OnObjectSelected(tour("d2"), allowed)
	f.tours.calls[1].done(domain.ProductsResult{Provider: domain.ProviderCityTours, ID: "d2", Err: errors.New("503")})
	g = f.surface.Snapshot().Gallery
	if g.Status != domain.GalleryError || g.Key != "d2" || g.URL != "https://tours/d2" {
		t.Fatalf("error should keep the resolved url: %+v", g)
	}
}

func TestGallery_ErrorWithoutLoadingInstallsPlaceholder(t *testing.T) {
	f := newFixture(true)
	f.tours.cached["d1"] = true
	f.o.OnObjectSelected(tour("d1"), allowed)
	if f.o.Gallery() != nil {
		t.Fatalf("provider cache hit must not show loading")
	}
	f.o.OnError(domain.ProviderCityTours, "", errors.New("timeout"))
	if g := f.o.Gallery(); g == nil || g.Status != domain.GalleryError {
		t.Fatalf("expected error placeholder, got %+v", g)
	}
}

func TestGallery_StaleProductsAndErrorsDropped(t *testing.T) {
	f := newFixture(true)
	f.o.OnObjectSelected(tour("d1"), allowed)
	f.o.OnObjectSelected(tour("d2"), allowed)

	f.tours.calls[0].done(domain.ProductsResult{Provider: domain.ProviderCityTours, ID: "d1",
		Items: []domain.Product{{Title: "old"}}})
	if g := f.o.Gallery(); g == nil || g.Key != "d2" || g.Status != domain.GalleryLoading {
		t.Fatalf("d1 products must not replace d2 placeholder: %+v", g)
	}
	f.o.OnError(domain.ProviderCityTours, "d1", errors.New("late"))
	if g := f.o.Gallery(); g.Status != domain.GalleryLoading {
		t.Fatalf("stale error must be ignored: %+v", g)
	}
}

func TestRentals_KeyedByFeatureAndQueriedByPosition(t *testing.T) {
	f := newFixture(true)
	obj := &domain.PlaceObject{ID: "r", FeatureID: "f:9", Lat: 55.75, Lon: 37.62,
		Sponsored: &domain.SponsoredData{Provider: "rentals", DescriptionURL: "https://rent"}}
	f.o.OnObjectSelected(obj, allowed)

	if len(f.rentals.calls) != 1 {
		t.Fatalf("expected rentals request")
	}
	c := f.rentals.calls[0]
	if c.id != "f:9" || c.q.Lat != 55.75 || c.q.Lon != 37.62 {
		t.Fatalf("unexpected rentals call: %+v", c)
	}
	c.done(domain.ProductsResult{Provider: domain.ProviderRentals, ID: "f:9", Items: []domain.Product{{Title: "2 rooms"}}})
	if g := f.o.Gallery(); g.Status != domain.GalleryReady || g.URL != "https://rent" {
		t.Fatalf("unexpected gallery: %+v", g)
	}
}

func TestBooking_LateResultForGallerySelectionWithSameIDDropped(t *testing.T) {
	f := newFixture(true)
	f.o.OnObjectSelected(hotel("42"), allowed)
	f.o.OnObjectSelected(tour("42"), allowed)

	f.booking.prices[0].done(domain.PriceResult{ID: "42", Price: "120", Currency: "USD"})
	f.booking.infos[0].done(domain.InfoResult{ID: "42", Lang: "en", Info: domain.HotelInfo{Description: "late"}})

	snap := f.surface.Snapshot()
	if f.o.Price() != "" || snap.Price != "" || snap.Hotel != nil {
		t.Fatalf("booking results must not land on a city-tours selection: price=%q hotel=%+v", f.o.Price(), snap.Hotel)
	}
	if g := f.o.Gallery(); g == nil || g.Provider != domain.ProviderCityTours || g.Status != domain.GalleryLoading {
		t.Fatalf("gallery placeholder should be untouched: %+v", g)
	}
}

func TestStaleFailuresAreNotWarnings(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	f := newFixture(true)
	f.o.OnObjectSelected(hotel("b1"), allowed)
	f.o.OnObjectSelected(tour("d1"), allowed)
	f.o.OnObjectSelected(tour("d2"), allowed)

	f.booking.prices[0].done(domain.PriceResult{ID: "b1", Currency: "USD", Err: errors.New("boom")})
	f.booking.infos[0].done(domain.InfoResult{ID: "b1", Lang: "en", Err: errors.New("boom")})
	f.tours.calls[0].done(domain.ProductsResult{Provider: domain.ProviderCityTours, ID: "d1", Err: errors.New("boom")})
	if strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("stale failures must not be logged as warnings: %s", buf.String())
	}

	f.tours.calls[1].done(domain.ProductsResult{Provider: domain.ProviderCityTours, ID: "d2", Err: errors.New("boom")})
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("a failure for the current selection should be a warning: %s", buf.String())
	}
}

func TestNoCurrency_NoProviderRequests(t *testing.T) {
	f := newFixtureWith(true, orchestrator.Config{Lang: "en"})
	f.o.OnObjectSelected(hotel("b1"), allowed)
	f.o.OnObjectSelected(tour("d1"), allowed)
	f.o.OnObjectSelected(&domain.PlaceObject{ID: "r", FeatureID: "f:9",
		Sponsored: &domain.SponsoredData{Provider: "rentals"}}, allowed)

	if len(f.booking.prices) != 0 || len(f.booking.infos) != 0 || len(f.tours.calls) != 0 || len(f.rentals.calls) != 0 {
		t.Fatalf("no provider may be asked without a currency: booking=%d/%d tours=%d rentals=%d",
			len(f.booking.prices), len(f.booking.infos), len(f.tours.calls), len(f.rentals.calls))
	}
	if f.o.Gallery() != nil {
		t.Fatalf("no placeholder expected without a currency, got %+v", f.o.Gallery())
	}
}
