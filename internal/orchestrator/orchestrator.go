package orchestrator

import (
	"github.com/rs/zerolog/log"

	"placepage/internal/adapters/observability"
	"placepage/internal/domain"
	"placepage/internal/sponsored"
)

// facilities shown before the "more" link
const maxFacilities = 5

type requestKind string

const (
	reqPrice   requestKind = "price"
	reqInfo    requestKind = "info"
	reqGallery requestKind = "gallery"
)

type requestKey struct {
	kind     requestKind
	provider domain.ProviderType
	key      string
}

type Providers struct {
	Booking   domain.BookingProvider
	Galleries map[domain.ProviderType]domain.GalleryProvider
}

type Config struct {
	Currency string
	Lang     string
}

// Orchestrator decides which provider requests a selection needs, keeps at
// most one request in flight per provider and key, and applies results only
// while they belong to the current selection.
type Orchestrator struct {
	cache     *sponsored.Cache
	providers Providers
	conn      domain.Connectivity
	surface   domain.Surface
	cfg       Config
	prices    *priceFormatter

	// OnPreviewChanged runs after a price landed; the page re-renders its preview.
	OnPreviewChanged func()

	object   *domain.PlaceObject
	info     *domain.SponsoredInfo
	price    string
	gallery  *domain.Gallery
	inflight map[requestKey]struct{}
}

func New(cache *sponsored.Cache, providers Providers, conn domain.Connectivity,
	surface domain.Surface, cfg Config) *Orchestrator {
	return &Orchestrator{
		cache:     cache,
		providers: providers,
		conn:      conn,
		surface:   surface,
		cfg:       cfg,
		prices:    newPriceFormatter(cfg.Lang),
		inflight:  map[requestKey]struct{}{},
	}
}

func (o *Orchestrator) Object() *domain.PlaceObject { return o.object }

func (o *Orchestrator) Sponsored() *domain.SponsoredInfo { return o.info }

// Price is the formatted price for the current selection, or the backend
// price until a fresh one arrives.
func (o *Orchestrator) Price() string { return o.price }

func (o *Orchestrator) Gallery() *domain.Gallery { return o.gallery }

// InFlight is the number of requests whose results have not come back.
func (o *Orchestrator) InFlight() int { return len(o.inflight) }

// OnObjectSelected is Reset followed by Process.
func (o *Orchestrator) OnObjectSelected(obj *domain.PlaceObject, p domain.Policy) {
	o.Reset(obj)
	o.Process(p)
}

// Reset makes obj current and clears everything shown for the previous
// selection. It runs for a nil obj too.
func (o *Orchestrator) Reset(obj *domain.PlaceObject) {
	o.object = obj
	o.info = sponsored.Info(obj)
	o.price = ""
	o.gallery = nil
	o.surface.SetHotel(nil)
	o.surface.SetPrice("")
	o.surface.SetGallery(nil, domain.ReplaceNow)
	if o.info != nil {
		observability.ObserveSelection(string(o.info.Type))
	}
}

// Process issues the provider requests for the current selection under
// policy p. Cached data is applied at once.
func (o *Orchestrator) Process(p domain.Policy) {
	if o.object == nil || !sponsored.IsSponsored(o.info) {
		return
	}
	o.price = o.info.Price
	// every provider prices or filters by currency; without one nothing is asked
	if o.info.ID == "" || o.cfg.Currency == "" {
		return
	}

	switch t := o.info.Type; {
	case t == domain.ProviderBooking:
		o.processBooking(p)
	case t.HasGallery():
		o.processGallery(p)
	}
}

func (o *Orchestrator) processBooking(p domain.Policy) {
	id, cur, lang := o.info.ID, o.cfg.Currency, o.cfg.Lang
	priceKey := sponsored.PriceKey(id, cur)
	infoKey := sponsored.InfoKey(id, lang)

	if v, ok := o.cache.Get(domain.ProviderBooking, priceKey); ok {
		o.applyPrice(id, v.(domain.Price))
	}
	if v, ok := o.cache.Get(domain.ProviderBooking, infoKey); ok {
		o.applyInfo(id, v.(domain.HotelInfo))
	}

	if !p.CanUseNetwork() || o.providers.Booking == nil {
		return
	}
	if o.begin(reqPrice, domain.ProviderBooking, priceKey) {
		o.providers.Booking.RequestPrice(id, cur, p, o.OnPrice)
	}
	if o.begin(reqInfo, domain.ProviderBooking, infoKey) {
		o.providers.Booking.RequestInfo(id, lang, p, o.OnHotelInfo)
	}
}

func (o *Orchestrator) processGallery(p domain.Policy) {
	t, id := o.info.Type, o.info.ID
	prov := o.providers.Galleries[t]
	q := domain.GalleryQuery{Currency: o.cfg.Currency, Lat: o.object.Lat, Lon: o.object.Lon}

	cached, inMemory := o.cache.Get(t, id)
	hasCache := inMemory || (prov != nil && prov.HasCache(id))
	if inMemory {
		o.applyProducts(t, id, cached.([]domain.Product))
	}

	online := p.CanUseNetwork() && (o.conn == nil || o.conn.IsConnected())
	if (!online && !hasCache) || prov == nil {
		if !inMemory {
			o.applyProducts(t, id, nil)
		}
		return
	}

	key := requestKey{reqGallery, t, id}
	if _, busy := o.inflight[key]; !busy && !hasCache {
		o.gallery = &domain.Gallery{Provider: t, Key: id, URL: o.info.GalleryURL(), Status: domain.GalleryLoading}
		o.surface.SetGallery(o.gallery, domain.ReplaceNow)
	}
	if o.begin(reqGallery, t, id) {
		prov.Request(id, q, p, o.OnProducts)
	}
}

// ---- result callbacks, all on the control thread ----

func (o *Orchestrator) OnPrice(r domain.PriceResult) {
	key := sponsored.PriceKey(r.ID, r.Currency)
	o.end(reqPrice, domain.ProviderBooking, key)
	if r.Err != nil {
		if !o.current(domain.ProviderBooking, r.ID) {
			o.stale("price")
			return
		}
		log.Warn().Err(r.Err).Str("id", r.ID).Msg("booking price request failed")
		return
	}
	p := domain.Price{Amount: r.Price, Currency: r.Currency}
	o.cache.Put(domain.ProviderBooking, key, p)
	o.applyPrice(r.ID, p)
}

func (o *Orchestrator) OnHotelInfo(r domain.InfoResult) {
	key := sponsored.InfoKey(r.ID, r.Lang)
	o.end(reqInfo, domain.ProviderBooking, key)
	if r.Err != nil {
		if !o.current(domain.ProviderBooking, r.ID) {
			o.stale("info")
			return
		}
		log.Warn().Err(r.Err).Str("id", r.ID).Msg("hotel info request failed")
		return
	}
	o.cache.Put(domain.ProviderBooking, key, r.Info)
	o.applyInfo(r.ID, r.Info)
}

func (o *Orchestrator) OnProducts(r domain.ProductsResult) {
	o.end(reqGallery, r.Provider, r.ID)
	if r.Err != nil {
		o.OnError(r.Provider, r.ID, r.Err)
		return
	}
	o.cache.Put(r.Provider, r.ID, r.Items)
	o.applyProducts(r.Provider, r.ID, r.Items)
}

// OnError turns a provider failure into an error placeholder. An empty id
// means the provider could not say which request failed.
func (o *Orchestrator) OnError(t domain.ProviderType, id string, err error) {
	if o.info == nil || (id != "" && !o.matches(id)) {
		o.stale("error")
		return
	}
	log.Warn().Err(err).Str("provider", string(t)).Str("id", id).Msg("sponsored gallery request failed")
	o.galleryError(t, id, o.info.GalleryURL())
}

// ---- applying ----

func (o *Orchestrator) applyPrice(id string, p domain.Price) {
	if !o.current(domain.ProviderBooking, id) {
		o.stale("price")
		return
	}
	o.price = o.prices.format(p)
	o.surface.SetPrice(o.price)
	if o.OnPreviewChanged != nil {
		o.OnPreviewChanged()
	}
}

func (o *Orchestrator) applyInfo(id string, info domain.HotelInfo) {
	if !o.current(domain.ProviderBooking, id) {
		o.stale("info")
		return
	}
	rating := o.info.Rating
	if rating == "" {
		rating = info.Rating
	}
	o.surface.SetHotel(&domain.HotelView{
		Description:   info.Description,
		Facilities:    info.Facilities,
		MoreFacility:  len(info.Facilities) > maxFacilities,
		Photos:        info.Photos,
		Nearby:        info.Nearby,
		Reviews:       info.Reviews,
		Rating:        rating,
		ReviewsAmount: info.ReviewsAmount,
	})
}

func (o *Orchestrator) applyProducts(t domain.ProviderType, id string, items []domain.Product) {
	if !o.current(t, id) {
		o.stale("products")
		return
	}
	url := o.info.GalleryURL()
	if len(items) == 0 {
		o.galleryError(t, id, url)
		return
	}
	mode := domain.ReplaceNow
	if o.gallery.ContainsLoading() {
		// the loading item animates to completion before the list swaps in
		mode = domain.ReplaceAfterTransition
	}
	o.gallery = &domain.Gallery{Provider: t, Key: id, URL: url, Status: domain.GalleryReady, Items: items}
	o.surface.SetGallery(o.gallery, mode)
}

func (o *Orchestrator) galleryError(t domain.ProviderType, id, url string) {
	if !o.gallery.ContainsLoading() {
		o.gallery = &domain.Gallery{Provider: t, Key: id, URL: url, Status: domain.GalleryError}
		o.surface.SetGallery(o.gallery, domain.ReplaceNow)
		return
	}
	g := *o.gallery
	g.Status = domain.GalleryError
	g.Provider = t
	if id != "" {
		g.Key = id
	}
	if g.URL == "" {
		g.URL = url
	}
	o.gallery = &g
	o.surface.SetGallery(o.gallery, domain.ReplaceNow)
}

// ---- bookkeeping ----

func (o *Orchestrator) matches(id string) bool {
	return o.info != nil && o.info.ID != "" && o.info.ID == id
}

// current reports whether a result from provider t for id belongs to the
// selection on screen.
func (o *Orchestrator) current(t domain.ProviderType, id string) bool {
	return o.matches(id) && o.info.Type == t
}

func (o *Orchestrator) stale(kind string) {
	observability.ObserveStale(kind)
	log.Debug().Str("kind", kind).Msg("dropping result for superseded selection")
}

func (o *Orchestrator) begin(kind requestKind, t domain.ProviderType, key string) bool {
	k := requestKey{kind, t, key}
	if _, busy := o.inflight[k]; busy {
		return false
	}
	o.inflight[k] = struct{}{}
	return true
}

func (o *Orchestrator) end(kind requestKind, t domain.ProviderType, key string) {
	delete(o.inflight, requestKey{kind, t, key})
}
