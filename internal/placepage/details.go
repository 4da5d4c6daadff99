package placepage

import (
	"regexp"

	"placepage/internal/domain"
)

const (
	localAdView   = "view_campaign"
	localAdCreate = "create_campaign"
)

var galleryTitles = map[domain.ProviderType]string{
	domain.ProviderCityTours: "Tours & activities",
	domain.ProviderRentals:   "Rentals nearby",
}

// an opening tag is enough to treat a note as markup
var htmlTag = regexp.MustCompile(`(?i)<[a-z][\s\S]*>`)

// metadata keys shown in the details list; opening hours have their own row
var detailKeys = []string{
	domain.MetaPhone, domain.MetaWebsite, domain.MetaURL, domain.MetaEmail, domain.MetaOperator,
	domain.MetaCuisine, domain.MetaWikipedia, domain.MetaInternet, domain.MetaFlats,
}

func buildPreview(obj *domain.PlaceObject, info *domain.SponsoredInfo, price string) domain.Preview {
	pv := domain.Preview{
		Title:          obj.Title,
		SecondaryTitle: obj.SecondaryTitle,
		Subtitle:       obj.Subtitle,
		Address:        obj.Address,
	}
	if info != nil && info.Type == domain.ProviderBooking {
		pv.Rating = info.Rating
		pv.Impress = info.Impress
		pv.Price = price
		pv.RatingBlock = pv.Rating != "" || pv.Price != ""
	}
	return pv
}

func buildDetails(obj *domain.PlaceObject, info *domain.SponsoredInfo, planning, taxiReady bool) domain.Details {
	d := domain.Details{
		Metadata:     map[string]string{},
		OpeningHours: obj.Meta(domain.MetaOpenHours),
		Bookmark:     obj.IsOfKind(domain.KindBookmark),
		Buttons:      buttons(obj, info, planning),
	}
	for _, k := range detailKeys {
		if v := obj.Meta(k); v != "" {
			d.Metadata[k] = v
		}
	}
	if ad := obj.LocalAd; ad != nil && ad.Available {
		d.LocalAd = localAdCreate
		if ad.Customer {
			d.LocalAd = localAdView
		}
	}
	// only the first provider is offered
	if taxiReady && len(obj.TaxiProviders) > 0 {
		d.Taxi = obj.TaxiProviders[0]
	}
	if d.Bookmark && obj.BookmarkNote != "" {
		d.BookmarkNote = obj.BookmarkNote
		d.NoteIsHTML = htmlTag.MatchString(obj.BookmarkNote)
	}
	if info != nil {
		d.HotelViews = info.Type == domain.ProviderBooking
		d.GalleryViews = info.Type.HasGallery()
		d.GalleryTitle = galleryTitles[info.Type]
		d.SponsoredMore = d.HotelViews && info.URL != ""
	}
	return d
}

// buttons lists the action row. A route point only offers its removal.
func buttons(obj *domain.PlaceObject, info *domain.SponsoredInfo, planning bool) []domain.Button {
	if obj.RoutePoint {
		return []domain.Button{domain.ButtonRouteRemove}
	}
	var b []domain.Button
	if obj.IsOfKind(domain.KindAPIPoint) {
		b = append(b, domain.ButtonBack)
	}
	if info != nil {
		switch info.Type {
		case domain.ProviderBooking:
			b = append(b, domain.ButtonBooking)
		case domain.ProviderOpentable:
			b = append(b, domain.ButtonOpentable)
		}
	}
	if obj.BookingSearchURL != "" {
		b = append(b, domain.ButtonBookingSearch)
	}
	if obj.HasPhone() {
		b = append(b, domain.ButtonCall)
	}
	b = append(b, domain.ButtonBookmark, domain.ButtonRouteFrom, domain.ButtonRouteTo)
	if planning {
		b = append(b, domain.ButtonRouteAdd)
	}
	return append(b, domain.ButtonShare)
}
