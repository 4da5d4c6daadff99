package placepage

import (
	"reflect"
	"testing"

	"placepage/internal/domain"
)

func TestButtons(t *testing.T) {
	booking := &domain.SponsoredInfo{Type: domain.ProviderBooking, ID: "b1"}
	tests := []struct {
		name     string
		obj      *domain.PlaceObject
		info     *domain.SponsoredInfo
		planning bool
		want     []domain.Button
	}{
		{
			name: "route point",
			obj:  &domain.PlaceObject{RoutePoint: true, Metadata: map[string]string{"phone": "1"}},
			want: []domain.Button{domain.ButtonRouteRemove},
		},
		{
			name: "plain poi",
			obj:  &domain.PlaceObject{Kind: domain.KindPOI},
			want: []domain.Button{domain.ButtonBookmark, domain.ButtonRouteFrom, domain.ButtonRouteTo, domain.ButtonShare},
		},
		{
			name:     "api point hotel while planning",
			obj:      &domain.PlaceObject{Kind: domain.KindAPIPoint, BookingSearchURL: "https://s", Metadata: map[string]string{"phone": "+33"}},
			info:     booking,
			planning: true,
			want: []domain.Button{
				domain.ButtonBack, domain.ButtonBooking, domain.ButtonBookingSearch, domain.ButtonCall,
				domain.ButtonBookmark, domain.ButtonRouteFrom, domain.ButtonRouteTo, domain.ButtonRouteAdd, domain.ButtonShare,
			},
		},
		{
			name: "opentable",
			obj:  &domain.PlaceObject{},
			info: &domain.SponsoredInfo{Type: domain.ProviderOpentable},
			want: []domain.Button{domain.ButtonOpentable, domain.ButtonBookmark, domain.ButtonRouteFrom, domain.ButtonRouteTo, domain.ButtonShare},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buttons(tt.obj, tt.info, tt.planning); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildDetails(t *testing.T) {
	obj := &domain.PlaceObject{
		Kind: domain.KindBookmark,
		Metadata: map[string]string{
			"phone": "+1", "opening_hours": "Mo-Fr 09:00-18:00", "internet": "wlan", "unknown": "x",
		},
		LocalAd:       &domain.LocalAdInfo{Available: true, Customer: true},
		TaxiProviders: []string{"yandex", "uber"},
		BookmarkNote:  "<p>Ask for <b>Anna</b></p>",
	}

	d := buildDetails(obj, &domain.SponsoredInfo{Type: domain.ProviderCityTours}, false, true)
	if d.OpeningHours != "Mo-Fr 09:00-18:00" || d.Metadata["phone"] != "+1" || d.Metadata["internet"] != "wlan" {
		t.Fatalf("metadata not copied: %+v", d)
	}
	if _, ok := d.Metadata["unknown"]; ok {
		t.Fatalf("unknown keys must not be shown")
	}
	if _, ok := d.Metadata["opening_hours"]; ok {
		t.Fatalf("opening hours have their own row")
	}
	if d.LocalAd != localAdView || d.Taxi != "yandex" {
		t.Fatalf("local ad %q taxi %q", d.LocalAd, d.Taxi)
	}
	if !d.Bookmark || !d.NoteIsHTML || d.BookmarkNote == "" {
		t.Fatalf("bookmark note: %+v", d)
	}
	if !d.GalleryViews || d.HotelViews || d.GalleryTitle == "" {
		t.Fatalf("gallery flags: %+v", d)
	}

	obj.LocalAd.Customer = false
	obj.BookmarkNote = "call 2 < 3"
	d = buildDetails(obj, nil, false, false)
	if d.LocalAd != localAdCreate || d.Taxi != "" || d.NoteIsHTML {
		t.Fatalf("unexpected details: %+v", d)
	}
}

func TestBuildPreview_RatingBlockForBookingOnly(t *testing.T) {
	obj := &domain.PlaceObject{Title: "Ritz"}
	pv := buildPreview(obj, &domain.SponsoredInfo{Type: domain.ProviderBooking, Rating: "9.5"}, "")
	if !pv.RatingBlock || pv.Rating != "9.5" {
		t.Fatalf("booking rating should show: %+v", pv)
	}
	pv = buildPreview(obj, &domain.SponsoredInfo{Type: domain.ProviderGeochat, Rating: "9.5"}, "$1")
	if pv.RatingBlock || pv.Rating != "" || pv.Price != "" {
		t.Fatalf("non-booking places carry no rating block: %+v", pv)
	}
}
