package panel_test

import (
	"testing"

	"placepage/internal/domain"
	"placepage/internal/panel"
	"placepage/internal/view"
)

func withBanner(m *view.Model) *view.Model {
	m.UpdateData([]domain.BannerPlacement{{ID: "ad-1", Provider: "mopub"}})
	return m
}

func newMachine(surface *view.Model, obj *domain.PlaceObject, cfg panel.Config) *panel.StateMachine {
	return panel.New(surface, surface, surface, func() *domain.PlaceObject { return obj }, cfg)
}

func TestSetHidden_FromAnyStateClearsRichContent(t *testing.T) {
	obj := &domain.PlaceObject{ID: "p1", Kind: domain.KindBookmark}
	for _, from := range []domain.PanelState{
		domain.StateHidden, domain.StatePreview, domain.StateDetails, domain.StateFullscreen,
	} {
		surface := view.New()
		m := newMachine(surface, obj, panel.Config{})
		m.SetState(from)
		clears := surface.Snapshot().RichContentClears

		m.SetState(domain.StateHidden)
		if m.State() != domain.StateHidden || !m.IsHidden() {
			t.Fatalf("from %s: expected hidden, got %s", from, m.State())
		}
		if surface.Snapshot().RichContentClears != clears+1 {
			t.Fatalf("from %s: rich content not cleared", from)
		}
	}
}

func TestPreviewToDetails_OpensBannerAndResetsCompensation(t *testing.T) {
	surface := withBanner(view.New())
	m := newMachine(surface, &domain.PlaceObject{ID: "p1"}, panel.Config{})

	m.SetState(domain.StateDetails)
	m.SetState(domain.StatePreview) // closes the banner, compensates
	if surface.IsOpened() {
		t.Fatalf("banner should be closed in preview")
	}
	if m.Compensation() == 0 || surface.Snapshot().HeightCompensation == 0 {
		t.Fatalf("expected height compensation after closing the banner")
	}

	m.SetState(domain.StateDetails)
	if !surface.IsOpened() {
		t.Fatalf("banner should reopen in details")
	}
	m.OnLayoutSettled()
	if m.Compensation() != 0 || surface.Snapshot().HeightCompensation != 0 {
		t.Fatalf("compensation must be zero once layout settles")
	}
}

func TestCollapse_CompensationHeldUntilLayoutSettles(t *testing.T) {
	surface := withBanner(view.New())
	m := newMachine(surface, &domain.PlaceObject{ID: "p1"}, panel.Config{})
	m.SetState(domain.StateFullscreen)
	m.SetState(domain.StateHidden)

	if got := surface.Snapshot().HeightCompensation; got != surface.LastBannerHeight() {
		t.Fatalf("expected compensation %d, got %d", surface.LastBannerHeight(), got)
	}
	m.OnLayoutSettled()
	if surface.Snapshot().HeightCompensation != 0 {
		t.Fatalf("expected compensation reset")
	}
}

func TestCollapse_LandscapeKeepsBanner(t *testing.T) {
	surface := withBanner(view.New())
	m := newMachine(surface, &domain.PlaceObject{ID: "p1"},
		panel.Config{Landscape: func() bool { return true }})
	m.SetState(domain.StateDetails)
	m.SetState(domain.StatePreview)

	if !surface.IsOpened() || m.Compensation() != 0 {
		t.Fatalf("landscape collapse must not close the banner")
	}
}

func TestNoSelection_DegradesToHidden(t *testing.T) {
	surface := view.New()
	m := newMachine(surface, nil, panel.Config{})
	m.SetState(domain.StateDetails)
	if m.State() != domain.StateHidden {
		t.Fatalf("expected hidden without selection, got %s", m.State())
	}
	m.SetState(domain.PanelState("bogus"))
	if m.State() != domain.StateHidden {
		t.Fatalf("unknown state must degrade to hidden")
	}
}

func TestBackground_OnlyInBottomSheetMode(t *testing.T) {
	obj := &domain.PlaceObject{ID: "p1"}

	bottom := view.New()
	m := newMachine(bottom, obj, panel.Config{MarginBase: 24})
	m.SetState(domain.StatePreview)
	if s := bottom.Snapshot(); s.PreviewOpen || s.BottomPadding != 24 {
		t.Fatalf("preview background: open=%v padding=%d", s.PreviewOpen, s.BottomPadding)
	}
	m.SetState(domain.StateDetails)
	if !bottom.Snapshot().PreviewOpen {
		t.Fatalf("details should use the open background")
	}

	for _, mode := range []domain.PanelMode{{Docked: true}, {Floating: true}} {
		surface := view.New()
		m := newMachine(surface, obj, panel.Config{Mode: mode, MarginBase: 24})
		m.SetState(domain.StateDetails)
		if s := surface.Snapshot(); s.PreviewOpen || s.BottomPadding != 0 {
			t.Fatalf("mode %+v must not touch the background", mode)
		}
	}
}

func TestAnimatorSeesObjectKind(t *testing.T) {
	surface := view.New()
	m := newMachine(surface, &domain.PlaceObject{ID: "me", Kind: domain.KindMyPosition}, panel.Config{})
	m.SetState(domain.StatePreview)
	if s := surface.Snapshot(); s.State != domain.StatePreview || s.Kind != domain.KindMyPosition {
		t.Fatalf("animator not driven: %+v", s)
	}
}

func TestAnimatorToldHiddenWhenObjectIsGone(t *testing.T) {
	surface := view.New()
	obj := &domain.PlaceObject{ID: "p1", Kind: domain.KindPOI}
	m := panel.New(surface, surface, surface, func() *domain.PlaceObject { return obj }, panel.Config{})
	m.SetState(domain.StateDetails)

	obj = nil
	m.SetState(domain.StatePreview)
	if s := surface.Snapshot(); m.State() != domain.StateHidden || s.State != domain.StateHidden || s.Kind != "" {
		t.Fatalf("machine=%s snapshot=%s kind=%q", m.State(), s.State, s.Kind)
	}
}

func TestOnNeedOpenBanner(t *testing.T) {
	surface := withBanner(view.New())
	m := newMachine(surface, &domain.PlaceObject{ID: "p1"}, panel.Config{})
	m.SetState(domain.StateDetails)
	m.SetState(domain.StatePreview)

	m.OnNeedOpenBanner()
	if !surface.IsOpened() || m.Compensation() != 0 {
		t.Fatalf("banner open request should open and reset compensation")
	}
}

func TestHideOnTouch(t *testing.T) {
	obj := &domain.PlaceObject{ID: "p1"}

	surface := view.New()
	m := newMachine(surface, obj, panel.Config{})
	m.SetState(domain.StatePreview)
	m.HideOnTouch()
	if m.State() != domain.StatePreview {
		t.Fatalf("preview must survive a map touch, got %s", m.State())
	}
	m.SetState(domain.StateDetails)
	m.HideOnTouch()
	if !m.IsHidden() {
		t.Fatalf("expanded bottom sheet should hide on touch, got %s", m.State())
	}

	docked := newMachine(view.New(), obj, panel.Config{Mode: domain.PanelMode{Docked: true}})
	docked.SetState(domain.StateFullscreen)
	docked.HideOnTouch()
	if docked.State() != domain.StateFullscreen {
		t.Fatalf("docked panel must ignore map touches, got %s", docked.State())
	}
}

func TestPreviewToHidden_ClosesOpenBanner(t *testing.T) {
	surface := withBanner(view.New())
	m := newMachine(surface, &domain.PlaceObject{ID: "p1"}, panel.Config{})
	m.SetState(domain.StatePreview)
	m.OnNeedOpenBanner()

	m.SetState(domain.StateHidden)
	if surface.IsOpened() {
		t.Fatalf("banner should close when the panel hides")
	}
}
