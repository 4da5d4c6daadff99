package panel

import (
	"github.com/rs/zerolog/log"

	"placepage/internal/adapters/observability"
	"placepage/internal/domain"
)

const defaultMarginBase = 16

type Config struct {
	Mode domain.PanelMode
	// Landscape reports the current device orientation; nil means portrait.
	Landscape func() bool
	// MarginBase is the preview bottom padding used without a visible banner.
	MarginBase int
}

// StateMachine drives panel visibility: HIDDEN, PREVIEW, DETAILS and
// FULLSCREEN. Transitions never fail; they degrade to the nearest sensible
// state.
type StateMachine struct {
	surface  domain.Surface
	banner   domain.Banner
	animator domain.Animator
	current  func() *domain.PlaceObject
	cfg      Config

	state        domain.PanelState
	compensation int
}

// New builds a machine in HIDDEN. banner and animator may be nil; current
// returns the selected object, or nil.
func New(surface domain.Surface, banner domain.Banner, animator domain.Animator,
	current func() *domain.PlaceObject, cfg Config) *StateMachine {
	if cfg.MarginBase == 0 {
		cfg.MarginBase = defaultMarginBase
	}
	if current == nil {
		current = func() *domain.PlaceObject { return nil }
	}
	return &StateMachine{
		surface:  surface,
		banner:   banner,
		animator: animator,
		current:  current,
		cfg:      cfg,
		state:    domain.StateHidden,
	}
}

func (m *StateMachine) State() domain.PanelState { return m.state }

func (m *StateMachine) IsHidden() bool { return m.state == domain.StateHidden }

func (m *StateMachine) Mode() domain.PanelMode { return m.cfg.Mode }

// Compensation is the transient padding applied after a banner closed.
func (m *StateMachine) Compensation() int { return m.compensation }

func (m *StateMachine) SetState(s domain.PanelState) {
	obj := m.current()
	if !s.Valid() {
		log.Warn().Str("state", string(s)).Msg("panel: unknown state, hiding")
		s = domain.StateHidden
	}
	if obj == nil && s != domain.StateHidden {
		s = domain.StateHidden
	}

	last := m.state
	m.surface.ScrollDetailsTop()

	// a closed panel must not keep the note viewer measured at its old height
	if s == domain.StateHidden {
		m.surface.ClearRichContent()
	}

	compensation := 0
	if m.banner != nil {
		collapsing := last.Expanded() && !s.Expanded() || s == domain.StateHidden
		if collapsing && !m.landscape() {
			if m.banner.Close() {
				compensation = m.banner.LastBannerHeight()
			}
		} else if s.Expanded() && !m.banner.IsOpened() {
			m.banner.Open()
		}
	}
	m.compensate(compensation)

	m.state = s
	if m.animator != nil {
		switch {
		case obj != nil:
			m.animator.SetState(s, obj.Kind)
		case s == domain.StateHidden:
			m.animator.SetState(s, "")
		}
	}

	if m.cfg.Mode.BottomSheet() {
		bottom := m.cfg.MarginBase
		if m.banner != nil && m.banner.IsBannerVisible() {
			bottom = 0
		}
		m.surface.SetPreviewBackground(s != domain.StatePreview, bottom)
	}

	if last != s {
		observability.ObserveTransition(string(last), string(s))
	}
}

// HideOnTouch hides an expanded bottom sheet when the map is touched.
// Docked and floating panels stay put.
func (m *StateMachine) HideOnTouch() {
	if m.cfg.Mode.BottomSheet() && m.state.Expanded() {
		m.SetState(domain.StateHidden)
	}
}

// OnLayoutSettled drops the height compensation once the real layout is in.
func (m *StateMachine) OnLayoutSettled() { m.compensate(0) }

// OnNeedOpenBanner is raised by the animation collaborator while dragging.
func (m *StateMachine) OnNeedOpenBanner() {
	if m.banner == nil {
		return
	}
	if !m.banner.IsOpened() {
		m.compensate(0)
	}
	m.banner.Open()
}

func (m *StateMachine) compensate(px int) {
	if px == m.compensation {
		return
	}
	m.compensation = px
	m.surface.SetHeightCompensation(px)
}

func (m *StateMachine) landscape() bool {
	return m.cfg.Landscape != nil && m.cfg.Landscape()
}
