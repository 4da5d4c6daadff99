package domain

type PanelState string

const (
	StateHidden     PanelState = "hidden"
	StatePreview    PanelState = "preview"
	StateDetails    PanelState = "details"
	StateFullscreen PanelState = "fullscreen"
)

func (s PanelState) Valid() bool {
	switch s {
	case StateHidden, StatePreview, StateDetails, StateFullscreen:
		return true
	}
	return false
}

// Expanded reports DETAILS or FULLSCREEN.
func (s PanelState) Expanded() bool { return s == StateDetails || s == StateFullscreen }

// PanelMode is fixed for the lifetime of a panel.
type PanelMode struct {
	Docked   bool
	Floating bool
}

func (m PanelMode) BottomSheet() bool { return !m.Docked && !m.Floating }
