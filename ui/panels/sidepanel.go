package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"media-combiner/internal/app"
	"media-combiner/internal/session"
)

// SidePanel stacks the per-slot controls beside the preview.
type SidePanel struct {
	left  *SlotPanel
	right *SlotPanel
	logo  *LogoPanel

	container *container.Scroll
}

// NewSidePanel creates the side panel for all three slots.
func NewSidePanel(s *session.Session, prefs *app.Prefs, window fyne.Window) *SidePanel {
	sp := &SidePanel{
		left:  NewSlotPanel(s, session.SlotLeft, prefs, window),
		right: NewSlotPanel(s, session.SlotRight, prefs, window),
		logo:  NewLogoPanel(s, prefs, window),
	}

	box := container.NewVBox(
		sp.left.Container(),
		widget.NewSeparator(),
		sp.right.Container(),
		widget.NewSeparator(),
		sp.logo.Container(),
	)
	sp.container = container.NewVScroll(box)
	sp.container.SetMinSize(fyne.NewSize(260, 0))

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}
