package panels

import (
	"fmt"
	"path/filepath"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"media-combiner/internal/app"
	"media-combiner/internal/media"
	"media-combiner/internal/session"
	"media-combiner/pkg/geometry"
)

// LogoPanel controls the logo slot: source picker, size slider, and numeric
// position entries.
type LogoPanel struct {
	session *session.Session
	prefs   *app.Prefs
	window  fyne.Window

	source *widget.Label
	scale  *widget.Slider
	posX   *widget.Entry
	posY   *widget.Entry
	box    *fyne.Container
}

// NewLogoPanel creates the logo control panel.
func NewLogoPanel(s *session.Session, prefs *app.Prefs, window fyne.Window) *LogoPanel {
	p := &LogoPanel{
		session: s,
		prefs:   prefs,
		window:  window,
		source:  widget.NewLabel("(none)"),
	}

	title := widget.NewLabelWithStyle("Logo", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	openBtn := widget.NewButton("Open...", p.openLogo)
	clearBtn := widget.NewButton("Clear", func() {
		p.session.Clear(session.SlotLogo)
	})

	p.scale = widget.NewSlider(session.MinLogoScale, session.MaxLogoScale)
	p.scale.Step = 1
	p.scale.SetValue(session.DefaultLogoScale)
	p.scale.OnChanged = func(v float64) {
		p.session.SetLogoScale(v)
	}

	p.posX = widget.NewEntry()
	p.posY = widget.NewEntry()
	p.posX.SetText("50")
	p.posY.SetText("50")
	p.posX.OnSubmitted = func(string) { p.commitPosition() }
	p.posY.OnSubmitted = func(string) { p.commitPosition() }

	p.box = container.NewVBox(
		title,
		p.source,
		container.NewGridWithColumns(2, openBtn, clearBtn),
		widget.NewLabel("Size (% of width)"),
		p.scale,
		widget.NewLabel("Position (%)"),
		container.NewGridWithColumns(2, p.posX, p.posY),
	)

	p.wireEvents()
	return p
}

// Container returns the panel container.
func (p *LogoPanel) Container() fyne.CanvasObject {
	return p.box
}

func (p *LogoPanel) openLogo() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, p.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()

		p.session.LoadFile(session.SlotLogo, path, media.KindImage)
		p.prefs.SetString(app.PrefLastDirectory, filepath.Dir(path))
		p.prefs.SetString(app.PrefLastLogoSource, path)
	}, p.window)
	fd.SetFilter(storage.NewExtensionFileFilter(imageExts))
	if dir := p.prefs.String(app.PrefLastDirectory); dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(lister)
		}
	}
	fd.Show()
}

// commitPosition parses both entries, applies the clamped position, and
// writes the clamped values back so the entries always show what the
// session actually holds.
func (p *LogoPanel) commitPosition() {
	cur := p.session.Slot(session.SlotLogo).Position

	x, err := strconv.ParseFloat(p.posX.Text, 64)
	if err != nil {
		x = cur.X
	}
	y, err := strconv.ParseFloat(p.posY.Text, 64)
	if err != nil {
		y = cur.Y
	}

	p.session.SetLogoPosition(geometry.NewPoint2D(x, y))
	p.refreshPosition()
}

func (p *LogoPanel) refreshPosition() {
	pos := p.session.Slot(session.SlotLogo).Position
	p.posX.SetText(fmt.Sprintf("%g", pos.X))
	p.posY.SetText(fmt.Sprintf("%g", pos.Y))
}

func (p *LogoPanel) wireEvents() {
	p.session.On(session.EventSlotLoaded, func(id session.SlotID) {
		if id != session.SlotLogo {
			return
		}
		p.source.SetText(p.session.Slot(session.SlotLogo).SourceName)
	})
	p.session.On(session.EventSlotCleared, func(id session.SlotID) {
		if id != session.SlotLogo {
			return
		}
		p.source.SetText("(none)")
		p.scale.SetValue(session.DefaultLogoScale)
	})
	p.session.On(session.EventViewChanged, func(id session.SlotID) {
		if id != session.SlotLogo {
			return
		}
		p.refreshPosition()
	})
}
