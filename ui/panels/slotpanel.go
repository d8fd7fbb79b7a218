// Package panels provides the control panels beside the preview.
package panels

import (
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"media-combiner/internal/app"
	"media-combiner/internal/media"
	"media-combiner/internal/session"
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp"}
var videoExts = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v"}

// SlotPanel controls one media slot: source picker, zoom slider, clear.
type SlotPanel struct {
	session *session.Session
	id      session.SlotID
	prefs   *app.Prefs
	window  fyne.Window

	source *widget.Label
	status *widget.Label
	zoom   *widget.Slider
	box    *fyne.Container
}

// NewSlotPanel creates the panel for a left/right media slot.
func NewSlotPanel(s *session.Session, id session.SlotID, prefs *app.Prefs, window fyne.Window) *SlotPanel {
	p := &SlotPanel{
		session: s,
		id:      id,
		prefs:   prefs,
		window:  window,
		source:  widget.NewLabel("(empty)"),
		status:  widget.NewLabel(""),
	}

	title := widget.NewLabelWithStyle(titleCase(id.String()), fyne.TextAlignLeading,
		fyne.TextStyle{Bold: true})

	openBtn := widget.NewButton("Open...", p.openSource)
	clearBtn := widget.NewButton("Clear", func() {
		p.session.Clear(p.id)
	})

	p.zoom = widget.NewSlider(session.MinZoom, session.MaxZoom)
	p.zoom.Step = 1
	p.zoom.SetValue(session.DefaultZoom)
	p.zoom.OnChanged = func(v float64) {
		p.session.SetZoom(p.id, v)
	}

	p.box = container.NewVBox(
		title,
		p.source,
		container.NewGridWithColumns(2, openBtn, clearBtn),
		widget.NewLabel("Zoom (%)"),
		p.zoom,
		p.status,
	)

	p.wireEvents()
	return p
}

// Container returns the panel container.
func (p *SlotPanel) Container() fyne.CanvasObject {
	return p.box
}

func (p *SlotPanel) openSourceDialog(exts []string) {
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

		p.session.LoadFile(p.id, path, media.KindForPath(path))
		p.prefs.SetString(app.PrefLastDirectory, filepath.Dir(path))
		p.prefs.SetString(prefKeyForSlot(p.id), path)
	}, p.window)
	fd.SetFilter(storage.NewExtensionFileFilter(exts))
	if dir := p.prefs.String(app.PrefLastDirectory); dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(lister)
		}
	}
	fd.Show()
}

func (p *SlotPanel) openSource() {
	p.openSourceDialog(append(append([]string{}, imageExts...), videoExts...))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func prefKeyForSlot(id session.SlotID) string {
	switch id {
	case session.SlotLeft:
		return app.PrefLastLeftSource
	case session.SlotRight:
		return app.PrefLastRightSource
	default:
		return app.PrefLastLogoSource
	}
}

// wireEvents keeps the labels in sync with the slot's load lifecycle.
func (p *SlotPanel) wireEvents() {
	p.session.On(session.EventSlotLoading, func(id session.SlotID) {
		if id != p.id {
			return
		}
		st := p.session.Slot(p.id)
		p.source.SetText(st.SourceName)
		p.status.SetText("loading...")
	})
	p.session.On(session.EventSlotLoaded, func(id session.SlotID) {
		if id != p.id {
			return
		}
		st := p.session.Slot(p.id)
		if st.HasElement() {
			p.status.SetText(fmt.Sprintf("%s %dx%d", st.Kind,
				st.Element.NaturalWidth(), st.Element.NaturalHeight()))
		}
	})
	p.session.On(session.EventSlotError, func(id session.SlotID) {
		if id != p.id {
			return
		}
		st := p.session.Slot(p.id)
		if st.Err != nil {
			p.status.SetText("error: " + st.Err.Error())
		}
	})
	p.session.On(session.EventSlotCleared, func(id session.SlotID) {
		if id != p.id {
			return
		}
		p.source.SetText("(empty)")
		p.status.SetText("")
		p.zoom.SetValue(session.DefaultZoom)
	})
}
