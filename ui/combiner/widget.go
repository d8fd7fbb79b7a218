// Package combiner provides the side-by-side preview widget: it renders the
// session through the preview pipeline and feeds pointer events into the
// gesture controller.
package combiner

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"media-combiner/internal/gesture"
	"media-combiner/internal/render"
	"media-combiner/internal/session"
	"media-combiner/pkg/geometry"
)

// touchID is the single stream identifier the Fyne mobile driver delivers.
const touchID = 1

// Widget is the live preview canvas. The two media slots render into a
// raster; the logo floats above it as a separately positioned overlay so
// moving it never re-rasterizes the halves.
type Widget struct {
	widget.BaseWidget

	session    *session.Session
	controller *gesture.Controller
	raster     *fynecanvas.Raster
	logoImage  *fynecanvas.Image
	scheduler  *render.FrameScheduler

	mu       sync.Mutex
	size     fyne.Size
	dragging bool
}

var (
	_ fyne.Draggable   = (*Widget)(nil)
	_ fyne.Scrollable  = (*Widget)(nil)
	_ mobile.Touchable = (*Widget)(nil)
	_ gesture.Layout   = (*Widget)(nil)
)

// New creates the preview widget bound to a session.
func New(s *session.Session) *Widget {
	w := &Widget{
		session: s,
		size:    fyne.NewSize(800, 450),
	}
	w.controller = gesture.NewController(s, w)

	w.raster = fynecanvas.NewRaster(w.draw)
	w.raster.SetMinSize(fyne.NewSize(400, 225))

	w.logoImage = fynecanvas.NewImageFromImage(nil)
	w.logoImage.FillMode = fynecanvas.ImageFillStretch
	w.logoImage.Hide()

	w.scheduler = render.NewFrameScheduler(w.Refresh)
	s.SetInvalidator(w.scheduler.Invalidate)

	w.ExtendBaseWidget(w)
	return w
}

// Start begins frame scheduling; Stop must be called before the session
// closes.
func (w *Widget) Start() { w.scheduler.Start() }

// Stop halts frame scheduling.
func (w *Widget) Stop() { w.scheduler.Stop() }

// Controller exposes the gesture controller, mainly for tests.
func (w *Widget) Controller() *gesture.Controller { return w.controller }

func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	return &combinerRenderer{w: w}
}

// Resize records the layout size the event coordinates refer to.
func (w *Widget) Resize(size fyne.Size) {
	w.mu.Lock()
	w.size = size
	w.mu.Unlock()
	w.BaseWidget.Resize(size)
	w.scheduler.Invalidate()
}

func (w *Widget) layoutSize() fyne.Size {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// SlotDest reports each slot's destination size in layout points: half the
// widget for the media slots, the whole widget for the logo.
func (w *Widget) SlotDest(id session.SlotID) geometry.Size {
	size := w.layoutSize()
	if id == session.SlotLogo {
		return geometry.NewSize(float64(size.Width), float64(size.Height))
	}
	return geometry.NewSize(float64(size.Width)/2, float64(size.Height))
}

// slotAt maps a pointer position to the slot it addresses. The logo wins
// when the pointer is over it, otherwise the half decides.
func (w *Widget) slotAt(pos fyne.Position) session.SlotID {
	size := w.layoutSize()

	if logo := w.session.Slot(session.SlotLogo); logo.HasElement() {
		place := logoRect(
			geometry.NewSize(float64(size.Width), float64(size.Height)), logo)
		if place.Contains(geometry.NewPoint2D(float64(pos.X), float64(pos.Y))) {
			return session.SlotLogo
		}
	}
	if float64(pos.X) < float64(size.Width)/2 {
		return session.SlotLeft
	}
	return session.SlotRight
}

// Dragged handles desktop drags. Fyne keeps delivering drag events for the
// active session even outside the widget bounds, which is exactly what a
// grab-and-pan needs.
func (w *Widget) Dragged(ev *fyne.DragEvent) {
	w.mu.Lock()
	started := w.dragging
	w.dragging = true
	w.mu.Unlock()

	if !started {
		// The first event carries the initial delta; the press point is the
		// current position minus it.
		press := fyne.NewPos(ev.Position.X-ev.Dragged.DX, ev.Position.Y-ev.Dragged.DY)
		w.controller.MouseDown(w.slotAt(press), float64(press.X), float64(press.Y))
	}
	w.controller.MouseMove(float64(ev.Position.X), float64(ev.Position.Y))
}

// DragEnd ends the desktop drag.
func (w *Widget) DragEnd() {
	w.mu.Lock()
	w.dragging = false
	w.mu.Unlock()
	w.controller.MouseUp()
}

// Scrolled zooms the slot under the cursor.
func (w *Widget) Scrolled(ev *fyne.ScrollEvent) {
	w.controller.Wheel(w.slotAt(ev.Position), float64(ev.Scrolled.DY))
}

// TouchDown begins a touch drag. The mobile driver delivers a single
// coalesced stream, so one touch identifier covers it.
func (w *Widget) TouchDown(ev *mobile.TouchEvent) {
	w.controller.TouchStart(touchID, w.slotAt(ev.Position),
		float64(ev.Position.X), float64(ev.Position.Y))
}

// TouchUp ends the touch drag.
func (w *Widget) TouchUp(ev *mobile.TouchEvent) {
	w.controller.TouchMove(touchID, float64(ev.Position.X), float64(ev.Position.Y))
	w.controller.TouchEnd(touchID)
}

// TouchCancel abandons the touch session.
func (w *Widget) TouchCancel(*mobile.TouchEvent) {
	w.controller.TouchCancel()
}

// draw renders the two media slots at the given pixel size. The logo is
// deliberately absent here; it lives in the overlay.
func (w *Widget) draw(width, height int) image.Image {
	if width < 1 || height < 1 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return render.RenderPreview(width, height,
		slotView(w.session.Slot(session.SlotLeft)),
		slotView(w.session.Slot(session.SlotRight)))
}

// placeLogo sizes and positions the overlay for the current layout size.
func (w *Widget) placeLogo(size fyne.Size) {
	logo := w.session.Slot(session.SlotLogo)
	if !logo.HasElement() {
		w.logoImage.Hide()
		return
	}

	rect := logoRect(geometry.NewSize(float64(size.Width), float64(size.Height)), logo)
	w.logoImage.Image = logo.Element.Frame()
	w.logoImage.Move(fyne.NewPos(float32(rect.X), float32(rect.Y)))
	w.logoImage.Resize(fyne.NewSize(float32(rect.Width), float32(rect.Height)))
	w.logoImage.Show()
}

func slotView(st session.SlotState) render.SlotView {
	view := render.SlotView{Zoom: st.Zoom, Focus: st.Focus}
	if st.HasElement() {
		view.Frame = st.Element.Frame()
	}
	return view
}

// logoRect is the logo's placement within a container of the given size.
func logoRect(container geometry.Size, logo session.SlotState) geometry.Rect {
	logoSize := geometry.NewSize(
		float64(logo.Element.NaturalWidth()),
		float64(logo.Element.NaturalHeight()),
	)
	place := render.LogoPlacement(container, logoSize, logo.Zoom, logo.Position)
	return render.ClampInside(place, geometry.NewRect(0, 0, container.Width, container.Height))
}

type combinerRenderer struct {
	w *Widget
}

func (r *combinerRenderer) Layout(size fyne.Size) {
	r.w.raster.Resize(size)
	r.w.placeLogo(size)
}

func (r *combinerRenderer) MinSize() fyne.Size {
	return r.w.raster.MinSize()
}

func (r *combinerRenderer) Refresh() {
	r.w.placeLogo(r.w.layoutSize())
	r.w.raster.Refresh()
	r.w.logoImage.Refresh()
}

func (r *combinerRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.w.raster, r.w.logoImage}
}

func (r *combinerRenderer) Destroy() {}
