// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"media-combiner/internal/app"
	"media-combiner/internal/export"
	"media-combiner/internal/layers"
	"media-combiner/internal/media"
	"media-combiner/internal/provider"
	"media-combiner/internal/session"
	"media-combiner/internal/version"
	"media-combiner/pkg/geometry"
	"media-combiner/ui/combiner"
	"media-combiner/ui/panels"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app      fyne.App
	session  *session.Session
	prefs    *app.Prefs
	results  *layers.Store
	uploader provider.MediaProvider

	preview   *combiner.Widget
	sidePanel *panels.SidePanel
	statusBar *widget.Label
}

// New creates the main window around an editor session. uploader may be
// nil when no hosting service is configured; exports then stay local.
func New(fyneApp fyne.App, s *session.Session, prefs *app.Prefs, results *layers.Store, uploader provider.MediaProvider) *MainWindow {
	win := fyneApp.NewWindow("Media Combiner")

	mw := &MainWindow{
		Window:   win,
		app:      fyneApp,
		session:  s,
		prefs:    prefs,
		results:  results,
		uploader: uploader,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(1100, 650))
	win.SetOnClosed(func() {
		mw.preview.Stop()
		if err := prefs.Save(); err != nil {
			log.Printf("save preferences: %v", err)
		}
	})

	return mw
}

// Preview returns the preview widget.
func (mw *MainWindow) Preview() *combiner.Widget {
	return mw.preview
}

// SavePreferencesIfChanged flushes dirty preferences to disk.
func (mw *MainWindow) SavePreferencesIfChanged() {
	if err := mw.prefs.SaveIfChanged(); err != nil {
		log.Printf("save preferences: %v", err)
	}
}

func (mw *MainWindow) setupUI() {
	mw.preview = combiner.New(mw.session)
	mw.sidePanel = panels.NewSidePanel(mw.session, mw.prefs, mw.Window)
	mw.statusBar = widget.NewLabel("Ready")

	exportBtn := widget.NewButton("Export PNG", mw.exportComposite)
	bottom := container.NewBorder(nil, nil, nil, exportBtn, mw.statusBar)

	content := container.NewBorder(nil, bottom, nil, mw.sidePanel.Container(), mw.preview)
	mw.SetContent(content)

	mw.preview.Start()
}

func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Export PNG...", mw.exportComposite),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			dialog.ShowInformation("About Media Combiner",
				fmt.Sprintf("Media Combiner v%s\nBuilt %s", version.Version, version.BuildTime),
				mw.Window)
		}),
	)
	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(session.EventSlotLoading, func(id session.SlotID) {
		mw.statusBar.SetText(fmt.Sprintf("Loading %s...", id))
	})
	mw.session.On(session.EventSlotLoaded, func(id session.SlotID) {
		st := mw.session.Slot(id)
		mw.statusBar.SetText(fmt.Sprintf("Loaded %s (%s)", st.SourceName, st.Kind))
	})
	mw.session.On(session.EventSlotError, func(id session.SlotID) {
		st := mw.session.Slot(id)
		if st.Err != nil {
			mw.statusBar.SetText(fmt.Sprintf("%s: %v", id, st.Err))
		}
	})
	mw.session.On(session.EventSlotCleared, func(id session.SlotID) {
		mw.statusBar.SetText(fmt.Sprintf("Cleared %s", id))
	})
}

// previewSize reports the current preview aspect source for the exporter.
func (mw *MainWindow) previewSize() geometry.Size {
	size := mw.preview.Size()
	return geometry.NewSize(float64(size.Width), float64(size.Height))
}

// exportComposite checks preconditions up front, then asks for a target
// folder and writes the composite there.
func (mw *MainWindow) exportComposite() {
	if err := export.Check(mw.session); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}

	fd := dialog.NewFolderOpen(func(list fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if list == nil {
			return
		}
		dir := list.Path()

		path, err := export.Export(mw.session, mw.previewSize(), dir)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetString(app.PrefLastExportDir, dir)
		mw.recordResult(path)
		mw.statusBar.SetText("Exported " + path)
		log.Printf("exported composite to %s", path)
	}, mw.Window)

	if dir := mw.prefs.String(app.PrefLastExportDir); dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(lister)
		}
	}
	fd.Show()
}

// recordResult appends the artifact to the result history, pushing it to
// the hosting service first when one is configured.
func (mw *MainWindow) recordResult(path string) {
	w, h, err := export.Dimensions(mw.session, mw.previewSize())
	if err != nil {
		w, h = 0, 0
	}
	entry := layers.Entry{
		Name:   filepath.Base(path),
		Path:   path,
		Width:  w,
		Height: h,
	}

	if mw.uploader != nil {
		if data, err := os.ReadFile(path); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			asset, err := mw.uploader.Upload(ctx, data, media.KindImage)
			cancel()
			if err != nil {
				log.Printf("upload composite: %v", err)
			} else {
				entry.URL = asset.URL
				entry.PublicID = asset.PublicID
			}
		}
	}

	mw.results.AddResult(entry)
}
