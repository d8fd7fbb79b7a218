// Package main provides the entry point for the Media Combiner application.
package main

import (
	"log"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"media-combiner/internal/app"
	"media-combiner/internal/layers"
	"media-combiner/internal/media"
	"media-combiner/internal/session"
	"media-combiner/internal/version"
	"media-combiner/ui/mainwindow"
)

const appTitle = "Media Combiner"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := fyneapp.New()
	fyneApp.Settings().SetTheme(&app.CombinerTheme{})

	prefs := app.LoadPrefs()

	loader := &media.Loader{
		Timeout: media.DefaultLoadTimeout,
		Grabber: &media.VideoGrabber{},
	}
	sess := session.New(loader)
	defer sess.Close()

	results := layers.NewStore()

	// No hosting service is configured in the desktop build; exports stay
	// local and the result history records paths only.
	win := mainwindow.New(fyneApp, sess, prefs, results, nil)

	// Restore last sources, if any are still around.
	for key, id := range map[string]session.SlotID{
		app.PrefLastLeftSource:  session.SlotLeft,
		app.PrefLastRightSource: session.SlotRight,
		app.PrefLastLogoSource:  session.SlotLogo,
	} {
		if path := prefs.String(key); path != "" {
			sess.LoadFile(id, path, media.KindForPath(path))
		}
	}

	setupHotReload(win)

	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary is
// recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	reloader.OnTick(func() {
		win.SavePreferencesIfChanged()
	})

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				log.Println("Hot reload: restarting...")
				win.SavePreferencesIfChanged()
				if err := reloader.Restart(); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win.Window)
	})

	reloader.Start()
}
