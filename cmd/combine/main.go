// Command combine produces a side-by-side composite from the command line,
// without a display: load left/right (and optionally a logo), apply view
// settings, export a PNG.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"media-combiner/internal/export"
	"media-combiner/internal/layers"
	"media-combiner/internal/media"
	"media-combiner/internal/session"
	"media-combiner/pkg/geometry"
)

func main() {
	leftPath := flag.String("left", "", "Path to left media (image or video)")
	rightPath := flag.String("right", "", "Path to right media (image or video)")
	logoPath := flag.String("logo", "", "Path to logo image (optional)")
	leftZoom := flag.Float64("left-zoom", session.DefaultZoom, "Left zoom in percent of cover fit")
	rightZoom := flag.Float64("right-zoom", session.DefaultZoom, "Right zoom in percent of cover fit")
	leftFocus := flag.String("left-focus", "0.5,0.5", "Left focus point as x,y in [0,1]")
	rightFocus := flag.String("right-focus", "0.5,0.5", "Right focus point as x,y in [0,1]")
	logoScale := flag.Float64("logo-scale", session.DefaultLogoScale, "Logo width in percent of canvas")
	logoPos := flag.String("logo-pos", "50,50", "Logo position as x,y in percent")
	aspect := flag.String("aspect", "16:9", "Output aspect ratio, e.g. 16:9")
	outDir := flag.String("out", ".", "Output directory")
	resultsPath := flag.String("results", "", "Optional results JSON to append the artifact to")
	timeout := flag.Duration("timeout", media.DefaultLoadTimeout, "Per-slot load timeout")
	flag.Parse()

	if *leftPath == "" || *rightPath == "" {
		fmt.Println("Usage: combine -left <path> -right <path> [-logo <path>] [-out <dir>]")
		os.Exit(1)
	}

	loader := &media.Loader{Timeout: *timeout, Grabber: &media.VideoGrabber{}}
	sess := session.New(loader)
	defer sess.Close()

	done := make(chan session.SlotID, 8)
	failed := make(chan session.SlotID, 8)
	sess.On(session.EventSlotLoaded, func(id session.SlotID) { done <- id })
	sess.On(session.EventSlotError, func(id session.SlotID) { failed <- id })

	pending := 2
	sess.LoadFile(session.SlotLeft, *leftPath, media.KindForPath(*leftPath))
	sess.LoadFile(session.SlotRight, *rightPath, media.KindForPath(*rightPath))
	if *logoPath != "" {
		pending++
		sess.LoadFile(session.SlotLogo, *logoPath, media.KindImage)
	}

	deadline := time.After(*timeout + 5*time.Second)
	for pending > 0 {
		select {
		case id := <-done:
			st := sess.Slot(id)
			fmt.Printf("Loaded %s: %s (%dx%d)\n", id, st.SourceName,
				st.Element.NaturalWidth(), st.Element.NaturalHeight())
			pending--
		case id := <-failed:
			fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", id, sess.Slot(id).Err)
			os.Exit(1)
		case <-deadline:
			fmt.Fprintln(os.Stderr, "Timed out waiting for media to load")
			os.Exit(1)
		}
	}

	sess.SetZoom(session.SlotLeft, *leftZoom)
	sess.SetZoom(session.SlotRight, *rightZoom)
	sess.SetFocus(session.SlotLeft, parsePoint(*leftFocus, geometry.NewPoint2D(0.5, 0.5)))
	sess.SetFocus(session.SlotRight, parsePoint(*rightFocus, geometry.NewPoint2D(0.5, 0.5)))
	if *logoPath != "" {
		sess.SetLogoScale(*logoScale)
		sess.SetLogoPosition(parsePoint(*logoPos, geometry.NewPoint2D(50, 50)))
	}

	path, err := export.Export(sess, parseAspect(*aspect), *outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	w, h, _ := export.Dimensions(sess, parseAspect(*aspect))
	fmt.Printf("Wrote %s (%dx%d)\n", path, w, h)

	if *resultsPath != "" {
		if err := appendResult(*resultsPath, path, w, h); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to record result: %v\n", err)
			os.Exit(1)
		}
	}
}

// parsePoint parses "x,y"; malformed input falls back to the default.
func parsePoint(s string, fallback geometry.Point2D) geometry.Point2D {
	var x, y float64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%g,%g", &x, &y); err != nil {
		return fallback
	}
	return geometry.NewPoint2D(x, y)
}

// parseAspect turns "w:h" into a size carrying only the ratio. Malformed
// input yields a zero size, which the exporter treats as 16:9.
func parseAspect(s string) geometry.Size {
	var w, h float64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%g:%g", &w, &h); err != nil {
		return geometry.Size{}
	}
	return geometry.NewSize(w, h)
}

// appendResult loads (or creates) the results store, adds the artifact, and
// saves it back.
func appendResult(storePath, artifact string, w, h int) error {
	store, err := layers.Load(storePath)
	if err != nil {
		return err
	}
	store.AddResult(layers.Entry{Name: export.Filename, Path: artifact, Width: w, Height: h})
	return store.Save(storePath)
}
