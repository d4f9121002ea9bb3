// Package main provides the entry point for the Plan Takeoff application.
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"plan-takeoff/internal/app"
	"plan-takeoff/internal/document"
	"plan-takeoff/internal/estimate"
	"plan-takeoff/internal/export"
	"plan-takeoff/internal/measure"
	"plan-takeoff/internal/ocr"
	"plan-takeoff/internal/project"
	"plan-takeoff/internal/version"
	"plan-takeoff/ui/mainwindow"
	"plan-takeoff/ui/prefs"
	"plan-takeoff/ui/theme"
)

const appID = "com.plantakeoff.desktop"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s", version.String())

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&theme.TakeoffTheme{})
	appPrefs := prefs.Load()

	handoff, closeHandoff := handoffTarget(appPrefs)
	defer closeHandoff()

	var win *mainwindow.MainWindow
	opts := app.Options{
		Post: fyne.Do,
		Notify: func(msg string, sev app.Severity) {
			if win == nil {
				app.LogNotifier(msg, sev)
				return
			}
			win.Notify(msg, sev)
		},
		Rasterizer: document.NewPDFRasterizer(appPrefs.Float(prefs.KeyOversample, document.DefaultOversample)),
		Handoff:    handoff,
		Watch:      appPrefs.Bool(prefs.KeyWatchFiles, true),
		Precision:  appPrefs.Int(prefs.KeyPrecision, export.Precision),
	}

	engine, err := ocr.NewEngine()
	if err != nil {
		log.Printf("OCR unavailable, scale suggestions use page text only: %v", err)
	} else {
		opts.ScaleReader = engine
		defer engine.Close()
	}

	ws := app.New(opts)
	ws.SetCountStyle(markerStyle(appPrefs))

	win = mainwindow.New(fyneApp, ws, appPrefs)

	// Handle command line arguments
	for _, arg := range os.Args[1:] {
		if strings.HasSuffix(arg, project.Extension) {
			if err := ws.LoadProject(arg); err != nil {
				log.Printf("Failed to load project %s: %v", arg, err)
			}
			continue
		}
		if err := ws.AddFile(arg); err != nil {
			log.Printf("Failed to open %s: %v", arg, err)
		}
	}

	go savePreferencesPeriodically(win, 5*time.Second)

	win.ShowAndRun()
}

// handoffTarget sends handoffs to the configured inbox service, or to a
// local inbox database when none is set.
func handoffTarget(p *prefs.Prefs) (export.HandoffFunc, func()) {
	if url := p.String(prefs.KeyInboxURL, ""); url != "" {
		log.Printf("Handoff: posting to %s", url)
		return estimate.NewClient(url, 10*time.Second).Handoff, func() {}
	}

	path := p.String(prefs.KeyInboxDB, "")
	if path == "" {
		path = filepath.Join(filepath.Dir(p.Path()), "inbox.db")
	}
	store, err := estimate.Open(path)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = store.Init(ctx)
		cancel()
	}
	if err != nil {
		log.Printf("Handoff: local inbox unavailable: %v", err)
		return nil, func() {}
	}
	log.Printf("Handoff: storing in %s", path)
	return store.Handoff, func() { _ = store.Close() }
}

func markerStyle(p *prefs.Prefs) measure.Style {
	style := measure.DefaultStyle()
	style.Color = p.String(prefs.KeyMarkerColor, style.Color)
	if shape, err := measure.ParseShape(p.String(prefs.KeyMarkerShape, "")); err == nil {
		style.Shape = shape
	}
	return style
}

func savePreferencesPeriodically(win *mainwindow.MainWindow, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		fyne.Do(win.SavePreferencesIfChanged)
	}
}
