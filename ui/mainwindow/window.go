// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"plan-takeoff/internal/app"
	"plan-takeoff/internal/measure"
	"plan-takeoff/internal/version"
	"plan-takeoff/ui/canvas"
	"plan-takeoff/ui/panels"
	"plan-takeoff/ui/prefs"
)

const appTitle = "Plan Takeoff"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	ws    *app.Workspace
	prefs *prefs.Prefs

	canvas    *canvas.TakeoffCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	zoomLabel *widget.Label
}

// New creates the main window for ws.
func New(fyneApp fyne.App, ws *app.Workspace, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		ws:     ws,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()

	w := float32(p.Float(prefs.KeyWindowW, 1280))
	h := float32(p.Float(prefs.KeyWindowH, 860))
	mw.Resize(fyne.NewSize(w, h))
	mw.SetCloseIntercept(mw.onClose)
	mw.SetOnDropped(mw.onDropped)

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.New(mw.ws)

	mw.sidePanel = panels.NewSidePanel(mw.ws)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")

	canvasArea := container.NewBorder(
		mw.createToolbar(),
		nil,
		nil,
		nil,
		mw.canvas,
	)

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)
	mw.SetContent(content)
}

// createToolbar creates the toolbar above the sheet.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewButton("Open...", mw.onOpenDrawing),
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.onZoomOut),
		widget.NewButton("+", mw.onZoomIn),
		widget.NewButton("1:1", mw.onActualSize),
		mw.zoomLabel,
		widget.NewSeparator(),
		widget.NewButton("Export CSV...", mw.onExportCSV),
		widget.NewButton("Send to Estimate", mw.onHandoff),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Drawing...", mw.onOpenDrawing),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("New Project", mw.onNewProject),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export CSV...", mw.onExportCSV),
		fyne.NewMenuItem("Send to Estimate", mw.onHandoff),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", mw.onClose),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Preferences...", mw.onPreferences),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
	)

	measureItems := make([]*fyne.MenuItem, 0, len(measure.Modes)+3)
	for _, m := range measure.Modes {
		mode := m
		measureItems = append(measureItems, fyne.NewMenuItem(mode.Title(), func() { mw.ws.SetMode(mode) }))
	}
	measureItems = append(measureItems,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Finish Area", mw.ws.Finish),
		fyne.NewMenuItem("Cancel Capture", mw.ws.Cancel),
	)
	measureMenu := fyne.NewMenu("Measure", measureItems...)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, measureMenu, helpMenu))
}

// setupEventHandlers registers for workspace events.
func (mw *MainWindow) setupEventHandlers() {
	resize := func(interface{}) { mw.canvas.UpdateSize() }
	redraw := func(interface{}) { mw.canvas.Refresh() }

	mw.ws.On(app.EventActiveChanged, resize)
	mw.ws.On(app.EventBitmapLoaded, resize)
	mw.ws.On(app.EventZoomChanged, func(data interface{}) {
		if zoom, ok := data.(float64); ok {
			mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", zoom*100))
		}
		mw.canvas.UpdateSize()
	})
	mw.ws.On(app.EventDraftChanged, redraw)
	mw.ws.On(app.EventMeasurementsChanged, redraw)
	mw.ws.On(app.EventSelectionChanged, redraw)
	mw.ws.On(app.EventDrawingsChanged, redraw)

	mw.ws.On(app.EventModified, func(interface{}) { mw.updateTitle() })
	mw.ws.On(app.EventProjectLoaded, func(data interface{}) {
		if path, ok := data.(string); ok && path != "" {
			mw.updateStatus("Project loaded: " + path)
		}
		mw.updateTitle()
		mw.canvas.UpdateSize()
	})
	mw.ws.On(app.EventProjectSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Project saved: " + path)
		}
		mw.updateTitle()
	})
}

// setupKeys binds Escape to cancel and Enter to finish an area.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.ws.Cancel()
		case fyne.KeyReturn, fyne.KeyEnter:
			mw.ws.Finish()
		case fyne.KeyEqual:
			mw.onZoomIn()
		case fyne.KeyMinus:
			mw.onZoomOut()
		}
	})
}

// Notify shows a workspace notification in the status bar. Errors also
// open a dialog.
func (mw *MainWindow) Notify(message string, severity app.Severity) {
	app.LogNotifier(message, severity)
	switch severity {
	case app.SeverityError:
		mw.updateStatus("Error: " + message)
		dialog.ShowError(fmt.Errorf("%s", message), mw.Window)
	case app.SeverityWarning:
		mw.updateStatus("Warning: " + message)
	default:
		mw.updateStatus(message)
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateTitle() {
	title := appTitle
	if mw.ws.ProjectPath != "" {
		title += " - " + filepath.Base(mw.ws.ProjectPath)
	}
	if mw.ws.Modified {
		title += " *"
	}
	mw.SetTitle(title)
}

// SavePreferencesIfChanged writes preferences when something changed.
func (mw *MainWindow) SavePreferencesIfChanged() {
	if _, err := mw.prefs.SaveIfChanged(); err != nil {
		log.Printf("Preferences: save failed: %v", err)
	}
}

func (mw *MainWindow) onClose() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowW, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowH, float64(size.Height))
	style := mw.ws.CountStyle()
	mw.prefs.SetString(prefs.KeyMarkerColor, style.Color)
	mw.prefs.SetString(prefs.KeyMarkerShape, style.Shape.String())
	mw.SavePreferencesIfChanged()

	quit := func() {
		mw.ws.Close()
		mw.app.Quit()
	}
	if !mw.ws.Modified {
		quit()
		return
	}
	dialog.ShowConfirm("Unsaved Changes", "Quit without saving the project?", func(ok bool) {
		if ok {
			quit()
		}
	}, mw.Window)
}

func (mw *MainWindow) onZoomIn() {
	mw.ws.ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.ws.ZoomOut()
}

func (mw *MainWindow) onActualSize() {
	mw.ws.ResetZoom()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s\n\nConstruction takeoff from PDF and image plans.", version.String()),
		mw.Window)
}
