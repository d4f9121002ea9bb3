package panels

import (
	"fmt"
	"image/color"
	"log"
	"strconv"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"plan-takeoff/internal/app"
	"plan-takeoff/internal/measure"
	"plan-takeoff/pkg/colorutil"
	"plan-takeoff/ui/theme"
)

// MeasurementsPanel holds the capture controls and the active drawing's
// measurement list.
type MeasurementsPanel struct {
	ws  *app.Workspace
	win fyne.Window

	items []*measure.Measurement

	modeRadio   *widget.RadioGroup
	colorSelect *widget.Select
	shapeSelect *widget.Select
	draftLabel  *widget.Label
	list        *widget.List
	labelEntry  *widget.Entry
	totalsLabel *widget.Label

	syncing bool

	container fyne.CanvasObject
}

// NewMeasurementsPanel creates the measurement panel.
func NewMeasurementsPanel(ws *app.Workspace) *MeasurementsPanel {
	mp := &MeasurementsPanel{ws: ws}

	titles := make([]string, len(measure.Modes))
	for i, m := range measure.Modes {
		titles[i] = m.Title()
	}
	mp.modeRadio = widget.NewRadioGroup(titles, func(s string) {
		if m, err := measure.ParseMode(s); err == nil {
			mp.ws.SetMode(m)
		}
	})
	mp.modeRadio.Horizontal = true
	mp.modeRadio.Required = true
	mp.modeRadio.SetSelected(ws.Mode().Title())

	style := ws.CountStyle()
	mp.colorSelect = widget.NewSelect(colorutil.MarkerPalette, func(string) { mp.onStyleChanged() })
	mp.colorSelect.SetSelected(style.Color)
	shapes := make([]string, len(measure.Shapes))
	for i, s := range measure.Shapes {
		shapes[i] = s.String()
	}
	mp.shapeSelect = widget.NewSelect(shapes, func(string) { mp.onStyleChanged() })
	mp.shapeSelect.SetSelected(style.Shape.String())

	mp.draftLabel = widget.NewLabel("")
	finishBtn := widget.NewButton("Finish Area", func() { mp.ws.Finish() })
	cancelBtn := widget.NewButton("Cancel", func() { mp.ws.Cancel() })

	mp.list = widget.NewList(
		func() int { return len(mp.items) },
		func() fyne.CanvasObject {
			swatch := fynecanvas.NewRectangle(color.Black)
			swatch.SetMinSize(fyne.NewSize(12, 12))
			return container.NewHBox(container.NewCenter(swatch), widget.NewLabel("measurement"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(mp.items) {
				return
			}
			m := mp.items[id]
			row := obj.(*fyne.Container)
			swatch := row.Objects[0].(*fyne.Container).Objects[0].(*fynecanvas.Rectangle)
			swatch.FillColor = theme.ModeColor(m.Mode(), m.Style)
			swatch.Refresh()
			row.Objects[1].(*widget.Label).SetText(quantityText(m))
		},
	)
	mp.list.OnSelected = func(id widget.ListItemID) {
		if mp.syncing || id < 0 || id >= len(mp.items) {
			return
		}
		m := mp.items[id]
		mp.labelEntry.SetText(m.Label)
		mp.ws.SelectMeasurement(m.ID)
	}
	mp.list.OnUnselected = func(widget.ListItemID) {
		if !mp.syncing {
			mp.ws.SelectMeasurement("")
		}
	}

	mp.labelEntry = widget.NewEntry()
	mp.labelEntry.SetPlaceHolder("Label")
	mp.labelEntry.OnSubmitted = func(string) { mp.onRename() }
	renameBtn := widget.NewButton("Rename", mp.onRename)
	restyleBtn := widget.NewButton("Apply Marker", mp.onRestyle)
	deleteBtn := widget.NewButton("Delete", mp.onDelete)
	calibrateBtn := widget.NewButton("Calibrate...", mp.onCalibrate)
	fitBtn := widget.NewButton("Fit Scale...", mp.onFitScale)

	mp.totalsLabel = widget.NewLabel("")
	mp.totalsLabel.Wrapping = fyne.TextWrapWord

	top := container.NewVBox(
		widget.NewLabel("Mode:"),
		mp.modeRadio,
		container.NewHBox(widget.NewLabel("Marker:"), mp.colorSelect, mp.shapeSelect),
		container.NewHBox(finishBtn, cancelBtn),
		mp.draftLabel,
		widget.NewSeparator(),
	)
	bottom := container.NewVBox(
		container.NewBorder(nil, nil, nil, renameBtn, mp.labelEntry),
		container.NewHBox(restyleBtn, calibrateBtn, fitBtn, deleteBtn),
		widget.NewSeparator(),
		mp.totalsLabel,
	)
	mp.container = container.NewBorder(top, bottom, nil, nil, mp.list)

	ws.On(app.EventMeasurementsChanged, func(interface{}) { mp.Refresh() })
	ws.On(app.EventActiveChanged, func(interface{}) { mp.Refresh() })
	ws.On(app.EventSelectionChanged, func(interface{}) { mp.syncSelection() })
	ws.On(app.EventDraftChanged, func(interface{}) { mp.updateDraft() })

	mp.Refresh()
	return mp
}

// SetWindow sets the parent window for dialogs.
func (mp *MeasurementsPanel) SetWindow(w fyne.Window) {
	mp.win = w
}

// Container returns the panel container.
func (mp *MeasurementsPanel) Container() fyne.CanvasObject {
	return mp.container
}

// Refresh reloads the list and totals from the active drawing.
func (mp *MeasurementsPanel) Refresh() {
	mp.items = nil
	if d := mp.ws.Active(); d != nil {
		mp.items = d.Measurements
	}
	mp.list.Refresh()
	mp.totalsLabel.SetText(totalsText(mp.ws.Totals()))
	mp.syncSelection()
	mp.updateDraft()
}

func (mp *MeasurementsPanel) syncSelection() {
	mp.syncing = true
	defer func() { mp.syncing = false }()
	sel := mp.ws.Selected()
	for i, m := range mp.items {
		if m.ID == sel {
			mp.list.Select(i)
			mp.labelEntry.SetText(m.Label)
			return
		}
	}
	mp.list.UnselectAll()
	mp.labelEntry.SetText("")
}

func (mp *MeasurementsPanel) updateDraft() {
	if mp.modeRadio.Selected != mp.ws.Mode().Title() {
		mp.modeRadio.SetSelected(mp.ws.Mode().Title())
	}
	d := mp.ws.Draft()
	if d == nil || len(d.Points) == 0 {
		mp.draftLabel.SetText("")
		return
	}
	mp.draftLabel.SetText(fmt.Sprintf("Drafting %s: %d points", d.Mode, len(d.Points)))
}

func (mp *MeasurementsPanel) markerStyle() measure.Style {
	style := mp.ws.CountStyle()
	if mp.colorSelect.Selected != "" {
		style.Color = mp.colorSelect.Selected
	}
	if s, err := measure.ParseShape(mp.shapeSelect.Selected); err == nil {
		style.Shape = s
	}
	return style
}

func (mp *MeasurementsPanel) onStyleChanged() {
	if mp.colorSelect == nil || mp.shapeSelect == nil {
		return
	}
	mp.ws.SetCountStyle(mp.markerStyle())
}

func (mp *MeasurementsPanel) onRename() {
	id := mp.ws.Selected()
	if id == "" {
		return
	}
	if err := mp.ws.RenameMeasurement(id, mp.labelEntry.Text); err != nil {
		log.Printf("Measurements: rename failed: %v", err)
	}
}

func (mp *MeasurementsPanel) onRestyle() {
	id := mp.ws.Selected()
	if id == "" {
		return
	}
	if err := mp.ws.StyleMeasurement(id, mp.markerStyle()); err != nil {
		log.Printf("Measurements: restyle failed: %v", err)
	}
}

func (mp *MeasurementsPanel) onDelete() {
	id := mp.ws.Selected()
	if id == "" {
		return
	}
	if err := mp.ws.DeleteMeasurement(id); err != nil {
		log.Printf("Measurements: delete failed: %v", err)
	}
}

// onCalibrate asks for the true length of the selected length measurement.
func (mp *MeasurementsPanel) onCalibrate() {
	id := mp.ws.Selected()
	if id == "" || mp.win == nil {
		return
	}
	feet := widget.NewEntry()
	feet.SetPlaceHolder("e.g. 12.5")
	dialog.ShowForm("Calibrate From Measurement", "Apply", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Known length (ft)", feet)},
		func(ok bool) {
			if !ok {
				return
			}
			v, err := strconv.ParseFloat(feet.Text, 64)
			if err != nil {
				dialog.ShowError(fmt.Errorf("invalid length %q", feet.Text), mp.win)
				return
			}
			if err := mp.ws.CalibrateFromMeasurement(id, v); err != nil {
				dialog.ShowError(err, mp.win)
			}
		}, mp.win)
}

// onFitScale asks for the true length of any number of length and diameter
// measurements and fits the scale to all of them.
func (mp *MeasurementsPanel) onFitScale() {
	if mp.win == nil {
		return
	}
	entries := make(map[string]*widget.Entry)
	var items []*widget.FormItem
	for _, m := range mp.items {
		if m.Mode() != measure.ModeLength && m.Mode() != measure.ModeDiameter {
			continue
		}
		e := widget.NewEntry()
		e.SetPlaceHolder("ft, blank to skip")
		entries[m.ID] = e
		items = append(items, widget.NewFormItem(m.Label, e))
	}
	if len(items) == 0 {
		dialog.ShowInformation("Fit Scale", "Measure at least one length of known size first.", mp.win)
		return
	}
	dialog.ShowForm("Fit Scale To References", "Apply", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		inputs := make(map[string]string, len(entries))
		for id, e := range entries {
			inputs[id] = e.Text
		}
		known, err := referenceLengths(inputs)
		if err != nil {
			dialog.ShowError(err, mp.win)
			return
		}
		if _, err := mp.ws.CalibrateFromMeasurements(known); err != nil {
			dialog.ShowError(err, mp.win)
		}
	}, mp.win)
}
