package panels

import (
	"errors"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"plan-takeoff/internal/app"
	"plan-takeoff/internal/drawing"
	"plan-takeoff/internal/sheet"
)

// PropertySheet edits the active drawing's metadata and scale.
type PropertySheet struct {
	ws  *app.Workspace
	win fyne.Window

	nameEntry  *widget.Entry
	tradeEntry *widget.Entry
	floorEntry *widget.Entry
	pageEntry  *widget.Entry
	applyBtn   *widget.Button

	scaleLabel  *widget.Label
	scaleEntry  *widget.Entry
	suggestBtn  *widget.Button
	sourceLabel *widget.Label
	suggestBusy bool

	container fyne.CanvasObject
}

// NewPropertySheet creates the property sheet.
func NewPropertySheet(ws *app.Workspace) *PropertySheet {
	ps := &PropertySheet{ws: ws}

	ps.nameEntry = widget.NewEntry()
	ps.tradeEntry = widget.NewEntry()
	ps.tradeEntry.SetPlaceHolder("e.g. Electrical")
	ps.floorEntry = widget.NewEntry()
	ps.floorEntry.SetPlaceHolder("e.g. Level 2")
	ps.pageEntry = widget.NewEntry()
	ps.applyBtn = widget.NewButton("Apply", ps.onApplyMetadata)

	meta := widget.NewForm(
		widget.NewFormItem("Name", ps.nameEntry),
		widget.NewFormItem("Trade", ps.tradeEntry),
		widget.NewFormItem("Floor", ps.floorEntry),
		widget.NewFormItem("Page", ps.pageEntry),
	)

	ps.scaleLabel = widget.NewLabel("")
	ps.scaleEntry = widget.NewEntry()
	ps.scaleEntry.SetPlaceHolder("pixels per foot, e.g. 48")
	ps.scaleEntry.OnSubmitted = func(string) { ps.onSetScale() }
	setBtn := widget.NewButton("Set Scale", ps.onSetScale)
	ps.suggestBtn = widget.NewButton("Suggest From Sheet", ps.onSuggest)
	ps.sourceLabel = widget.NewLabel("")
	ps.sourceLabel.Wrapping = fyne.TextWrapBreak

	ps.container = container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle("Drawing", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		meta,
		ps.applyBtn,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Scale", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		ps.scaleLabel,
		container.NewBorder(nil, nil, nil, setBtn, ps.scaleEntry),
		ps.suggestBtn,
		widget.NewSeparator(),
		ps.sourceLabel,
	))

	ws.On(app.EventActiveChanged, func(interface{}) { ps.Refresh() })
	ws.On(app.EventScaleChanged, func(interface{}) { ps.Refresh() })
	ws.On(app.EventBitmapLoaded, func(interface{}) { ps.Refresh() })
	ws.On(app.EventProjectLoaded, func(interface{}) { ps.Refresh() })

	ps.Refresh()
	return ps
}

// SetWindow sets the parent window for dialogs.
func (ps *PropertySheet) SetWindow(w fyne.Window) {
	ps.win = w
}

// Container returns the panel container.
func (ps *PropertySheet) Container() fyne.CanvasObject {
	return ps.container
}

// Refresh shows the active drawing's values.
func (ps *PropertySheet) Refresh() {
	d := ps.ws.Active()
	entries := []*widget.Entry{ps.nameEntry, ps.tradeEntry, ps.floorEntry, ps.pageEntry, ps.scaleEntry}
	if d == nil {
		for _, e := range entries {
			e.SetText("")
			e.Disable()
		}
		ps.applyBtn.Disable()
		ps.suggestBtn.Disable()
		ps.scaleLabel.SetText("No drawing")
		ps.sourceLabel.SetText("")
		return
	}
	for _, e := range entries {
		e.Enable()
	}
	ps.applyBtn.Enable()
	if ps.suggestBusy {
		ps.suggestBtn.Disable()
	} else {
		ps.suggestBtn.Enable()
	}

	ps.nameEntry.SetText(d.Name)
	ps.tradeEntry.SetText(d.Trade)
	ps.floorEntry.SetText(d.Floor)
	ps.pageEntry.SetText(d.Page)
	ps.scaleLabel.SetText(scaleText(d.Scale))
	ps.scaleEntry.SetText("")

	src := d.SourcePath
	if src == "" {
		src = "(in memory)"
	}
	info := fmt.Sprintf("%s\n%s", d.Kind, src)
	if d.Loaded() {
		info += fmt.Sprintf("\n%d × %d px", d.Width, d.Height)
	}
	if d.PixelsPerInch > 0 {
		info += fmt.Sprintf(" at %.0f ppi", d.PixelsPerInch)
		if d.Loaded() {
			info += "\n" + sheet.Describe(float64(d.Width)/d.PixelsPerInch, float64(d.Height)/d.PixelsPerInch)
		}
	}
	ps.sourceLabel.SetText(info)
}

func (ps *PropertySheet) onApplyMetadata() {
	d := ps.ws.Active()
	if d == nil {
		return
	}
	meta := drawing.Metadata{
		Name:  ps.nameEntry.Text,
		Trade: ps.tradeEntry.Text,
		Floor: ps.floorEntry.Text,
		Page:  ps.pageEntry.Text,
	}
	if err := ps.ws.UpdateMetadata(d.ID, meta); err != nil {
		log.Printf("Drawings: metadata update failed: %v", err)
		ps.showError(err)
	}
}

func (ps *PropertySheet) onSetScale() {
	if err := ps.ws.SetScaleInput(ps.scaleEntry.Text); err != nil {
		ps.showError(err)
	}
}

func (ps *PropertySheet) onSuggest() {
	ps.suggestBusy = true
	ps.suggestBtn.Disable()
	ps.ws.SuggestScale(func(s app.Suggestion, err error) {
		ps.suggestBusy = false
		ps.Refresh()
		if err != nil {
			if errors.Is(err, app.ErrNoSuggestion) && ps.win != nil {
				dialog.ShowInformation("Suggest Scale", "No scale note was found on this sheet.", ps.win)
				return
			}
			ps.showError(err)
			return
		}
		how := "the sheet text"
		if s.FromOCR {
			how = "OCR"
		}
		msg := fmt.Sprintf("Found %s via %s.\nUse %.2f pixels per foot?", s.Notation, how, s.Scale)
		if ps.win == nil {
			return
		}
		dialog.ShowConfirm("Suggest Scale", msg, func(ok bool) {
			if ok {
				if err := ps.ws.SetScale(s.Scale); err != nil {
					ps.showError(err)
				}
			}
		}, ps.win)
	})
}

func (ps *PropertySheet) showError(err error) {
	if ps.win != nil {
		dialog.ShowError(err, ps.win)
	}
}
