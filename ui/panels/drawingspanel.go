package panels

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"plan-takeoff/internal/app"
	"plan-takeoff/internal/drawing"
)

var sortOptions = []string{"Added", "Name", "Trade", "Floor", "Page"}

var sortFields = map[string]drawing.SortField{
	"Added": drawing.SortNone,
	"Name":  drawing.SortName,
	"Trade": drawing.SortTrade,
	"Floor": drawing.SortFloor,
	"Page":  drawing.SortPage,
}

// DrawingsPanel lists open drawings with filtering and sorting. Selecting a
// row activates the drawing.
type DrawingsPanel struct {
	ws  *app.Workspace
	win fyne.Window

	query drawing.Query
	items []*drawing.Drawing

	filterEntry *widget.Entry
	sortSelect  *widget.Select
	descCheck   *widget.Check
	list        *widget.List
	removeBtn   *widget.Button
	countLabel  *widget.Label

	// syncing suppresses OnSelected while the list follows the workspace.
	syncing bool

	container fyne.CanvasObject
}

// NewDrawingsPanel creates the drawing list.
func NewDrawingsPanel(ws *app.Workspace) *DrawingsPanel {
	dp := &DrawingsPanel{ws: ws}

	dp.filterEntry = widget.NewEntry()
	dp.filterEntry.SetPlaceHolder("Filter by name, trade, floor, page")
	dp.filterEntry.OnChanged = func(s string) {
		dp.query.Filter = s
		dp.Refresh()
	}

	dp.sortSelect = widget.NewSelect(sortOptions, nil)
	dp.sortSelect.SetSelected("Added")
	dp.sortSelect.OnChanged = func(s string) {
		dp.query.Sort = sortFields[s]
		dp.Refresh()
	}

	dp.descCheck = widget.NewCheck("Descending", func(b bool) {
		dp.query.Descending = b
		dp.Refresh()
	})

	dp.list = widget.NewList(
		func() int { return len(dp.items) },
		func() fyne.CanvasObject {
			return container.NewVBox(widget.NewLabel("name"), widget.NewLabel("detail"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(dp.items) {
				return
			}
			d := dp.items[id]
			box := obj.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(d.Name)
			box.Objects[1].(*widget.Label).SetText(drawingDetail(d))
		},
	)
	dp.list.OnSelected = func(id widget.ListItemID) {
		if dp.syncing || id < 0 || id >= len(dp.items) {
			return
		}
		if err := dp.ws.Select(dp.items[id].ID); err != nil {
			log.Printf("Drawings: select failed: %v", err)
		}
	}

	dp.removeBtn = widget.NewButton("Remove", dp.onRemove)
	dp.countLabel = widget.NewLabel("")

	controls := container.NewVBox(
		dp.filterEntry,
		container.NewHBox(widget.NewLabel("Sort:"), dp.sortSelect, dp.descCheck),
	)
	dp.container = container.NewBorder(
		controls,
		container.NewHBox(dp.countLabel, dp.removeBtn),
		nil, nil,
		dp.list,
	)

	ws.On(app.EventDrawingsChanged, func(interface{}) { dp.Refresh() })
	ws.On(app.EventActiveChanged, func(interface{}) { dp.Refresh() })
	ws.On(app.EventBitmapLoaded, func(interface{}) { dp.list.Refresh() })

	dp.Refresh()
	return dp
}

// SetWindow sets the parent window for dialogs.
func (dp *DrawingsPanel) SetWindow(w fyne.Window) {
	dp.win = w
}

// Container returns the panel container.
func (dp *DrawingsPanel) Container() fyne.CanvasObject {
	return dp.container
}

// Refresh re-queries the workspace and highlights the active drawing.
func (dp *DrawingsPanel) Refresh() {
	dp.items = dp.ws.Drawings(dp.query)
	dp.list.Refresh()

	total := len(dp.ws.Drawings(drawing.Query{}))
	if len(dp.items) == total {
		dp.countLabel.SetText(fmt.Sprintf("%d drawings", total))
	} else {
		dp.countLabel.SetText(fmt.Sprintf("%d of %d drawings", len(dp.items), total))
	}

	dp.syncing = true
	defer func() { dp.syncing = false }()
	active := dp.ws.Active()
	for i, d := range dp.items {
		if active != nil && d.ID == active.ID {
			dp.list.Select(i)
			return
		}
	}
	dp.list.UnselectAll()
}

func (dp *DrawingsPanel) onRemove() {
	d := dp.ws.Active()
	if d == nil {
		return
	}
	remove := func() {
		if err := dp.ws.Remove(d.ID); err != nil {
			log.Printf("Drawings: remove failed: %v", err)
		}
	}
	if len(d.Measurements) == 0 || dp.win == nil {
		remove()
		return
	}
	dialog.ShowConfirm("Remove Drawing",
		fmt.Sprintf("Remove %s and its %d measurements?", d.Name, len(d.Measurements)),
		func(ok bool) {
			if ok {
				remove()
			}
		}, dp.win)
}

func drawingDetail(d *drawing.Drawing) string {
	switch {
	case d.LoadErr != nil:
		return "Failed: " + d.LoadErr.Error()
	case !d.Loaded() && d.Kind == drawing.KindPage:
		return "Page " + d.Page
	case !d.Loaded():
		return "Loading..."
	}
	detail := fmt.Sprintf("%d measurements", len(d.Measurements))
	if d.Trade != "" {
		detail = d.Trade + " · " + detail
	}
	if d.Floor != "" {
		detail = d.Floor + " · " + detail
	}
	return detail
}
