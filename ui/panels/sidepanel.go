// Package panels provides UI panels for the application.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"plan-takeoff/internal/app"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	container *container.AppTabs

	drawingsPanel     *DrawingsPanel
	measurementsPanel *MeasurementsPanel
	propertySheet     *PropertySheet
}

// NewSidePanel creates a new side panel.
func NewSidePanel(ws *app.Workspace) *SidePanel {
	sp := &SidePanel{
		drawingsPanel:     NewDrawingsPanel(ws),
		measurementsPanel: NewMeasurementsPanel(ws),
		propertySheet:     NewPropertySheet(ws),
	}

	sp.container = container.NewAppTabs(
		container.NewTabItem("Drawings", sp.drawingsPanel.Container()),
		container.NewTabItem("Measure", sp.measurementsPanel.Container()),
		container.NewTabItem("Properties", sp.propertySheet.Container()),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.drawingsPanel.SetWindow(w)
	sp.measurementsPanel.SetWindow(w)
	sp.propertySheet.SetWindow(w)
}

// Refresh reloads every tab from the workspace.
func (sp *SidePanel) Refresh() {
	sp.drawingsPanel.Refresh()
	sp.measurementsPanel.Refresh()
	sp.propertySheet.Refresh()
}
