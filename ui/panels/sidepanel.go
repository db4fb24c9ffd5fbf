// Package panels provides UI panels for the application.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"image-studio/internal/studio"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	container *container.AppTabs

	adjustPanel  *AdjustmentsPanel
	layersPanel  *LayersPanel
	historyPanel *HistoryPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(s *studio.Session) *SidePanel {
	sp := &SidePanel{
		adjustPanel:  NewAdjustmentsPanel(s),
		layersPanel:  NewLayersPanel(s),
		historyPanel: NewHistoryPanel(s),
	}

	sp.container = container.NewAppTabs(
		container.NewTabItem("Adjust", sp.adjustPanel.Container()),
		container.NewTabItem("Layers", sp.layersPanel.Container()),
		container.NewTabItem("History", sp.historyPanel.Container()),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.layersPanel.SetWindow(w)
}

// OnAddImage sets the action behind the layers tab's add-image button.
func (sp *SidePanel) OnAddImage(fn func()) {
	sp.layersPanel.OnAddImage(fn)
}

// Sync reloads every tab from the session.
func (sp *SidePanel) Sync() {
	sp.adjustPanel.Sync()
	sp.layersPanel.Sync()
	sp.historyPanel.Sync()
}
