package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-studio/internal/history"
	"image-studio/internal/studio"
)

// HistoryPanel shows the undo stack with undo and redo buttons.
type HistoryPanel struct {
	session   *studio.Session
	container fyne.CanvasObject

	entries []history.Entry
	current int
	list    *widget.List
	undo    *widget.Button
	redo    *widget.Button
}

// NewHistoryPanel creates the panel and subscribes it to the session.
func NewHistoryPanel(s *studio.Session) *HistoryPanel {
	hp := &HistoryPanel{session: s}

	hp.list = widget.NewList(
		func() int { return len(hp.entries) },
		func() fyne.CanvasObject { return widget.NewLabel("entry") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(hp.entries) {
				obj.(*widget.Label).SetText(historyLabel(hp.entries[id], id, hp.current))
			}
		},
	)
	hp.undo = widget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), func() {
		if _, err := s.Undo(); err != nil {
			s.Warnings().Warn(err)
		}
	})
	hp.redo = widget.NewButtonWithIcon("Redo", theme.ContentRedoIcon(), func() {
		if _, err := s.Redo(); err != nil {
			s.Warnings().Warn(err)
		}
	})

	hp.container = container.NewBorder(container.NewHBox(hp.undo, hp.redo), nil, nil, nil, hp.list)

	s.On(studio.EventHistoryChanged, func(interface{}) { hp.Sync() })
	hp.Sync()
	return hp
}

// Sync reloads the entries and button states.
func (hp *HistoryPanel) Sync() {
	info := hp.session.HistoryInfo()
	hp.entries = hp.session.History()
	hp.current = info.Index
	setEnabled(hp.undo, info.CanUndo)
	setEnabled(hp.redo, info.CanRedo)
	hp.list.Refresh()
}

// Container returns the panel container.
func (hp *HistoryPanel) Container() fyne.CanvasObject {
	return hp.container
}
