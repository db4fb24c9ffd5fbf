package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-studio/internal/drawable"
	"image-studio/internal/layer"
	"image-studio/internal/studio"
	"image-studio/pkg/geometry"
	"image-studio/ui/dialogs"
)

// LayersPanel lists layers top first and edits the selected one.
type LayersPanel struct {
	session   *studio.Session
	window    fyne.Window
	container fyne.CanvasObject

	rows    []layer.Layer
	list    *widget.List
	syncing bool

	visibleCheck *widget.Check
	lockCheck    *widget.Check
	opacity      *widget.Slider
	nameEntry    *widget.Entry
	selection    []fyne.Disableable

	onAddImage func()
}

// NewLayersPanel creates the panel and subscribes it to the session.
func NewLayersPanel(s *studio.Session) *LayersPanel {
	lp := &LayersPanel{session: s}

	lp.list = widget.NewList(
		func() int { return len(lp.rows) },
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.VisibilityIcon()), widget.NewLabel("layer"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(lp.rows) {
				return
			}
			l := lp.rows[id]
			box := obj.(*fyne.Container)
			icon := box.Objects[0].(*widget.Icon)
			if l.Visible {
				icon.SetResource(theme.VisibilityIcon())
			} else {
				icon.SetResource(theme.VisibilityOffIcon())
			}
			box.Objects[1].(*widget.Label).SetText(layerLabel(l))
		},
	)
	lp.list.OnSelected = func(id widget.ListItemID) {
		if lp.syncing || id >= len(lp.rows) {
			return
		}
		if err := s.SelectLayer(lp.rows[id].ID); err != nil {
			s.Warnings().Warn(err)
		}
	}

	lp.visibleCheck = widget.NewCheck("Visible", func(on bool) {
		lp.withSelected(func(id string) error { return s.SetLayerVisible(id, on) })
	})
	lp.lockCheck = widget.NewCheck("Locked", func(on bool) {
		lp.withSelected(func(id string) error { return s.SetLayerLocked(id, on) })
	})
	lp.opacity = widget.NewSlider(0, 100)
	lp.opacity.OnChangeEnded = func(v float64) {
		lp.withSelected(func(id string) error { return s.SetLayerOpacity(id, v) })
	}
	lp.nameEntry = widget.NewEntry()
	lp.nameEntry.OnSubmitted = func(name string) {
		lp.withSelected(func(id string) error { return s.RenameLayer(id, name) })
	}

	up := widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { lp.shift(1) })
	down := widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() { lp.shift(-1) })
	dup := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
		lp.withSelected(func(id string) error {
			_, err := s.DuplicateLayer(id)
			return err
		})
	})
	del := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		lp.withSelected(s.RemoveLayer)
	})
	lp.selection = []fyne.Disableable{lp.visibleCheck, lp.lockCheck, lp.opacity, lp.nameEntry, up, down, dup, del}

	addText := widget.NewButtonWithIcon("Text", theme.ContentAddIcon(), lp.addText)
	addShape := widget.NewButtonWithIcon("Shape", theme.ContentAddIcon(), lp.addShape)
	addImage := widget.NewButtonWithIcon("Image", theme.FileImageIcon(), func() {
		if lp.onAddImage != nil {
			lp.onAddImage()
		}
	})

	props := widget.NewCard("Selected Layer", "", container.NewVBox(
		widget.NewForm(widget.NewFormItem("Name", lp.nameEntry)),
		container.NewHBox(lp.visibleCheck, lp.lockCheck),
		widget.NewLabel("Opacity:"),
		lp.opacity,
		container.NewHBox(up, down, dup, del),
	))
	lp.container = container.NewBorder(
		container.NewHBox(addText, addShape, addImage),
		props, nil, nil,
		lp.list,
	)

	s.On(studio.EventLayersChanged, func(interface{}) { lp.Sync() })
	s.On(studio.EventSelectionChanged, func(interface{}) { lp.Sync() })
	lp.Sync()
	return lp
}

// SetWindow sets the parent window for dialogs.
func (lp *LayersPanel) SetWindow(w fyne.Window) {
	lp.window = w
}

// OnAddImage sets the action behind the add-image button.
func (lp *LayersPanel) OnAddImage(fn func()) {
	lp.onAddImage = fn
}

func (lp *LayersPanel) withSelected(fn func(id string) error) {
	if lp.syncing {
		return
	}
	l, ok := lp.session.Selected()
	if !ok {
		return
	}
	if err := fn(l.ID); err != nil {
		lp.showError(err)
	}
}

// shift moves the selected layer delta steps up the paint order.
func (lp *LayersPanel) shift(delta int) {
	lp.withSelected(func(id string) error {
		from := lp.session.Layers().IndexOf(id)
		to := from + delta
		if to < 0 || to >= lp.session.Layers().Len() {
			return nil
		}
		return lp.session.MoveLayer(from, to)
	})
}

func (lp *LayersPanel) addText() {
	if lp.window == nil {
		return
	}
	dialogs.ShowAddText(lp.window, func(text string, style drawable.TextStyle) {
		if _, err := lp.session.AddText(text, style); err != nil {
			lp.showError(err)
		}
	})
}

func (lp *LayersPanel) addShape() {
	if lp.window == nil {
		return
	}
	dialogs.ShowAddShape(lp.window, func(kind drawable.ShapeKind, size geometry.Size, style drawable.ShapeStyle) {
		if _, err := lp.session.AddShape(kind, size, style); err != nil {
			lp.showError(err)
		}
	})
}

func (lp *LayersPanel) showError(err error) {
	if lp.window != nil {
		dialog.ShowError(err, lp.window)
		return
	}
	lp.session.Warnings().Warn(err)
}

// Sync reloads the list and the selected layer's properties.
func (lp *LayersPanel) Sync() {
	lp.syncing = true
	defer func() { lp.syncing = false }()

	all := lp.session.Layers().Layers()
	lp.rows = displayOrder(all)
	lp.list.Refresh()

	sel, ok := lp.session.Selected()
	for _, w := range lp.selection {
		setEnabled(w, ok)
	}
	if !ok {
		lp.list.UnselectAll()
		lp.nameEntry.SetText("")
		return
	}
	if i := lp.session.Layers().IndexOf(sel.ID); i >= 0 {
		lp.list.Select(modelIndex(i, len(all)))
	}
	lp.nameEntry.SetText(sel.Name)
	lp.visibleCheck.SetChecked(sel.Visible)
	lp.lockCheck.SetChecked(sel.Locked)
	lp.opacity.SetValue(sel.Opacity)
}

// Container returns the panel container.
func (lp *LayersPanel) Container() fyne.CanvasObject {
	return lp.container
}
