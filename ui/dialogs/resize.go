// Package dialogs provides application dialogs.
package dialogs

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"image-studio/internal/viewport"
)

// dimension identifies which entry of the resize form was edited.
type dimension int

const (
	dimWidth dimension = iota
	dimHeight
)

// editDimension feeds an entry's text into the form. It returns false when
// the text is not a valid dimension, leaving the form unchanged.
func editDimension(f *viewport.ResizeForm, which dimension, text string) bool {
	v, err := viewport.ParseDimension(text)
	if err != nil {
		return false
	}
	if which == dimWidth {
		f.SetWidth(v)
	} else {
		f.SetHeight(v)
	}
	return true
}

// ResizeDialog edits the canvas size with an optional aspect lock.
type ResizeDialog struct {
	form   *viewport.ResizeForm
	window fyne.Window

	widthEntry  *widget.Entry
	heightEntry *widget.Entry
	aspect      *widget.Check
	status      *widget.Label
	syncing     bool

	onApply func(viewport.Request)
}

// NewResizeDialog creates a dialog starting from the current document size.
func NewResizeDialog(width, height int, maintainAspect bool, window fyne.Window, onApply func(viewport.Request)) *ResizeDialog {
	form := viewport.NewResizeForm(width, height)
	form.SetMaintainAspect(maintainAspect)
	return &ResizeDialog{form: form, window: window, onApply: onApply}
}

// MaintainAspect reports the final state of the aspect toggle.
func (d *ResizeDialog) MaintainAspect() bool {
	return d.form.MaintainAspect
}

// Show displays the dialog.
func (d *ResizeDialog) Show() {
	dlg := dialog.NewCustomConfirm("Resize Canvas", "Resize", "Cancel", d.createContent(),
		func(ok bool) {
			if !ok {
				return
			}
			req := d.form.Request()
			if err := req.Validate(); err != nil {
				dialog.ShowError(err, d.window)
				return
			}
			if d.onApply != nil {
				d.onApply(req)
			}
		}, d.window)
	dlg.Resize(fyne.NewSize(360, 220))
	dlg.Show()
}

func (d *ResizeDialog) createContent() fyne.CanvasObject {
	d.widthEntry = widget.NewEntry()
	d.heightEntry = widget.NewEntry()
	d.status = widget.NewLabel("")
	d.sync()

	d.widthEntry.OnChanged = func(s string) { d.edited(dimWidth, s) }
	d.heightEntry.OnChanged = func(s string) { d.edited(dimHeight, s) }

	d.aspect = widget.NewCheck("Maintain aspect ratio", func(on bool) {
		d.form.SetMaintainAspect(on)
	})
	d.aspect.SetChecked(d.form.MaintainAspect)

	form := widget.NewForm(
		widget.NewFormItem("Width (px)", d.widthEntry),
		widget.NewFormItem("Height (px)", d.heightEntry),
	)
	return container.NewVBox(form, d.aspect, d.status)
}

func (d *ResizeDialog) edited(which dimension, text string) {
	if d.syncing {
		return
	}
	if !editDimension(d.form, which, text) {
		d.status.SetText("Enter a whole number from 1 to 10000")
		return
	}
	d.status.SetText("")
	d.sync()
}

// sync writes the form back into the entries without re-triggering edits.
func (d *ResizeDialog) sync() {
	d.syncing = true
	defer func() { d.syncing = false }()
	if w := strconv.Itoa(d.form.Width); d.widthEntry.Text != w {
		d.widthEntry.SetText(w)
	}
	if h := strconv.Itoa(d.form.Height); d.heightEntry.Text != h {
		d.heightEntry.SetText(h)
	}
}
