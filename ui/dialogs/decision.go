package dialogs

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"image-studio/internal/importer"
)

// decisionChoices lists the buttons of the import conflict dialog, left to
// right.
var decisionChoices = []struct {
	label    string
	decision importer.Decision
}{
	{"Discard Image", importer.DecisionDiscard},
	{"Resize Canvas", importer.DecisionResizeCanvas},
	{"Resize & Rescale", importer.DecisionResizeAndRescale},
}

// conflictMessage explains a conflict to the user.
func conflictMessage(c *importer.Conflict) string {
	return fmt.Sprintf("The image is %d x %d px but the canvas is %d x %d px.\n"+
		"Resize the canvas to the image, fit both to a comfortable size, or discard the image.",
		c.ImageWidth, c.ImageHeight, c.CanvasWidth, c.CanvasHeight)
}

// ShowImportDecision asks how to resolve an import conflict. Closing the
// dialog any other way discards the image.
func ShowImportDecision(c *importer.Conflict, window fyne.Window, onDecide func(importer.Decision)) {
	var dlg dialog.Dialog
	decided := false
	decide := func(d importer.Decision) {
		if decided {
			return
		}
		decided = true
		dlg.Hide()
		if onDecide != nil {
			onDecide(d)
		}
	}

	buttons := container.NewHBox()
	for _, choice := range decisionChoices {
		btn := widget.NewButton(choice.label, func() { decide(choice.decision) })
		if choice.decision == importer.DecisionResizeAndRescale {
			btn.Importance = widget.HighImportance
		}
		buttons.Add(btn)
	}

	msg := widget.NewLabel(conflictMessage(c))
	msg.Wrapping = fyne.TextWrapWord
	content := container.NewVBox(msg, container.NewCenter(buttons))

	dlg = dialog.NewCustomWithoutButtons("Image Size Differs", content, window)
	dlg.SetOnClosed(func() { decide(importer.DecisionDiscard) })
	dlg.Resize(fyne.NewSize(460, 180))
	dlg.Show()
}
