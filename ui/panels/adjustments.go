package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"image-studio/internal/adjust"
	"image-studio/internal/studio"
)

// fieldControl binds one adjustment field to its widget.
type fieldControl struct {
	field  adjust.Field
	slider *widget.Slider
	check  *widget.Check
	value  *widget.Label
}

// AdjustmentsPanel edits the selected layer's adjustments.
type AdjustmentsPanel struct {
	session   *studio.Session
	container fyne.CanvasObject

	controls     []*fieldControl
	presetSelect *widget.Select
	presetByName map[string]string
	resetButton  *widget.Button
	status       *widget.Label
	activity     *widget.ProgressBarInfinite
	syncing      bool
}

// NewAdjustmentsPanel creates the panel and subscribes it to the session.
func NewAdjustmentsPanel(s *studio.Session) *AdjustmentsPanel {
	ap := &AdjustmentsPanel{session: s}

	ap.status = widget.NewLabel("Select a layer to adjust")
	ap.activity = widget.NewProgressBarInfinite()
	ap.activity.Stop()
	ap.activity.Hide()

	labels, byLabel := presetNames()
	ap.presetByName = byLabel
	ap.presetSelect = widget.NewSelect(labels, ap.onPreset)
	ap.presetSelect.SetSelected(noPreset)

	ap.resetButton = widget.NewButton("Reset", func() {
		if err := s.ResetAdjustments(); err != nil {
			s.Warnings().Warn(err)
			return
		}
		ap.commit()
		ap.Sync()
	})

	basic := container.NewVBox()
	advanced := container.NewVBox()
	for _, f := range adjust.Fields() {
		fc := ap.newControl(f)
		ap.controls = append(ap.controls, fc)
		row := fc.row()
		if f.Approximate {
			advanced.Add(row)
		} else {
			basic.Add(row)
		}
	}

	ap.container = container.NewVScroll(container.NewVBox(
		widget.NewCard("Preset", "", container.NewBorder(nil, nil, nil, ap.resetButton, ap.presetSelect)),
		widget.NewCard("Basic", "", basic),
		widget.NewCard("Light & Color", "", advanced),
		ap.status,
		ap.activity,
	))

	s.On(studio.EventSelectionChanged, func(interface{}) { ap.Sync() })
	s.On(studio.EventProcessingChanged, func(data interface{}) {
		on, _ := data.(bool)
		ap.showActivity(on)
	})
	ap.Sync()
	return ap
}

func (ap *AdjustmentsPanel) newControl(f adjust.Field) *fieldControl {
	fc := &fieldControl{field: f, value: widget.NewLabel(formatValue(f, f.Default))}
	if f.Kind == adjust.KindBool {
		fc.check = widget.NewCheck(f.Label, func(on bool) {
			v := 0.0
			if on {
				v = 1
			}
			ap.edit(f, v)
			ap.commit()
		})
		return fc
	}
	fc.slider = widget.NewSlider(f.Min, f.Max)
	fc.slider.Step = f.Step
	fc.slider.SetValue(f.Default)
	fc.slider.OnChanged = func(v float64) {
		fc.value.SetText(formatValue(f, v))
		ap.edit(f, v)
	}
	fc.slider.OnChangeEnded = func(float64) { ap.commit() }
	return fc
}

func (fc *fieldControl) row() fyne.CanvasObject {
	if fc.check != nil {
		return fc.check
	}
	return container.NewBorder(nil, nil, widget.NewLabel(fc.field.Label), fc.value, fc.slider)
}

// edit sends a single-field change through the debounced pipeline.
func (ap *AdjustmentsPanel) edit(f adjust.Field, v float64) {
	if ap.syncing {
		return
	}
	set, err := ap.session.Adjustments().With(f.Name, v)
	if err != nil {
		ap.session.Warnings().Warn(err)
		return
	}
	if err := ap.session.Adjust(set, false); err != nil {
		ap.session.Warnings().Warn(err)
		return
	}
	if ap.presetSelect.Selected != noPreset {
		ap.syncing = true
		ap.presetSelect.SetSelected(noPreset)
		ap.syncing = false
	}
	ap.syncActivity()
}

// commit ends an edit gesture: the pending set is applied and stored.
func (ap *AdjustmentsPanel) commit() {
	if ap.syncing {
		return
	}
	if err := ap.session.CommitAdjustments(); err != nil {
		ap.session.Warnings().Warn(err)
	}
	ap.syncActivity()
}

func (ap *AdjustmentsPanel) onPreset(label string) {
	if ap.syncing || label == noPreset {
		return
	}
	if _, err := ap.session.ApplyPreset(ap.presetByName[label]); err != nil {
		ap.session.Warnings().Warn(err)
		return
	}
	ap.commit()
	ap.Sync()
}

// Sync loads the session's current adjustments into the widgets.
func (ap *AdjustmentsPanel) Sync() {
	ap.syncing = true
	defer func() { ap.syncing = false }()

	l, selected := ap.session.Selected()
	set := ap.session.Adjustments()
	for _, fc := range ap.controls {
		v, err := set.Get(fc.field.Name)
		if err != nil {
			continue
		}
		fc.value.SetText(formatValue(fc.field, v))
		if fc.check != nil {
			fc.check.SetChecked(v >= 0.5)
			setEnabled(fc.check, selected)
		} else {
			fc.slider.SetValue(v)
			setEnabled(fc.slider, selected)
		}
	}
	setEnabled(ap.presetSelect, selected)
	setEnabled(ap.resetButton, selected)
	if selected {
		ap.status.SetText("Adjusting " + l.Name)
	} else {
		ap.status.SetText("Select a layer to adjust")
	}
	ap.syncActivity()
}

func (ap *AdjustmentsPanel) syncActivity() {
	ap.showActivity(ap.session.Processing())
}

func (ap *AdjustmentsPanel) showActivity(on bool) {
	if on {
		ap.activity.Show()
		ap.activity.Start()
	} else {
		ap.activity.Stop()
		ap.activity.Hide()
	}
}

// Container returns the panel container.
func (ap *AdjustmentsPanel) Container() fyne.CanvasObject {
	return ap.container
}

func setEnabled(w fyne.Disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}
