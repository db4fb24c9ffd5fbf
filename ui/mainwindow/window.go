// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"image-studio/internal/importer"
	"image-studio/internal/studio"
	"image-studio/internal/version"
	"image-studio/internal/viewport"
	"image-studio/ui/canvas"
	"image-studio/ui/dialogs"
	"image-studio/ui/panels"
	"image-studio/ui/prefs"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	session   *studio.Session
	prefs     *prefs.Prefs
	canvas    *canvas.StudioCanvas
	sidePanel *panels.SidePanel
	split     *container.Split
	statusBar *widget.Label
	docLabel  *widget.Label
	zoomLabel *widget.Label
}

// New creates the main window over s. relay is the pipeline surface the
// session was built with; the canvas is bound to it here.
func New(fyneApp fyne.App, s *studio.Session, relay *canvas.Relay, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(version.Name)

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: s,
		prefs:   p,
	}

	mw.setupUI()
	relay.Bind(mw.canvas)
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.Resize(fyne.NewSize(
		float32(p.FloatWithFallback(prefs.KeyWindowWidth, 1280)),
		float32(p.FloatWithFallback(prefs.KeyWindowHeight, 800)),
	))
	mw.SetCloseIntercept(func() {
		mw.SavePreferences()
		mw.Close()
	})
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewStudioCanvas(mw.session)
	mw.canvas.OnResizeCommitted(func(w, h int) {
		mw.updateStatus(fmt.Sprintf("Canvas resized to %d x %d", w, h))
	})

	mw.sidePanel = panels.NewSidePanel(mw.session)
	mw.sidePanel.SetWindow(mw.Window)
	mw.sidePanel.OnAddImage(mw.onAddImageLayer)

	mw.statusBar = widget.NewLabel("Ready")
	mw.docLabel = widget.NewLabel("")
	mw.zoomLabel = widget.NewLabel("")
	mw.updateDocument()

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		mw.canvas,          // center
	)

	mw.split = container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	mw.split.SetOffset(mw.prefs.FloatWithFallback(prefs.KeySplitOffset, 0.28))

	status := container.NewBorder(nil, nil, nil,
		container.NewHBox(mw.docLabel, mw.zoomLabel),
		mw.statusBar,
	)
	mw.SetContent(container.NewBorder(
		nil,                         // top
		container.NewPadded(status), // bottom
		nil,                         // left
		nil,                         // right
		mw.split,                    // center
	))
}

// createToolbar creates the toolbar with history and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewButton("Open", mw.onOpenImage),
		widget.NewButton("Undo", mw.onUndo),
		widget.NewButton("Redo", mw.onRedo),
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.canvas.ZoomOut),
		widget.NewButton("+", mw.canvas.ZoomIn),
		widget.NewButton("Fit", mw.canvas.FitToWindow),
		widget.NewButton("1:1", func() { mw.canvas.SetZoom(100) }),
		widget.NewSeparator(),
		widget.NewButton("Resize...", mw.onResizeCanvas),
	)
}

func shortcut(key fyne.KeyName, mod fyne.KeyModifier) fyne.Shortcut {
	return &desktop.CustomShortcut{KeyName: key, Modifier: mod}
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	open := fyne.NewMenuItem("Open Image...", mw.onOpenImage)
	open.Shortcut = shortcut(fyne.KeyO, fyne.KeyModifierShortcutDefault)
	save := fyne.NewMenuItem("Save Adjustments", mw.onSave)
	save.Shortcut = shortcut(fyne.KeyS, fyne.KeyModifierShortcutDefault)

	fileMenu := fyne.NewMenu("File",
		open,
		fyne.NewMenuItem("Add Image Layer...", mw.onAddImageLayer),
		fyne.NewMenuItem("Attach Reference Image...", mw.onAttachImage),
		fyne.NewMenuItemSeparator(),
		save,
		fyne.NewMenuItem("Export PNG...", mw.onExportPNG),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Canvas", mw.onClear),
	)

	undo := fyne.NewMenuItem("Undo", mw.onUndo)
	undo.Shortcut = shortcut(fyne.KeyZ, fyne.KeyModifierShortcutDefault)
	redo := fyne.NewMenuItem("Redo", mw.onRedo)
	redo.Shortcut = shortcut(fyne.KeyZ, fyne.KeyModifierShortcutDefault|fyne.KeyModifierShift)

	editMenu := fyne.NewMenu("Edit",
		undo,
		redo,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset Adjustments", mw.onResetAdjustments),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Fit to Window", mw.canvas.FitToWindow),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.SetZoom(100) }),
	)

	canvasMenu := fyne.NewMenu("Canvas",
		fyne.NewMenuItem("Resize Canvas...", mw.onResizeCanvas),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, canvasMenu, helpMenu))

	for _, item := range []*fyne.MenuItem{open, save, undo, redo} {
		mw.Canvas().AddShortcut(item.Shortcut, func(fyne.Shortcut) { item.Action() })
	}
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	s := mw.session

	s.On(studio.EventImageLoaded, func(data interface{}) {
		if res, ok := data.(*importer.Result); ok {
			mw.updateStatus(fmt.Sprintf("Loaded %s image %d x %d",
				strings.ToUpper(res.Decoded.Format), res.Decoded.Width(), res.Decoded.Height()))
		}
		mw.canvas.FitToWindow()
	})

	s.On(studio.EventDecisionRequired, func(data interface{}) {
		conflict, ok := data.(*importer.Conflict)
		if !ok {
			return
		}
		dialogs.ShowImportDecision(conflict, mw.Window, func(d importer.Decision) {
			if _, err := s.ResolveImport(d); err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			if d == importer.DecisionDiscard {
				mw.updateStatus("Import discarded")
			}
		})
	})

	s.On(studio.EventCanvasResized, func(interface{}) {
		mw.updateDocument()
		mw.canvas.Refresh()
	})
	s.On(studio.EventZoomChanged, func(interface{}) { mw.updateDocument() })

	for _, et := range []studio.EventType{
		studio.EventLayersChanged,
		studio.EventSelectionChanged,
		studio.EventAdjustmentsApplied,
		studio.EventHistoryChanged,
	} {
		s.On(et, func(interface{}) { mw.canvas.Refresh() })
	}

	s.On(studio.EventSaved, func(interface{}) {
		mw.updateStatus("Adjustments saved " + time.Now().Format("15:04:05"))
	})
	s.On(studio.EventWarning, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.updateStatus("Warning: " + err.Error())
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateDocument() {
	doc := mw.session.Document()
	mw.docLabel.SetText(fmt.Sprintf("%d x %d px", doc.Width, doc.Height))
	mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", doc.Zoom))
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// chooseImage shows a file dialog and hands the chosen file's bytes to fn.
func (mw *MainWindow) chooseImage(fn func(data []byte) error) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		data, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(reader.URI().Path()))
		if err := fn(data); err != nil {
			var conflict *importer.Conflict
			if errors.As(err, &conflict) {
				return
			}
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// Menu action handlers

func (mw *MainWindow) onOpenImage() {
	mw.chooseImage(func(data []byte) error {
		_, err := mw.session.ImportImage(context.Background(), data)
		return err
	})
}

func (mw *MainWindow) onAddImageLayer() {
	mw.chooseImage(func(data []byte) error {
		l, err := mw.session.AddImageLayer(data)
		if err == nil {
			mw.updateStatus("Added " + l.Name)
		}
		return err
	})
}

func (mw *MainWindow) onAttachImage() {
	mw.chooseImage(func(data []byte) error {
		if _, err := mw.session.AttachImage(data); err != nil {
			return err
		}
		mw.updateStatus("Reference image attached")
		return nil
	})
}

func (mw *MainWindow) onSave() {
	if err := mw.session.CommitAdjustments(); err != nil {
		mw.updateStatus("Nothing to commit: " + err.Error())
	}
	if err := mw.session.Save(context.Background()); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onExportPNG() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		if err := mw.session.ExportPNG(writer); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(writer.URI().Path()))
		mw.updateStatus("Exported " + writer.URI().Name())
	}, mw.Window)
	fd.SetFileName("image.png")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onClear() {
	dialog.ShowConfirm("Clear Canvas", "Remove every layer and reset the canvas size?", func(ok bool) {
		if ok {
			mw.session.Clear()
			mw.canvas.FitToWindow()
			mw.updateStatus("Canvas cleared")
		}
	}, mw.Window)
}

func (mw *MainWindow) onUndo() {
	e, err := mw.session.Undo()
	switch {
	case err != nil:
		dialog.ShowError(err, mw.Window)
	case e == nil:
		mw.updateStatus("Nothing to undo")
	default:
		mw.updateStatus("Undo: " + e.Label)
	}
}

func (mw *MainWindow) onRedo() {
	e, err := mw.session.Redo()
	switch {
	case err != nil:
		dialog.ShowError(err, mw.Window)
	case e == nil:
		mw.updateStatus("Nothing to redo")
	default:
		mw.updateStatus("Redo: " + e.Label)
	}
}

func (mw *MainWindow) onResetAdjustments() {
	if err := mw.session.ResetAdjustments(); err != nil {
		mw.updateStatus(err.Error())
		return
	}
	if err := mw.session.CommitAdjustments(); err != nil {
		mw.updateStatus(err.Error())
	}
	mw.sidePanel.Sync()
}

func (mw *MainWindow) onResizeCanvas() {
	doc := mw.session.Document()
	var d *dialogs.ResizeDialog
	d = dialogs.NewResizeDialog(doc.Width, doc.Height, mw.prefs.Bool(prefs.KeyMaintainAspect, true), mw.Window,
		func(req viewport.Request) {
			mw.prefs.SetBool(prefs.KeyMaintainAspect, d.MaintainAspect())
			if _, err := mw.session.ResizeCanvas(req); err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			mw.canvas.FitToWindow()
		})
	d.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+version.Name,
		fmt.Sprintf("%s\n\n"+
			"Interactive canvas editing: import, layers, adjustments and history.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.String(), version.BuildTime, version.GitCommit),
		mw.Window)
}

// SavePreferences records the window geometry and writes preferences.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	mw.prefs.SetFloat(prefs.KeySplitOffset, mw.split.Offset)
	if err := mw.prefs.SaveIfChanged(); err != nil {
		slog.Warn("save preferences", "path", mw.prefs.Path(), "error", err)
	}
}
