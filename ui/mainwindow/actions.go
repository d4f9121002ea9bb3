package mainwindow

import (
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"plan-takeoff/internal/app"
	"plan-takeoff/internal/export"
	"plan-takeoff/internal/image"
	"plan-takeoff/internal/project"
	"plan-takeoff/ui/prefs"
)

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir, "")
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}

func (mw *MainWindow) onOpenDrawing() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		// AddFile reports failures through Notify.
		_ = mw.ws.AddFile(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(image.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// onDropped opens plan files dropped onto the window.
func (mw *MainWindow) onDropped(_ fyne.Position, uris []fyne.URI) {
	for _, u := range uris {
		path := u.Path()
		if strings.HasSuffix(path, project.Extension) {
			mw.openProject(path)
			continue
		}
		_ = mw.ws.AddFile(path)
	}
}

func (mw *MainWindow) onNewProject() {
	reset := func() {
		mw.ws.Restore("", project.New(""))
	}
	if !mw.ws.Modified {
		reset()
		return
	}
	dialog.ShowConfirm("New Project", "Discard unsaved changes?", func(ok bool) {
		if ok {
			reset()
		}
	}, mw.Window)
}

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		mw.openProject(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) openProject(path string) {
	if err := mw.ws.LoadProject(path); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveProject() {
	if mw.ws.ProjectPath == "" {
		mw.onSaveProjectAs()
		return
	}
	if err := mw.ws.SaveProject(mw.ws.ProjectPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !strings.HasSuffix(path, project.Extension) {
			path = strings.TrimSuffix(path, ".json") + project.Extension
		}
		mw.saveLastDir(path)
		if err := mw.ws.SaveProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName("project" + project.Extension)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// onExportCSV asks for a folder and writes the active drawing's CSV there.
func (mw *MainWindow) onExportCSV() {
	if d := mw.ws.Active(); d == nil || len(d.Measurements) == 0 {
		mw.Notify("No measurements to export", app.SeverityWarning)
		return
	}
	fd := dialog.NewFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil || dir == nil {
			return
		}
		mw.prefs.SetString(prefs.KeyLastDir, dir.Path())
		// ExportCSV reports the outcome through Notify.
		_, _ = mw.ws.ExportCSV(dir.Path())
	}, mw.Window)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onHandoff() {
	// Delivery runs in the background and reports through Notify.
	if err := mw.ws.Handoff(); err == nil {
		mw.updateStatus("Sending to the estimate...")
	}
}

// onPreferences edits the settings read at startup.
func (mw *MainWindow) onPreferences() {
	inbox := widget.NewEntry()
	inbox.SetText(mw.prefs.String(prefs.KeyInboxURL, ""))
	inbox.SetPlaceHolder("http://localhost:3080 (empty for local inbox)")
	watch := widget.NewCheck("Reload drawings when files change", nil)
	watch.SetChecked(mw.prefs.Bool(prefs.KeyWatchFiles, true))
	precision := widget.NewSelect([]string{"0", "1", "2", "3", "4"}, nil)
	precision.SetSelected(strconv.Itoa(mw.prefs.Int(prefs.KeyPrecision, export.Precision)))

	dialog.ShowForm("Preferences", "Save", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Estimate inbox", inbox),
		widget.NewFormItem("CSV decimals", precision),
		widget.NewFormItem("", watch),
	}, func(ok bool) {
		if !ok {
			return
		}
		mw.prefs.SetString(prefs.KeyInboxURL, strings.TrimSpace(inbox.Text))
		mw.prefs.SetBool(prefs.KeyWatchFiles, watch.Checked)
		if n, err := strconv.Atoi(precision.Selected); err == nil {
			mw.prefs.SetInt(prefs.KeyPrecision, n)
		}
		mw.SavePreferencesIfChanged()
		mw.updateStatus("Preferences saved; some take effect after restart")
	}, mw.Window)
}
