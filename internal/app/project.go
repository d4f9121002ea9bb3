package app

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"plan-takeoff/internal/drawing"
	"plan-takeoff/internal/image"
	"plan-takeoff/internal/measure"
	"plan-takeoff/internal/project"
)

// Snapshot captures every drawing and its measurements as a project file.
func (w *Workspace) Snapshot(path string) *project.File {
	name := strings.TrimSuffix(filepath.Base(path), project.Extension)
	p := project.New(name)
	p.Settings.CountStyle = w.countStyle
	p.Settings.Precision = w.precision
	for _, d := range w.reg.All() {
		p.Drawings = append(p.Drawings, project.FromDrawing(path, d))
	}
	return p
}

// SaveProject saves the project to the specified path.
func (w *Workspace) SaveProject(path string) error {
	p := w.Snapshot(path)
	if err := p.Save(path); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	w.ProjectPath = path
	w.SetModified(false)
	w.Emit(EventProjectSaved, path)
	log.Printf("Workspace: saved %d drawings to %s", len(p.Drawings), path)
	return nil
}

// LoadProject replaces the open drawings with those of a project file.
// Sources are reopened from disk; stored quantities are kept as saved.
// Missing sources are reported and skipped.
func (w *Workspace) LoadProject(path string) error {
	p, err := project.Load(path)
	if err != nil {
		return err
	}
	w.Restore(path, p)
	return nil
}

// Restore replaces the open drawings with the contents of p. Document pages
// arrive in the background; the list keeps the saved order as they do.
func (w *Workspace) Restore(path string, p *project.File) {
	var sources []string
	for _, d := range w.reg.All() {
		sources = append(sources, d.SourcePath)
	}
	w.reg.Close()
	w.reg = drawing.NewRegistry()
	for _, src := range sources {
		w.unwatch(src)
	}
	rank := make(map[string]int, len(p.Drawings))
	w.restored = rank
	w.capture.Reset()
	w.view.Reset()
	w.selected = ""
	w.countStyle = p.Settings.CountStyle
	if w.countStyle.Color == "" {
		w.countStyle = measure.DefaultStyle()
	}
	if p.Settings.Precision > 0 {
		w.precision = p.Settings.Precision
	}
	w.Emit(EventDrawingsChanged, nil)
	w.activeChanged()

	documents := make(map[string]map[int]func(*drawing.Drawing))
	var order []string
	for i, pd := range p.Drawings {
		i, pd := i, pd
		init := func(d *drawing.Drawing) {
			rank[d.ID] = i
			for _, err := range pd.Apply(d) {
				w.notify(err.Error(), SeverityWarning)
			}
		}
		src := pd.SourcePath(path)
		if src == "" {
			w.notify(fmt.Sprintf("%s has no source file", pd.Name), SeverityWarning)
			continue
		}
		if pd.Kind == drawing.KindPage {
			if documents[src] == nil {
				documents[src] = make(map[int]func(*drawing.Drawing))
				order = append(order, src)
			}
			documents[src][pd.PageIndex] = init
			continue
		}
		s, err := image.Open(src)
		if err != nil {
			w.notify(fmt.Sprintf("Cannot open %s: %v", filepath.Base(src), err), SeverityWarning)
			continue
		}
		w.addImage(s, init)
	}
	w.arrangeRestored()
	for _, src := range order {
		s, err := image.Open(src)
		if err != nil {
			w.notify(fmt.Sprintf("Cannot open %s: %v", filepath.Base(src), err), SeverityWarning)
			continue
		}
		w.openDocumentPages(s, documents[src])
	}

	w.ProjectPath = path
	w.SetModified(false)
	w.Emit(EventProjectLoaded, path)
}

// arrangeRestored puts restored drawings back in their saved order. Drawings
// added since the restore follow them.
func (w *Workspace) arrangeRestored() {
	rank := w.restored
	if len(rank) == 0 {
		return
	}
	w.reg.Reorder(func(a, b *drawing.Drawing) bool {
		ra, okA := rank[a.ID]
		rb, okB := rank[b.ID]
		return okA && (!okB || ra < rb)
	})
	w.Emit(EventDrawingsChanged, nil)
}
