package app

import (
	"fmt"
	goimage "image"
	"log"
	"path/filepath"
	"time"

	"plan-takeoff/internal/document"
	"plan-takeoff/internal/drawing"
	"plan-takeoff/internal/image"
	"plan-takeoff/pkg/colorutil"
)

// AddFile opens a plan file from disk. See AddSource.
func (w *Workspace) AddFile(path string) error {
	src, err := image.Open(path)
	if err != nil {
		w.notify(fmt.Sprintf("Cannot open %s: %v", filepath.Base(path), err), SeverityError)
		return err
	}
	return w.AddSource(src)
}

// AddSource registers an upload. Raster and SVG images become one drawing
// immediately and decode in the background. Documents open in the
// background and become one drawing per page when ready. The workspace
// takes ownership of src.
func (w *Workspace) AddSource(src *image.Source) error {
	switch src.Kind() {
	case image.KindImage:
		w.addImage(src, nil)
		return nil

	case image.KindDocument:
		w.openDocument(src)
		return nil
	}
	src.Release()
	err := fmt.Errorf("%s: %w", src.Name, image.ErrUnsupportedFormat)
	w.notify(err.Error(), SeverityError)
	return err
}

func (w *Workspace) addImage(src *image.Source, init func(*drawing.Drawing)) {
	d := drawing.NewImage(src)
	if init != nil {
		init(d)
	}
	w.reg.Add(d)
	log.Printf("Workspace: added %s (%s, %d bytes)", d.Name, src.Format, src.Size())
	w.watch(d.SourcePath)
	w.Emit(EventDrawingsChanged, nil)
	w.decode(d)
	if w.reg.ActiveID() == d.ID {
		w.activeChanged()
	}
	if init == nil {
		w.SetModified(true)
	}
}

// start runs job on a worker goroutine and posts the function it returns
// back to the event goroutine. Results run even after Close so they can
// release what they produced; each checks whether it is still wanted.
func (w *Workspace) start(job func() func()) {
	w.pending++
	go func() {
		apply := job()
		w.post(func() {
			w.pending--
			apply()
		})
	}()
}

// decode loads an image drawing's bitmap. The result belongs to that
// drawing, so it is applied whenever the drawing still exists.
func (w *Workspace) decode(d *drawing.Drawing) {
	src := d.Source()
	id := d.ID
	// The worker reads a private view of the bytes; Release on the event
	// goroutine only drops the drawing's reference.
	snap := *src
	w.start(func() func() {
		started := time.Now()
		bmp, err := image.Decode(w.ctx, &snap)
		var flat *goimage.RGBA
		var dpi float64
		if err == nil {
			flat, dpi = image.Flatten(bmp.Image, colorutil.White), bmp.DPI
		}
		return func() {
			cur, ok := w.reg.Get(id)
			if !ok || cur.Source() != src {
				return
			}
			if err != nil {
				cur.LoadErr = err
				w.notify(fmt.Sprintf("Cannot decode %s: %v", cur.Name, err), SeverityError)
				return
			}
			cur.SetBitmap(flat, dpi)
			log.Printf("Workspace: decoded %s (%dx%d) in %s", cur.Name, cur.Width, cur.Height, time.Since(started).Round(time.Millisecond))
			if w.reg.ActiveID() == id {
				w.Emit(EventBitmapLoaded, cur)
			}
		}
	})
}

// openDocument opens a document in the background and adds its pages.
func (w *Workspace) openDocument(src *image.Source) {
	w.openDocumentPages(src, nil)
}

func (w *Workspace) openDocumentPages(src *image.Source, restore map[int]func(*drawing.Drawing)) {
	name, path, data := src.Name, src.Path, src.Bytes()
	w.start(func() func() {
		doc, err := w.rasterizer.Open(w.ctx, name, data)
		return func() {
			src.Release()
			if err != nil {
				w.notify(fmt.Sprintf("Cannot open %s: %v", name, err), SeverityError)
				return
			}
			if w.closed {
				_ = doc.Close()
				return
			}
			w.addPages(doc, name, path, restore)
		}
	})
}

// addPages creates one drawing per page. When restore is non-nil only the
// pages it names are created and each is initialized from its entry.
func (w *Workspace) addPages(doc document.Document, name, path string, restore map[int]func(*drawing.Drawing)) {
	n := doc.PageCount()
	if n == 0 {
		_ = doc.Close()
		w.notify(fmt.Sprintf("%s has no pages", name), SeverityWarning)
		return
	}
	shared := document.NewShared(doc)
	hadActive := w.reg.Active() != nil
	added := 0
	for i := 0; i < n; i++ {
		init, ok := restore[i]
		if restore != nil && !ok {
			continue
		}
		d := drawing.NewPage(shared, name, i)
		d.SourcePath = path
		if init != nil {
			init(d)
		}
		w.reg.Add(d)
		added++
	}
	if added == 0 {
		_ = doc.Close()
		return
	}
	log.Printf("Workspace: added %s (%d of %d pages)", name, added, n)
	w.watch(path)
	if restore != nil {
		w.arrangeRestored()
	}
	w.Emit(EventDrawingsChanged, nil)
	if !hadActive {
		w.activeChanged()
	}
	if restore == nil {
		w.SetModified(true)
	}
}

// display shows d, starting a page render when its bitmap is not cached.
// Every call takes a new generation; a render finishing after another
// display call is discarded.
func (w *Workspace) display(d *drawing.Drawing) {
	gen := w.reg.NextGeneration()
	if d == nil || d.Loaded() || d.Kind != drawing.KindPage {
		return
	}
	doc, index, id := d.Document(), d.PageIndex, d.ID
	w.start(func() func() {
		page, err := doc.RenderPage(w.ctx, index)
		return func() {
			if !w.reg.Current(gen) {
				log.Printf("Workspace: discarded stale render of page %d", index+1)
				return
			}
			cur, ok := w.reg.Get(id)
			if !ok || cur.Document() != doc {
				return
			}
			if err != nil {
				cur.LoadErr = err
				w.notify(fmt.Sprintf("Cannot render %s: %v", cur.Name, err), SeverityError)
				return
			}
			cur.SetBitmap(page.Image, page.PixelsPerInch())
			w.Emit(EventBitmapLoaded, cur)
		}
	})
}

func (w *Workspace) watch(path string) {
	if w.watcher == nil || path == "" || w.watcher.Watched(path) {
		return
	}
	err := w.watcher.Watch(path, func(p string) {
		w.post(func() {
			if !w.closed {
				w.Reload(p)
			}
		})
	})
	if err != nil {
		log.Printf("Workspace: cannot watch %s: %v", path, err)
	}
}

func (w *Workspace) unwatch(path string) {
	if w.watcher == nil || path == "" {
		return
	}
	for _, d := range w.reg.All() {
		if sameFile(d.SourcePath, path) {
			return
		}
	}
	w.watcher.Unwatch(path)
}

// Reload rereads a changed source file and refreshes every drawing made
// from it. Measurements are kept.
func (w *Workspace) Reload(path string) {
	var targets []*drawing.Drawing
	for _, d := range w.reg.All() {
		if sameFile(d.SourcePath, path) {
			targets = append(targets, d)
		}
	}
	if len(targets) == 0 {
		return
	}

	src, err := image.Open(path)
	if err != nil {
		w.notify(fmt.Sprintf("Cannot reload %s: %v", filepath.Base(path), err), SeverityError)
		return
	}
	log.Printf("Workspace: reloading %s", path)

	if src.Kind() == image.KindImage {
		used := false
		for _, d := range targets {
			if d.Kind != drawing.KindImage {
				continue
			}
			s := src
			if used {
				cp := *src
				s = &cp
			}
			used = true
			d.ReplaceSource(s)
			w.decode(d)
		}
		if !used {
			src.Release()
		}
		return
	}

	name, data := src.Name, src.Bytes()
	w.start(func() func() {
		doc, err := w.rasterizer.Open(w.ctx, name, data)
		return func() {
			src.Release()
			if err != nil {
				w.notify(fmt.Sprintf("Cannot reload %s: %v", name, err), SeverityError)
				return
			}
			if w.closed {
				_ = doc.Close()
				return
			}
			w.applyReloadedDocument(doc, path)
		}
	})
}

func (w *Workspace) applyReloadedDocument(doc document.Document, path string) {
	shared := document.NewShared(doc)
	moved := 0
	for _, d := range w.reg.All() {
		if d.Kind != drawing.KindPage || !sameFile(d.SourcePath, path) || d.PageIndex >= doc.PageCount() {
			continue
		}
		d.ReplaceDocument(shared)
		moved++
	}
	if moved == 0 {
		_ = doc.Close()
		return
	}
	if a := w.reg.Active(); a != nil && sameFile(a.SourcePath, path) {
		w.display(a)
	}
	w.notify(fmt.Sprintf("Reloaded %s", filepath.Base(path)), SeverityInfo)
}

func sameFile(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
