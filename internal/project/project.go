// Package project provides takeoff project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"plan-takeoff/internal/drawing"
	"plan-takeoff/internal/measure"
	"plan-takeoff/pkg/geometry"
)

// Extension is the project file suffix.
const Extension = ".takeoff.json"

// CurrentVersion is written to new project files.
const CurrentVersion = 1

// File represents a takeoff project file.
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	Drawings []Drawing `json:"drawings"`

	// User settings
	Settings Settings `json:"settings,omitempty"`
}

// Settings holds per-project preferences.
type Settings struct {
	CountStyle measure.Style `json:"count_style"`
	Precision  int           `json:"precision,omitempty"`
}

// Drawing is the persisted form of one drawing. Bitmaps are not stored;
// they are reloaded from Source.
type Drawing struct {
	drawing.Metadata
	Kind drawing.Kind `json:"kind"`
	// Source path relative to the project file.
	Source    string        `json:"source"`
	PageIndex int           `json:"page_index,omitempty"`
	Scale     float64       `json:"scale"`
	Items     []Measurement `json:"measurements"`
}

// Measurement is the persisted form of a measurement. Quantity is stored
// as captured and is not recomputed on load.
type Measurement struct {
	ID       string             `json:"id"`
	Label    string             `json:"label"`
	Mode     measure.Mode       `json:"mode"`
	Points   []geometry.Point2D `json:"points"`
	Quantity float64            `json:"quantity"`
	Units    string             `json:"units"`
	Details  string             `json:"details,omitempty"`
	Style    measure.Style      `json:"style"`
}

// New creates a new project file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  CurrentVersion,
		Name:     name,
		Created:  now,
		Modified: now,
		Settings: Settings{CountStyle: measure.DefaultStyle()},
	}
}

// Load loads a project from a .takeoff.json file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("%s: project version %d is newer than supported version %d", path, proj.Version, CurrentVersion)
	}
	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// FromDrawing converts a drawing for storage. Source paths are made
// relative to projectPath when possible.
func FromDrawing(projectPath string, d *drawing.Drawing) Drawing {
	pd := Drawing{
		Metadata:  d.Metadata,
		Kind:      d.Kind,
		Source:    relativePath(projectPath, d.SourcePath),
		PageIndex: d.PageIndex,
		Scale:     d.Scale,
	}
	for _, m := range d.Measurements {
		pd.Items = append(pd.Items, Measurement{
			ID:       m.ID,
			Label:    m.Label,
			Mode:     m.Mode(),
			Points:   m.Points(),
			Quantity: m.Quantity,
			Units:    m.Units,
			Details:  m.Details,
			Style:    m.Style,
		})
	}
	return pd
}

// Restore rebuilds a measurement, checking point arity for its mode.
func (m Measurement) Restore() (*measure.Measurement, error) {
	g, err := measure.NewGeometry(m.Mode, m.Points)
	if err != nil {
		return nil, fmt.Errorf("measurement %q: %w", m.Label, err)
	}
	units := m.Units
	if units == "" {
		units = m.Mode.Units()
	}
	return &measure.Measurement{
		ID:       m.ID,
		Label:    m.Label,
		Geometry: g,
		Quantity: m.Quantity,
		Units:    units,
		Details:  m.Details,
		Style:    m.Style,
	}, nil
}

// Apply copies the stored metadata, scale and measurements onto d.
// Measurements that fail validation are skipped and returned as errors.
func (pd Drawing) Apply(d *drawing.Drawing) []error {
	d.Metadata = pd.Metadata
	var errs []error
	if err := d.SetScale(pd.Scale); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", pd.Name, err))
	}
	for _, item := range pd.Items {
		m, err := item.Restore()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		d.RestoreMeasurement(m)
	}
	return errs
}

// SourcePath returns the absolute path of a stored drawing's source.
func (pd Drawing) SourcePath(projectPath string) string {
	if pd.Source == "" || filepath.IsAbs(pd.Source) {
		return pd.Source
	}
	return filepath.Join(filepath.Dir(projectPath), pd.Source)
}

func relativePath(projectPath, path string) string {
	if path == "" || projectPath == "" {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	proj, err := filepath.Abs(projectPath)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(filepath.Dir(proj), abs)
	if err != nil {
		return path
	}
	return rel
}

// DefaultPath returns "<dir>/<name>.takeoff.json".
func DefaultPath(dir, name string) string {
	return filepath.Join(dir, name+Extension)
}
