package prefs

import (
	"os"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := LoadFrom(dir)
	if got := p.Float(KeyOversample, 1.5); got != 1.5 {
		t.Errorf("fallback = %v", got)
	}
	p.SetFloat(KeyOversample, 2)
	p.SetInt(KeyPrecision, 3)
	p.SetString(KeyInboxURL, "http://localhost:3080")
	p.SetBool(KeyWatchFiles, false)
	if err := p.Save(); err != nil {
		t.Fatal(err)
	}

	q := LoadFrom(dir)
	if q.Float(KeyOversample, 0) != 2 || q.Int(KeyPrecision, 0) != 3 {
		t.Errorf("numbers = %v %v", q.Float(KeyOversample, 0), q.Int(KeyPrecision, 0))
	}
	if q.String(KeyInboxURL, "") != "http://localhost:3080" || q.Bool(KeyWatchFiles, true) {
		t.Error("string/bool values lost")
	}
}

func TestSaveIfChanged(t *testing.T) {
	dir := t.TempDir()
	p := LoadFrom(dir)
	if wrote, _ := p.SaveIfChanged(); wrote {
		t.Error("nothing changed yet")
	}
	p.SetString(KeyLastDir, "/plans")
	if wrote, err := p.SaveIfChanged(); !wrote || err != nil {
		t.Errorf("SaveIfChanged = %v, %v", wrote, err)
	}
	if _, err := os.Stat(p.Path()); err != nil {
		t.Errorf("file not written: %v", err)
	}
	p.SetString(KeyLastDir, "/plans")
	if wrote, _ := p.SaveIfChanged(); wrote {
		t.Error("setting the same value should not mark prefs dirty")
	}
}
