package presets

import (
	"path/filepath"
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := setupRepo(t)
	desc := "format"
	if _, err := src.Create("web", &desc, demoSpecs()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	out := filepath.Join(t.TempDir(), "nested", "web.db")
	if err := src.Export("web", out); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if err := src.Export("missing", out); err == nil {
		t.Fatalf("expected error exporting a missing preset")
	}

	dst := setupRepo(t)
	if _, err := dst.Create("web", nil, demoSpecs()[:1]); err != nil {
		t.Fatalf("Create: %v", err)
	}
	names, err := dst.Import(out)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(names) != 1 || names[0] != "web-import-1" {
		t.Fatalf("unexpected imported names %v", names)
	}
	p, err := dst.Get("web-import-1")
	if err != nil || p == nil {
		t.Fatalf("Get: %v %v", p, err)
	}
	if !p.Description.Valid || p.Description.String != "format" {
		t.Fatalf("description not carried over: %+v", p.Description)
	}
	want := demoSpecs()
	if len(p.Commands) != len(want) || p.Commands[1].Timeout != want[1].Timeout || p.Commands[1].Args[1] != want[1].Args[1] {
		t.Fatalf("commands not carried over: %+v", p.Commands)
	}

	if _, err := dst.Import(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Fatalf("expected error for a missing source file")
	}
}
