package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func writeModels(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, f := range names {
		if err := os.WriteFile(filepath.Join(dir, f), []byte(""), 0o644); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
}

func TestLoadDir_FiltersGGUF(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir, "b.GGUF", "a.gguf", "not-model.txt", "model.bin")
	if err := os.Mkdir(filepath.Join(dir, "sub.gguf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	models, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %+v", models)
	}
	if models[0].ID != "a.gguf" || models[0].Name != "a" || !filepath.IsAbs(models[0].Path) {
		t.Fatalf("unexpected first model: %+v", models[0])
	}
	if models[1].ID != "b.GGUF" || models[1].Name != "b" {
		t.Fatalf("unexpected second model: %+v", models[1])
	}
}

func TestLoadDir_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	if err := os.Mkdir(filepath.Join(home, "models"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeModels(t, filepath.Join(home, "models"), "x.gguf")
	models, err := LoadDir("~/models")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(models) != 1 || models[0].ID != "x.gguf" {
		t.Fatalf("unexpected models: %+v", models)
	}
}

func TestLoadDir_MissingDir(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir, "distilgpt2-q8_0.gguf", "flan-t5-large.gguf")

	m, err := Resolve(dir, "flan-t5-large")
	if err != nil || m.ID != "flan-t5-large.gguf" {
		t.Fatalf("by name: %+v %v", m, err)
	}
	m, err = Resolve(dir, "DISTILGPT2-Q8_0.gguf")
	if err != nil || m.Name != "distilgpt2-q8_0" {
		t.Fatalf("by filename: %+v %v", m, err)
	}
	direct := filepath.Join(dir, "flan-t5-large.gguf")
	m, err = Resolve("", direct)
	if err != nil || m.Path != direct {
		t.Fatalf("by path: %+v %v", m, err)
	}
	if _, err := Resolve(dir, "missing"); err == nil {
		t.Fatalf("expected not found")
	}
	if _, err := Resolve("", "missing"); err == nil {
		t.Fatalf("expected error without models dir")
	}
	if _, err := Resolve(dir, ""); err == nil {
		t.Fatalf("expected error for empty id")
	}
}
