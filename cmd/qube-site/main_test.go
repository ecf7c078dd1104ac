package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qube-site.json")

	err := os.WriteFile(path, []byte(`{
  "pages": [{"id": "index", "title": "Main page", "source": "docs/index.md"}],
  "releases": {"id": "download", "title": "Download", "clone": "https://github.com/mathijs81/qube"}
}`), 0o600)
	if err != nil {
		t.Fatalf("write config: %v", err)
	}

	conf, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(conf.Pages) != 1 || conf.Pages[0].Source != "docs/index.md" {
		t.Errorf("unexpected pages: %+v", conf.Pages)
	}

	if conf.Releases == nil || conf.Releases.ID != "download" {
		t.Errorf("unexpected releases: %+v", conf.Releases)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qube-site.json")

	err := os.WriteFile(path, []byte(`{"pages": `), 0o600)
	if err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err = loadConfig(path)
	if err == nil {
		t.Error("expected an error for truncated JSON")
	}

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("expected an error for a missing config")
	}
}

func TestResetDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "www")

	err := os.MkdirAll(dir, 0o700)
	if err != nil {
		t.Fatalf("create dir: %v", err)
	}

	err = os.WriteFile(filepath.Join(dir, "stale.htm"), []byte("old"), 0o600)
	if err != nil {
		t.Fatalf("write stale page: %v", err)
	}

	err = resetDir(dir)
	if err != nil {
		t.Fatalf("reset dir: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}

	if len(entries) != 0 {
		t.Errorf("expected an empty directory, found %d entries", len(entries))
	}
}

func TestPrinter(t *testing.T) {
	var b strings.Builder

	uiPrintln := printer(&b)

	uiPrintln("Rendering %s", "index")
	uiPrintln("Cloning %s", "repo")

	if b.String() != "Rendering index\nCloning repo\n" {
		t.Errorf("unexpected output %q", b.String())
	}
}
