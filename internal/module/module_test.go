package module

import (
	"os"
	"path/filepath"
	"testing"
)

func writeModule(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveFromBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "utils.nova", "fn id(x) { x }")

	source, resolved, err := NewLoader(dir).Resolve("utils")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if source != "fn id(x) { x }" {
		t.Errorf("source = %q", source)
	}
	if !filepath.IsAbs(resolved) {
		t.Errorf("resolved path %q is not absolute", resolved)
	}
}

func TestResolveExplicitExtensionAndSubdir(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, filepath.Join("lib", "helpers.nova"), "let version = 1")

	loader := NewLoader(dir)
	if _, _, err := loader.Resolve("lib/helpers.nova"); err != nil {
		t.Errorf("explicit extension: %v", err)
	}
	if _, _, err := loader.Resolve("lib/helpers"); err != nil {
		t.Errorf("without extension: %v", err)
	}
}

func TestResolveStdFallback(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, filepath.Join("std", "mathx.nova"), "fn square(x) { x * x }")

	if _, _, err := NewLoader(dir).Resolve("mathx"); err != nil {
		t.Errorf("std fallback: %v", err)
	}
}

func TestResolveNovaPath(t *testing.T) {
	dir := t.TempDir()
	extra := t.TempDir()
	writeModule(t, extra, "vendored.nova", "let ok = true")
	t.Setenv("NOVA_PATH", extra)

	if _, _, err := NewLoader(dir).Resolve("vendored"); err != nil {
		t.Errorf("NOVA_PATH lookup: %v", err)
	}
}

func TestResolveMissing(t *testing.T) {
	if _, _, err := NewLoader(t.TempDir()).Resolve("ghost"); err == nil {
		t.Error("expected error for missing module")
	}
}
