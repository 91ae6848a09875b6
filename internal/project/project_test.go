package project

import (
	"os"
	"path/filepath"
	"testing"

	"chv/internal/version"
)

func TestEnsureVersionDir(t *testing.T) {
	root := t.TempDir()
	v, err := version.Parse("25.3.2.39")
	if err != nil {
		t.Fatal(err)
	}

	dir, err := EnsureVersionDir(root, v)
	if err != nil {
		t.Fatalf("EnsureVersionDir: %v", err)
	}
	want := filepath.Join(root, ".clickhouse", "25.3.2.39")
	if dir != want {
		t.Fatalf("got %s, want %s", dir, want)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("version dir not created: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, ".clickhouse", ".gitignore"))
	if err != nil {
		t.Fatalf("gitignore: %v", err)
	}
	if string(data) != "*\n" {
		t.Fatalf("gitignore content %q", data)
	}
}

func TestEnsureVersionDirKeepsExistingGitignore(t *testing.T) {
	root := t.TempDir()
	projectDir := filepath.Join(root, ".clickhouse")
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatal(err)
	}
	custom := filepath.Join(projectDir, ".gitignore")
	if err := os.WriteFile(custom, []byte("data/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v, _ := version.Parse("25.3.2.39")
	if _, err := EnsureVersionDir(root, v); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(custom)
	if string(data) != "data/\n" {
		t.Fatalf("existing gitignore overwritten: %q", data)
	}
}

func TestEnsureVersionDirIdempotent(t *testing.T) {
	root := t.TempDir()
	v, _ := version.Parse("25.3.2.39")

	first, err := EnsureVersionDir(root, v)
	if err != nil {
		t.Fatal(err)
	}
	second, err := EnsureVersionDir(root, v)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("paths differ: %s vs %s", first, second)
	}
}
