package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestFindFileCaseInsensitive(t *testing.T) {
	tmpDir := t.TempDir()

	testFiles := []string{
		"Hello.bgn",
		"UPPERCASE.BGN",
		"lowercase.txt",
	}
	for _, filename := range testFiles {
		path := filepath.Join(tmpDir, filename)
		if err := os.WriteFile(path, []byte("ECHO x\n"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "subdir.bgn"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	tests := []struct {
		name          string
		searchName    string
		shouldFind    bool
		expectedMatch string
	}{
		{"完全一致", "Hello.bgn", true, "Hello.bgn"},
		{"小文字で検索", "hello.bgn", true, "Hello.bgn"},
		{"大文字で検索", "HELLO.BGN", true, "Hello.bgn"},
		{"大文字ファイルを混在で検索", "Uppercase.bgn", true, "UPPERCASE.BGN"},
		{"小文字ファイルを大文字で検索", "LOWERCASE.TXT", true, "lowercase.txt"},
		{"ディレクトリは対象外", "SUBDIR.BGN", false, ""},
		{"存在しない", "nonexistent.bgn", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := FindFileCaseInsensitive(tmpDir, tt.searchName)

			if tt.shouldFind {
				if err != nil {
					t.Fatalf("Expected to find file, but got error: %v", err)
				}
				if got := filepath.Base(path); got != tt.expectedMatch {
					t.Errorf("Expected filename %s, got %s", tt.expectedMatch, got)
				}
				if _, err := os.Stat(path); err != nil {
					t.Errorf("Returned path does not exist: %s", path)
				}
				return
			}

			if err == nil {
				t.Errorf("Expected error for non-existent file, but got path: %s", path)
			}
			if !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("error should wrap fs.ErrNotExist: %v", err)
			}
		})
	}
}

func TestFindFileCaseInsensitive_MissingDirectory(t *testing.T) {
	_, err := FindFileCaseInsensitive(filepath.Join(t.TempDir(), "missing"), "a.bgn")
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestResolveScript(t *testing.T) {
	tmpDir := t.TempDir()
	script := filepath.Join(tmpDir, "Hello.bgn")
	if err := os.WriteFile(script, []byte("ECHO x\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		expected string
		wantErr  bool
	}{
		{"そのまま存在", script, script, false},
		{"大文字小文字違い", filepath.Join(tmpDir, "HELLO.BGN"), script, false},
		{"空のパス", "", "", true},
		{"ディレクトリ", tmpDir, "", true},
		{"存在しない", filepath.Join(tmpDir, "nope.bgn"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveScript(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestResolveScript_NotFoundIsErrNotExist(t *testing.T) {
	_, err := ResolveScript(filepath.Join(t.TempDir(), "nope.bgn"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestDigest(t *testing.T) {
	// BLAKE3 of the empty input
	const empty = "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if got := Digest(nil); got != empty {
		t.Errorf("Digest(nil) = %s, want %s", got, empty)
	}

	a := Digest([]byte("READ x\nECHO x\n"))
	b := Digest([]byte("READ x\nECHO y\n"))
	if a == b {
		t.Error("different inputs should produce different digests")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
	if a != Digest([]byte("READ x\nECHO x\n")) {
		t.Error("digest should be deterministic")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sh")
	data := []byte("#!/bin/bash\necho hi\n")

	changed, err := WriteFileAtomic(path, data, 0755)
	if err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if !changed {
		t.Error("first write should report a change")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("expected %q, got %q", data, got)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0755 {
			t.Errorf("expected mode 0755, got %o", perm)
		}
	}

	// 同じ内容なら書き込まない
	changed, err = WriteFileAtomic(path, data, 0755)
	if err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if changed {
		t.Error("identical content should not be rewritten")
	}

	changed, err = WriteFileAtomic(path, []byte("#!/bin/bash\n"), 0755)
	if err != nil {
		t.Fatalf("third write failed: %v", err)
	}
	if !changed {
		t.Error("new content should be written")
	}
}

func TestWriteFileAtomic_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteFileAtomic(filepath.Join(dir, "out.sh"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file, got %d", len(entries))
	}
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.sh")
	if _, err := WriteFileAtomic(path, []byte("x"), 0644); err == nil {
		t.Error("expected error when the directory does not exist")
	}
}
