package plugins

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeExecutable(t *testing.T, path, script string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to create plugin: %v", err)
	}
}

func TestFinder_NotFound(t *testing.T) {
	f := &Finder{Dirs: []string{t.TempDir()}, SkipPath: true}
	if _, err := f.Find("nonexistent-plugin-xyz"); err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestFinder_SearchOrder(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeExecutable(t, filepath.Join(second, "gedline-merge"), "#!/bin/sh\n")

	f := &Finder{Dirs: []string{first, second}, SkipPath: true}
	found, err := f.Find("merge")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found != filepath.Join(second, "gedline-merge") {
		t.Errorf("Find() = %s", found)
	}

	writeExecutable(t, filepath.Join(first, "gedline-merge"), "#!/bin/sh\n")
	found, _ = f.Find("merge")
	if found != filepath.Join(first, "gedline-merge") {
		t.Errorf("earlier directory should win, got %s", found)
	}
}

func TestFinder_RejectsPaths(t *testing.T) {
	dir := t.TempDir()
	f := &Finder{Dirs: []string{dir}, SkipPath: true}
	for _, name := range []string{"", "../merge", `a\b`} {
		if _, err := f.Find(name); err != ErrPluginNotFound {
			t.Errorf("Find(%q) error = %v, want ErrPluginNotFound", name, err)
		}
	}
}

func TestFinder_Path(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, filepath.Join(dir, "gedline-split"), "#!/bin/sh\n")
	t.Setenv("PATH", dir)

	found, err := (&Finder{}).Find("split")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found != filepath.Join(dir, "gedline-split") {
		t.Errorf("Find() = %s", found)
	}
}

func TestExecute_ExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	ok := filepath.Join(dir, "gedline-ok")
	fail := filepath.Join(dir, "gedline-fail")
	writeExecutable(t, ok, "#!/bin/sh\nexit 0\n")
	writeExecutable(t, fail, "#!/bin/sh\nexit 3\n")

	if code := Execute(ok, nil); code != 0 {
		t.Errorf("Execute(ok) = %d, want 0", code)
	}
	if code := Execute(fail, []string{"x"}); code != 3 {
		t.Errorf("Execute(fail) = %d, want 3", code)
	}
}

func TestFormatNotFoundError(t *testing.T) {
	msg := FormatNotFoundError("merge")

	for _, want := range []string{`"merge"`, "gedline-merge", "~/.gedline/plugins/", "gedline --help"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestIsExecutable(t *testing.T) {
	tmpDir := t.TempDir()

	nonExec := filepath.Join(tmpDir, "nonexec")
	if err := os.WriteFile(nonExec, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if isExecutable(nonExec) {
		t.Error("non-executable file should not be detected as executable")
	}

	exec := filepath.Join(tmpDir, "exec")
	writeExecutable(t, exec, "test")
	if !isExecutable(exec) {
		t.Error("executable file should be detected as executable")
	}

	if isExecutable(tmpDir) {
		t.Error("directory should not be detected as executable")
	}
	if isExecutable(filepath.Join(tmpDir, "nonexistent")) {
		t.Error("non-existent file should not be detected as executable")
	}
}
