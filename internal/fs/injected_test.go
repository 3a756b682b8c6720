package fs

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestFaulty_FailsOnlyConfiguredOpAndPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	broken := filepath.Join(dir, "TKT-001.md")
	healthy := filepath.Join(dir, "TKT-002.md")

	f := NewFaulty(NewReal())
	f.Fail(OpWrite, broken, syscall.EROFS)

	err := f.WriteFileAtomic(broken, []byte("x"), 0o644)
	if !IsInjected(err) {
		t.Fatalf("err=%v, want injected error", err)
	}

	if !errors.Is(err, syscall.EROFS) {
		t.Fatalf("err=%v, want EROFS", err)
	}

	if err := f.WriteFileAtomic(healthy, []byte("x"), 0o644); err != nil {
		t.Fatalf("healthy write err=%v", err)
	}

	if _, err := os.Stat(broken); !os.IsNotExist(err) {
		t.Fatalf("broken path must not be written, stat err=%v", err)
	}

	if got := f.Calls(OpWrite); got != 2 {
		t.Fatalf("write calls=%d, want=2", got)
	}
}

func TestFaulty_KeepsOSErrorSemantics(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "TKT-001.md")

	f := NewFaulty(NewReal())
	f.Fail(OpRead, path, syscall.EACCES)

	_, err := f.ReadFile(path)
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("err=%v, want permission error", err)
	}
}

func TestFaulty_Clear_RestoresPassthrough(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	f := NewFaulty(NewReal())
	f.Fail(OpReadDir, dir, syscall.EIO)

	if _, err := f.ReadDir(dir); err == nil {
		t.Fatal("ReadDir err=nil, want injected error")
	}

	f.Clear()

	if _, err := f.ReadDir(dir); err != nil {
		t.Fatalf("ReadDir err=%v after Clear", err)
	}
}

func TestIsInjected_ReturnsFalseForRealErrors(t *testing.T) {
	t.Parallel()

	_, err := NewReal().ReadFile(filepath.Join(t.TempDir(), "missing.md"))

	if IsInjected(err) {
		t.Fatalf("real error reported as injected: %v", err)
	}

	if IsInjected(nil) {
		t.Fatal("nil reported as injected")
	}
}
