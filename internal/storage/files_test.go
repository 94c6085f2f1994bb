package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestFileStore_WriteRead(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewFileStore(fs, "datafiles")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	a, err := s.Write("print hi", "print('hi')\n")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := filepath.Join("datafiles", a.ID, CodeFileName); a.Path != want {
		t.Errorf("Path = %q, want %q", a.Path, want)
	}
	if a.Size != int64(len("print('hi')\n")) || a.Task != "print hi" {
		t.Errorf("artifact = %+v", a)
	}

	code, err := s.Read(a.ID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if code != "print('hi')\n" {
		t.Errorf("code = %q", code)
	}
}

func TestFileStore_UniqueFolders(t *testing.T) {
	s, _ := NewFileStore(afero.NewMemMapFs(), "out")
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		a, err := s.Write("", "x = 1")
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		if seen[a.ID] {
			t.Fatalf("duplicate artifact id %s", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestFileStore_Remove(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, _ := NewFileStore(fs, "out")
	a, _ := s.Write("", "x = 1")

	if err := s.Remove(a.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if exists, _ := afero.DirExists(fs, filepath.Join("out", a.ID)); exists {
		t.Error("artifact folder still exists")
	}
	if _, err := s.Read(a.ID); err == nil {
		t.Error("expected error reading removed artifact")
	}
}

func TestFileStore_RejectsInvalidIDs(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, _ := NewFileStore(fs, "out")
	a, _ := s.Write("", "x = 1")

	for _, id := range []string{"", ".", "..", "../out", "not-a-uuid", strings.ToUpper(a.ID), "{" + a.ID + "}"} {
		if err := s.Remove(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Remove(%q) = %v, want ErrInvalidID", id, err)
		}
		if _, err := s.Read(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Read(%q) = %v, want ErrInvalidID", id, err)
		}
	}

	if code, err := s.Read(a.ID); err != nil || code != "x = 1" {
		t.Errorf("artifact damaged after rejected removals: %q, %v", code, err)
	}
}

func TestNewFileStore_RequiresDir(t *testing.T) {
	if _, err := NewFileStore(afero.NewMemMapFs(), ""); err == nil {
		t.Error("expected error for empty dir")
	}
}

func TestNewFileStore_ReadOnlyFs(t *testing.T) {
	if _, err := NewFileStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "out"); err == nil {
		t.Error("expected error creating store on read-only filesystem")
	}
}
