package logutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriterKeepsArchives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	w, err := Open(path, 10, 2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	for _, line := range []string{"first1\n", "second\n", "third3\n", "fourth\n"} {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	tests := []struct {
		file string
		want string
	}{
		{path, "fourth\n"},
		{path + ".1", "third3\n"},
		{path + ".2", "second\n"},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(tt.file)
		if err != nil {
			t.Fatalf("read %s: %v", tt.file, err)
		}
		if string(data) != tt.want {
			t.Errorf("%s = %q, want %q", filepath.Base(tt.file), data, tt.want)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("only 2 archives should be kept, stat .3: %v", err)
	}
}

func TestOpenRotatesOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 20)), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Open(path, 10, 1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	if st, err := os.Stat(path); err != nil || st.Size() != 0 {
		t.Errorf("expected a fresh log file, stat = %v, %v", st, err)
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected the old file in .1: %v", err)
	}
}

func TestPathNamesLogFile(t *testing.T) {
	if got := filepath.Base(Path()); got != logFileName {
		t.Errorf("Path() base = %q, want %q", got, logFileName)
	}
}
