package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	logFileName  = "laser_pointer_debug.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

// Setup enables file logging with size-based rotation (10MB, max 3 archives)
// in the per-user config directory. When disabled, logs are discarded.
func Setup(enableFileLogging bool) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		return
	}
	w, err := Open(Path(), maxSizeBytes, maxArchives)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}
	log.SetOutput(w)
	log.Printf("logging to %s", w.path)
}

// Path returns the default log file location, falling back to the working
// directory when there is no config directory.
func Path() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "laser-pointer", logFileName)
	}
	if abs, err := filepath.Abs(logFileName); err == nil {
		return abs
	}
	return logFileName
}

// RotatingWriter appends to path and moves it to path.1 .. path.N once it
// would grow past maxSize. The oldest archive is discarded.
type RotatingWriter struct {
	mu       sync.Mutex
	path     string
	maxSize  int64
	archives int
	f        *os.File
}

func Open(path string, maxSize int64, archives int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	w := &RotatingWriter{path: path, maxSize: maxSize, archives: archives}
	if st, err := os.Stat(path); err == nil && st.Size() > maxSize {
		w.rotate()
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	w.f = f
	return nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st, err := w.f.Stat(); err == nil && st.Size() > 0 && st.Size()+int64(len(p)) > w.maxSize {
		_ = w.f.Close()
		w.rotate()
		if err := w.open(); err != nil {
			return 0, err
		}
	}
	return w.f.Write(p)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

// rotate shifts path.i to path.i+1 and path to path.1.
func (w *RotatingWriter) rotate() {
	_ = os.Remove(w.archive(w.archives))
	for i := w.archives - 1; i >= 1; i-- {
		_ = os.Rename(w.archive(i), w.archive(i+1))
	}
	_ = os.Rename(w.path, w.archive(1))
}

func (w *RotatingWriter) archive(n int) string { return fmt.Sprintf("%s.%d", w.path, n) }
