package config

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"aacc/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination"`
}

// Prepare creates initialized empty reporter.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{entries: make(map[string]entry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

type entry struct {
	path  string
	stamp time.Time
	data  []byte
}

// Report accumulates files and data to pack into a single debug archive at
// the end of a run. A nil Report is valid and ignores all calls, so callers
// never have to check whether reporting was requested.
// NOTE: not to be used concurrently.
type Report struct {
	entries map[string]entry
	file    *os.File
}

// Name returns name of underlying file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store saves the path of a file to be put in the final archive later.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if p, err := filepath.Abs(path); err == nil {
		path = p
	}
	r.entries[name] = entry{path: path}
}

// StoreData saves binary data to be put in the final archive later under the
// requested name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

// Close packs everything stored so far and finalizes the archive. Files that
// disappeared between Store and Close are skipped silently: the report must
// come out even when parts of it are gone.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	w := zip.NewWriter(r.file)
	for _, name := range names {
		e := r.entries[name]
		if e.data != nil {
			if err := writeDataEntry(w, name, e); err != nil {
				return err
			}
			continue
		}
		if err := writeFileEntry(w, name, e.path); err != nil {
			return err
		}
	}
	return w.Close()
}

func writeDataEntry(w *zip.Writer, name string, e entry) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: e.stamp}
	f, err := w.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("unable to create report entry %q: %w", name, err)
	}
	if _, err := f.Write(e.data); err != nil {
		return fmt.Errorf("unable to write report entry %q: %w", name, err)
	}
	return nil
}

func writeFileEntry(w *zip.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer src.Close()

	f, err := w.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create report entry %q: %w", name, err)
	}
	if _, err := io.Copy(f, src); err != nil {
		return fmt.Errorf("unable to copy %q into report: %w", path, err)
	}
	return nil
}
