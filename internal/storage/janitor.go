package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// GeneratedPrefix marks the files the janitor is allowed to touch. Serve
// mode names every download with it; anything else in the directory is
// left alone.
const GeneratedPrefix = "iiif_"

// Janitor removes expired download files and their job records.
type Janitor struct {
	dir    string
	maxAge time.Duration
	store  *JobStore
}

func NewJanitor(dir string, maxAge time.Duration, store *JobStore) *Janitor {
	return &Janitor{dir: dir, maxAge: maxAge, store: store}
}

// Run sweeps on the given interval until the context is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep deletes generated files older than the retention period.
func (j *Janitor) Sweep() {
	cutoff := time.Now().Add(-j.maxAge)

	matches, err := filepath.Glob(filepath.Join(j.dir, GeneratedPrefix+"*.jpg"))
	if err != nil {
		slog.Error("janitor glob failed", "dir", j.dir, "err", err)
		return
	}
	for _, path := range matches {
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		if fi.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			slog.Warn("janitor could not remove file", "path", path, "err", err)
			continue
		}
		slog.Debug("janitor removed expired file", "path", path)
		j.dropJobFor(filepath.Base(path))
	}
}

func (j *Janitor) dropJobFor(filename string) {
	if j.store == nil {
		return
	}
	for _, job := range j.store.GetAll() {
		if job.Filename == filename {
			j.store.Delete(job.ID)
		}
	}
}
