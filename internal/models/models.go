package models

import "time"

// DownloadJob records one completed serve-mode download. Jobs live in
// memory only; the janitor removes their files after the retention period.
type DownloadJob struct {
	ID          string    `json:"id"`
	SourceURL   string    `json:"source_url"`
	Filename    string    `json:"filename"`
	DownloadURL string    `json:"download_url"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Source      string    `json:"source"` // "direct" or "stitched"
	CreatedAt   time.Time `json:"created_at"`
}
