package models

import "time"

// Artifact describes a generated source file kept by the artifact store.
type Artifact struct {
	// ID is the unique identifier, also used as the artifact folder name.
	ID string `json:"id"`
	// Path is the location handle returned by the store.
	Path string `json:"path"`
	// Task is the task text the source was generated for, if known.
	Task string `json:"task,omitempty"`
	// Size is the number of bytes written.
	Size int64 `json:"size"`
	// CreatedAt is when the artifact was saved.
	CreatedAt time.Time `json:"created_at"`
}
