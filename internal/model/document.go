// Package model defines the data structures used throughout the application.
//
// Content documents (About, BlogPost, Skill, ...) describe what the admin
// edits. Document and Backup describe how the repository layer stores them:
// a document is one named JSON blob, and every write leaves a backup copy.
package model

import (
	"encoding/json"
	"time"
)

// Document is one named JSON blob as held by a repository.
// Body is kept as raw bytes so the exact JSON the admin saved is what
// readers get back.
type Document struct {
	Name      string          `json:"name"`
	Body      json.RawMessage `json:"body"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Backup describes one timestamped copy written alongside a document save.
// Backups are never pruned.
type Backup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int64     `json:"size"`
}
