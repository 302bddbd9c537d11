package models

import "time"

// Annotation is a user note attached to one verse of a song file.
type Annotation struct {
	Verse string `json:"verse"`
	Text  string `json:"text"`
}

// SongMetadata is the sidecar record kept for every indexed song file.
// DateAdded is written once, the first time the path is seen.
type SongMetadata struct {
	Path        string       `json:"path"`
	DateAdded   time.Time    `json:"dateAdded"`
	Annotations []Annotation `json:"annotations,omitempty"`
}
