package index

import "github.com/himanishpuri/LyricIndex/pkg/models"

// Document is the derived, disposable index entry for one song file.
// Its bleve document id is Path.
type Document struct {
	Path     string   `json:"path"`
	ID       string   `json:"id"`
	Title    []string `json:"title"`
	Verse    []string `json:"verse"`
	Keywords string   `json:"keywords"`
}

// NewDocument builds the index document for the song stored at path.
func NewDocument(path, id string, song *models.Song) Document {
	return Document{
		Path:     path,
		ID:       id,
		Title:    song.Titles(),
		Verse:    song.VerseTexts(),
		Keywords: song.Keywords,
	}
}
