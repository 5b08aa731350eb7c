package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"github.com/Dosada05/tournament-engine/models"
)

// ArchiveDocument is the frozen record of a finished tournament.
type ArchiveDocument struct {
	Tournament *models.Tournament   `json:"tournament"`
	Standings  []models.StandingRow `json:"standings"`
	Rounds     []models.RoundView   `json:"rounds"`
	ArchivedAt time.Time            `json:"archived_at"`
}

// StandingsArchive writes final standings as JSON objects through a FileUploader.
type StandingsArchive struct {
	uploader FileUploader
}

func NewStandingsArchive(uploader FileUploader) *StandingsArchive {
	return &StandingsArchive{uploader: uploader}
}

// Key returns "archives/<name-slug>-<id>/standings.json".
func (a *StandingsArchive) Key(t *models.Tournament) string {
	name := slug.Make(t.Name)
	if name == "" {
		name = "tournament"
	}
	return fmt.Sprintf("archives/%s-%s/standings.json", name, t.ID)
}

func (a *StandingsArchive) Store(ctx context.Context, doc ArchiveDocument) (*UploadResult, error) {
	if doc.Tournament == nil {
		return nil, fmt.Errorf("archive document has no tournament")
	}
	if doc.ArchivedAt.IsZero() {
		doc.ArchivedAt = time.Now().UTC()
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode archive for tournament %s: %w", doc.Tournament.ID, err)
	}
	return a.uploader.Upload(ctx, a.Key(doc.Tournament), "application/json", bytes.NewReader(body))
}
