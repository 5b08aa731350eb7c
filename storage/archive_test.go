package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
)

func TestArchiveKeyUsesSlug(t *testing.T) {
	a := NewStandingsArchive(NewMemoryUploader())
	assert.Equal(t, "archives/grand-tournoi-ete-t1/standings.json",
		a.Key(&models.Tournament{ID: "t1", Name: "Grand Tournoi Été"}))
	assert.Equal(t, "archives/tournament-t2/standings.json", a.Key(&models.Tournament{ID: "t2", Name: "!!!"}))
}

func TestArchiveStoresJSON(t *testing.T) {
	up := NewMemoryUploader()
	a := NewStandingsArchive(up)
	doc := ArchiveDocument{
		Tournament: &models.Tournament{ID: "t1", Name: "Spring Open", State: models.StateFinished},
		Standings:  []models.StandingRow{{Rank: 1, ParticipantID: "a", TournamentPoints: 20}},
	}

	res, err := a.Store(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "archives/spring-open-t1/standings.json", res.Key)
	assert.Equal(t, "memory://archives/spring-open-t1/standings.json", res.Location)

	body, contentType, ok := up.Object(res.Key)
	require.True(t, ok)
	assert.Equal(t, "application/json", contentType)

	var decoded ArchiveDocument
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "t1", decoded.Tournament.ID)
	require.Len(t, decoded.Standings, 1)
	assert.Equal(t, 20, decoded.Standings[0].TournamentPoints)
	assert.False(t, decoded.ArchivedAt.IsZero())
}

func TestArchiveRequiresTournament(t *testing.T) {
	_, err := NewStandingsArchive(NewMemoryUploader()).Store(context.Background(), ArchiveDocument{})
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/archives/x.json", publicURL("https://cdn.example.com", "archives/x.json"))
	assert.Equal(t, "https://cdn.example.com/base/archives/x.json", publicURL("https://cdn.example.com/base/", "/archives/x.json"))
	assert.Equal(t, "", publicURL("", "k"))
}

func TestR2ConfigValidation(t *testing.T) {
	var empty CloudflareR2UploaderConfig
	assert.False(t, empty.Enabled())

	partial := CloudflareR2UploaderConfig{AccountID: "acc"}
	assert.True(t, partial.Enabled())
	assert.Error(t, partial.Validate())

	full := CloudflareR2UploaderConfig{
		AccountID: "acc", AccessKeyID: "key", SecretAccessKey: "secret",
		BucketName: "bucket", PublicBaseURL: "https://cdn.example.com",
	}
	assert.NoError(t, full.Validate())
}

func TestNewArchiveUploader(t *testing.T) {
	ctx := context.Background()

	up, err := NewArchiveUploader(ctx, CloudflareR2UploaderConfig{}, false)
	require.NoError(t, err)
	assert.Nil(t, up)

	up, err = NewArchiveUploader(ctx, CloudflareR2UploaderConfig{}, true)
	require.NoError(t, err)
	assert.IsType(t, &MemoryUploader{}, up)

	_, err = NewArchiveUploader(ctx, CloudflareR2UploaderConfig{AccountID: "acc"}, true)
	assert.Error(t, err, "partial R2 settings never fall back silently")
}
