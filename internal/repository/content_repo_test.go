package repository

import (
	"testing"

	"github.com/sitewise-ai/sitewise/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func urlSource(name, origin string) *domain.ContentSource {
	return &domain.ContentSource{
		Name:       name,
		SourceType: domain.SourceTypeURL,
		Origin:     origin,
	}
}

func TestContentSourceLifecycle(t *testing.T) {
	repo := NewContentRepository(testDB(t))

	s := urlSource("Example Docs", "https://example.com/docs")
	require.NoError(t, repo.Create(s))
	require.NotEmpty(t, s.ID)
	assert.Equal(t, domain.SourceStatusPending, s.Status)

	require.NoError(t, repo.SetStatus(s.ID, domain.SourceStatusProcessing, "", ""))
	require.NoError(t, repo.SetStatus(s.ID, domain.SourceStatusCompleted, "Extracted page text.", ""))

	got, err := repo.Get(s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.SourceStatusCompleted, got.Status)
	assert.Equal(t, "Extracted page text.", got.Content)
	assert.Empty(t, got.Error)
}

func TestContentSourceFailureKeepsError(t *testing.T) {
	repo := NewContentRepository(testDB(t))

	s := urlSource("Broken", "https://example.com/404")
	require.NoError(t, repo.Create(s))
	require.NoError(t, repo.SetStatus(s.ID, domain.SourceStatusFailed, "", "fetch failed: status 404"))

	got, err := repo.Get(s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.SourceStatusFailed, got.Status)
	assert.Equal(t, "fetch failed: status 404", got.Error)
}

func TestListCompletedFiltersAndLimits(t *testing.T) {
	repo := NewContentRepository(testDB(t))

	for i, tc := range []struct {
		name    string
		status  string
		content string
	}{
		{"first", domain.SourceStatusCompleted, "first content"},
		{"empty-completed", domain.SourceStatusCompleted, ""},
		{"pending", domain.SourceStatusPending, ""},
		{"second", domain.SourceStatusCompleted, "second content"},
		{"third", domain.SourceStatusCompleted, "third content"},
	} {
		s := urlSource(tc.name, "https://example.com/"+tc.name)
		require.NoError(t, repo.Create(s), "source %d", i)
		if tc.status != domain.SourceStatusPending {
			require.NoError(t, repo.SetStatus(s.ID, tc.status, tc.content, ""))
		}
	}

	got, err := repo.ListCompleted(2)
	require.NoError(t, err)
	require.Len(t, got, 2, "limit applies after filtering")
	assert.Equal(t, "first", got[0].Name, "oldest completed source first")
	assert.Equal(t, "second", got[1].Name)
}

func TestContentCounts(t *testing.T) {
	repo := NewContentRepository(testDB(t))

	done := urlSource("done", "https://example.com/a")
	require.NoError(t, repo.Create(done))
	require.NoError(t, repo.SetStatus(done.ID, domain.SourceStatusCompleted, "text", ""))

	require.NoError(t, repo.Create(urlSource("waiting", "https://example.com/b")))

	working := urlSource("working", "https://example.com/c")
	require.NoError(t, repo.Create(working))
	require.NoError(t, repo.SetStatus(working.ID, domain.SourceStatusProcessing, "", ""))

	failed := urlSource("failed", "https://example.com/d")
	require.NoError(t, repo.Create(failed))
	require.NoError(t, repo.SetStatus(failed.ID, domain.SourceStatusFailed, "", "boom"))

	total, completed, pending, err := repo.Counts()
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 2, pending, "pending covers pending and processing")
}

func TestContentDelete(t *testing.T) {
	repo := NewContentRepository(testDB(t))

	s := urlSource("gone", "https://example.com/gone")
	require.NoError(t, repo.Create(s))
	require.NoError(t, repo.Delete(s.ID))
	assert.Error(t, repo.Delete(s.ID))

	got, err := repo.Get(s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
