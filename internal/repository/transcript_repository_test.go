package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ipk-calculator/internal/models"
	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
	"github.com/noah-isme/ipk-calculator/pkg/storage"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewFileStore(files)
}

func TestTranscriptRepositoryLoadMissing(t *testing.T) {
	repo := NewTranscriptRepository(newFileStore(t), "")

	transcript, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, transcript)
}

func TestTranscriptRepositoryRoundTrip(t *testing.T) {
	repo := NewTranscriptRepository(newFileStore(t), "")
	ctx := context.Background()

	transcript := models.NewTranscript()
	sem := transcript.AddSemester()
	course, err := models.NewCourse("Kalkulus", 3, models.GradeA)
	require.NoError(t, err)
	sem.AddCourse(course)
	sem.Annotate("first term", []string{"core"}, "start early")

	require.NoError(t, repo.Save(ctx, transcript))

	loaded, found, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, loaded.Semesters, 1)
	assert.Equal(t, sem.ID, loaded.Semesters[0].ID)
	assert.Equal(t, models.Average(4), loaded.Semesters[0].IP)
	assert.Equal(t, []string{"core"}, loaded.Semesters[0].Tags)
	assert.Equal(t, course, loaded.Semesters[0].Courses[0])
}

func TestTranscriptRepositoryLoadsBrowserSnapshot(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()
	legacy := `[{"id":1700000000000,"number":4,"courses":[
		{"id":1700000000001,"name":"Basis Data","sks":3,"grade":4,"gradeLetter":"A"},
		{"id":1700000000002,"name":"Statistika","sks":3,"grade":3,"gradeLetter":"?"}
	],"ip":"9.99","totalSKS":1},
	{"id":1700000000100,"number":7,"courses":[],"ip":0,"totalSKS":0}]`
	require.NoError(t, store.Put(ctx, DefaultTranscriptKey, []byte(legacy)))

	transcript, found, err := NewTranscriptRepository(store, "").Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, transcript.Semesters, 2)

	first := transcript.Semesters[0]
	assert.Equal(t, models.ID("1700000000000"), first.ID)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, models.Average(3.5), first.IP)
	assert.Equal(t, 6, first.TotalSKS)
	assert.Equal(t, "B", first.Courses[1].GradeLetter)
	assert.Equal(t, 2, transcript.Semesters[1].Number)
}

func TestTranscriptRepositoryRejectsCorruptSnapshot(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, DefaultTranscriptKey, []byte(`{not json`)))

	_, _, err := NewTranscriptRepository(store, "").Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStorage)
}

func TestAchievementRepositoryRoundTrip(t *testing.T) {
	repo := NewAchievementRepository(newFileStore(t), "")
	ctx := context.Background()

	ids, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.Save(ctx, []string{"cum_laude"}))
	ids, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cum_laude"}, ids)
}

func TestFileStoreKeySanitising(t *testing.T) {
	assert.Equal(t, "a_b.json", fileName("a/b"))
	assert.Equal(t, "ipk_semesters.json", fileName("ipk_semesters"))
}
