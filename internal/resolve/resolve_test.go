package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/blogpipe/internal/model"
	"github.com/sells-group/blogpipe/internal/storage"
)

func TestParseFolderName_Valid(t *testing.T) {
	folder, err := ParseFolderName("20260214_스시로쿠")
	require.NoError(t, err)
	assert.Equal(t, "20260214", folder.VisitDate)
	assert.Equal(t, "스시로쿠", folder.RestaurantName)
	assert.Equal(t, "20260214_스시로쿠", folder.FolderName)
}

func TestParseFolderName_NormalizesNFD(t *testing.T) {
	decomposed := norm.NFD.String("20260214_스시로쿠")
	folder, err := ParseFolderName(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "스시로쿠", folder.RestaurantName)
}

func TestParseFolderName_Invalid(t *testing.T) {
	cases := []string{
		"2026-02-14_스시로쿠",
		"20260214",
		"not_a_date_식당",
		"20260230_잘못된날짜", // February 30th
		"20261332_식당",    // month 13
		"20260214_   ",
	}
	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFolderName(name)
			assert.Error(t, err)
		})
	}
}

func TestListVisitFolders_SkipsNonMatching(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, dir := range []string{"20260210_가게A", "20260214_가게B", "notes", "20260230_bad"} {
		require.NoError(t, fs.MkdirAll("/in/"+dir, 0o755))
	}
	require.NoError(t, afero.WriteFile(fs, "/in/20260101_file.txt", []byte("x"), 0o644))

	folders, err := ListVisitFolders(context.Background(), storage.NewLocal(fs), "/in")
	require.NoError(t, err)
	require.Len(t, folders, 2)

	names := []string{folders[0].FolderName, folders[1].FolderName}
	assert.ElementsMatch(t, []string{"20260210_가게A", "20260214_가게B"}, names)
	for _, f := range folders {
		assert.NotEmpty(t, f.SourceID)
	}
}

func foldersFromNames(t *testing.T, names ...string) []model.VisitFolder {
	t.Helper()
	folders := make([]model.VisitFolder, 0, len(names))
	for _, name := range names {
		folder, err := ParseFolderName(name)
		require.NoError(t, err)
		folders = append(folders, folder)
	}
	return folders
}

func TestSelectLatest_OrdersByDateDescending(t *testing.T) {
	folders := foldersFromNames(t, "20260210_가게A", "20260214_가게B", "20260211_가게C")

	selected, err := SelectLatest(folders, 2)
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "20260214_가게B", selected[0].FolderName)
	assert.Equal(t, "20260211_가게C", selected[1].FolderName)
}

func TestSelectLatest_NoCandidates(t *testing.T) {
	_, err := SelectLatest(nil, 1)
	assert.True(t, errors.Is(err, ErrNoVisitFolders))
}

func TestSelectLatest_CountExceedsMatches(t *testing.T) {
	_, err := SelectLatest(foldersFromNames(t, "20260210_가게A"), 3)
	assert.True(t, errors.Is(err, ErrNotEnoughFolders))
}

func TestSelectLatest_InvalidCount(t *testing.T) {
	_, err := SelectLatest(foldersFromNames(t, "20260210_가게A"), 0)
	assert.Error(t, err)
}
