package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aluiziolira/wishlist-watch/models"
)

func sampleBooks() []models.Book {
	return []models.Book{
		models.NewDiscountedBook("The Dispossessed", "Ursula K. Le Guin", "$12.99", "Save 28%"),
		models.NewBook("Solaris", "Stanisław Lem", "£15.00"),
		models.NewBook("Solaris", "Stanisław Lem", "£14.00"),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wishlist.json")
	snapshot := NewSnapshot(path, zap.NewNop())

	books := sampleBooks()
	require.NoError(t, snapshot.Save(books))

	loaded := snapshot.Load()
	if diff := cmp.Diff(books, loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotSaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "nested", "wishlist.json")
	snapshot := NewSnapshot(path, nil)

	require.NoError(t, snapshot.Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Empty(t, snapshot.Load())
}

func TestSnapshotSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wishlist.json")
	snapshot := NewSnapshot(path, nil)

	require.NoError(t, snapshot.Save(sampleBooks()))
	replacement := []models.Book{models.NewBook("Dune", "Frank Herbert", "$9.99")}
	require.NoError(t, snapshot.Save(replacement))

	assert.Equal(t, replacement, snapshot.Load())
}

func TestSnapshotSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	snapshot := NewSnapshot(filepath.Join(blocker, "wishlist.json"), nil)
	err := snapshot.Save(sampleBooks())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write snapshot")
}

func TestSnapshotFailedSaveKeepsPrevious(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "wishlist.json")
	snapshot := NewSnapshot(path, nil)

	previous := sampleBooks()
	require.NoError(t, snapshot.Save(previous))

	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	replacement := []models.Book{models.NewBook("Dune", "Frank Herbert", "$9.99")}
	require.Error(t, snapshot.Save(replacement))

	if diff := cmp.Diff(previous, snapshot.Load()); diff != "" {
		t.Fatalf("snapshot changed after failed save (-want +got):\n%s", diff)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.Equal(t, []string{"wishlist.json"}, names)
}

func TestWritesCreateWorldReadableFiles(t *testing.T) {
	dir := t.TempDir()
	snapshotPath := filepath.Join(dir, "wishlist.json")
	rawPath := filepath.Join(dir, "wishlist.html")
	csvPath := filepath.Join(dir, "wishlist.csv")

	require.NoError(t, NewSnapshot(snapshotPath, nil).Save(sampleBooks()))
	require.NoError(t, SaveRaw(rawPath, "<html></html>"))
	require.NoError(t, ExportCSV(csvPath, sampleBooks()))

	for _, path := range []string{snapshotPath, rawPath, csvPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), path)
	}
}

func TestSaveKeepsExistingMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wishlist.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))
	require.NoError(t, os.Chmod(path, 0o600))

	require.NoError(t, NewSnapshot(path, nil).Save(sampleBooks()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSnapshotLoadMissingFile(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	snapshot := NewSnapshot(filepath.Join(t.TempDir(), "absent.json"), zap.New(core))

	books := snapshot.Load()
	assert.NotNil(t, books)
	assert.Empty(t, books)
	assert.Zero(t, logs.Len(), "a first run should not warn")
}

func TestSnapshotLoadRecoversFromBadContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "<html>oops</html>"},
		{name: "truncated", content: `[{"title":"Dune","author":"Frank`},
		{name: "wrong shape", content: `{"title":"Dune"}`},
		{name: "record missing price", content: `[{"title":"Dune","author":"Frank Herbert","current_price":"","discount_percentage":null}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "wishlist.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			core, logs := observer.New(zapcore.WarnLevel)
			books := NewSnapshot(path, zap.New(core)).Load()

			assert.NotNil(t, books)
			assert.Empty(t, books)
			assert.Equal(t, 1, logs.Len())
		})
	}
}

func TestSnapshotLoadNullIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wishlist.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o600))

	books := NewSnapshot(path, nil).Load()
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestSnapshotLoadLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wishlist.json")
	legacy := `[{"title":"Solaris","author":"Stanisław Lem","current_price":"$15.00","discount_percentage":null},` +
		`{"title":"Dune","author":"Frank Herbert","current_price":"$7.99","discount_percentage":"Save 20%"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	expected := []models.Book{
		models.NewBook("Solaris", "Stanisław Lem", "$15.00"),
		models.NewDiscountedBook("Dune", "Frank Herbert", "$7.99", "Save 20%"),
	}
	assert.Equal(t, expected, NewSnapshot(path, nil).Load())
}

func TestSaveRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw", "wishlist.html")
	markup := "<html><body> wishlist</body></html>"

	require.NoError(t, SaveRaw(path, markup))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, markup, string(data))
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wishlist.csv")
	require.NoError(t, ExportCSV(path, sampleBooks()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"title", "author", "current_price", "discount"}, records[0])
	assert.Equal(t, []string{"The Dispossessed", "Ursula K. Le Guin", "$12.99", "Save 28%"}, records[1])
	assert.Equal(t, "", records[2][3])
}
