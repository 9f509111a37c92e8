package dataset

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/internal/config"
	"datalens/internal/errors"
)

type fakeRepo struct {
	byID map[core.ID]*dataset.Dataset
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[core.ID]*dataset.Dataset)}
}

func (f *fakeRepo) Create(_ context.Context, ds *dataset.Dataset) error {
	f.byID[ds.ID] = ds
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id core.ID) (*dataset.Dataset, error) {
	if ds, ok := f.byID[id]; ok {
		return ds, nil
	}
	return nil, errors.NotFound("dataset")
}

func (f *fakeRepo) ListByUser(_ context.Context, userID core.ID, _, _ int) ([]*dataset.Dataset, error) {
	return f.listFor(userID), nil
}

func (f *fakeRepo) ListAllByUser(_ context.Context, userID core.ID) ([]*dataset.Dataset, error) {
	return f.listFor(userID), nil
}

func (f *fakeRepo) listFor(userID core.ID) []*dataset.Dataset {
	var out []*dataset.Dataset
	for _, ds := range f.byID {
		if ds.UserID == userID {
			out = append(out, ds)
		}
	}
	return out
}

func (f *fakeRepo) UpdateFilename(_ context.Context, id core.ID, filename string) error {
	f.byID[id].Filename = filename
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id core.ID) error {
	delete(f.byID, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := NewLocalFileStorage(config.UploadConfig{
		Dir:               dir,
		MaxFileSize:       1024,
		AllowedExtensions: []string{".csv", ".json"},
	})
	require.NoError(t, err)
	repo := newFakeRepo()
	return NewService(repo, storage), repo, dir
}

const sampleCSV = "name,amount\nalice,10\nbob,20\ncarol,30\n"

func TestUpload_ParsesAndRecordsCounts(t *testing.T) {
	svc, repo, dir := newTestService(t)
	userID := core.NewID()

	ds, err := svc.Upload(context.Background(), userID, "sales.csv", int64(len(sampleCSV)), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, "sales.csv", ds.Filename)
	assert.Equal(t, dataset.FormatCSV, ds.FileType)
	assert.Equal(t, 3, ds.RowCount)
	assert.Equal(t, 2, ds.ColumnCount)
	assert.Contains(t, repo.byID, ds.ID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpload_RejectsDisallowedExtension(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Upload(context.Background(), core.NewID(), "report.pdf", 10, strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidFileType))
}

func TestUpload_RejectsOversizedStream(t *testing.T) {
	svc, _, dir := newTestService(t)
	big := "x\n" + strings.Repeat("1\n", 2000)

	// Declared size lies; the stream itself exceeds the cap.
	_, err := svc.Upload(context.Background(), core.NewID(), "big.csv", 10, strings.NewReader(big))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeFileTooLarge))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_UnparseableFileCleanedUp(t *testing.T) {
	svc, repo, dir := newTestService(t)

	_, err := svc.Upload(context.Background(), core.NewID(), "data.json", 4, strings.NewReader(`".."`))
	require.Error(t, err)
	assert.Empty(t, repo.byID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolve_OwnershipEnforced(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := core.NewID()

	ds, err := svc.Upload(ctx, owner, "sales.csv", int64(len(sampleCSV)), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, ds.ID, owner)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, ds.ID, core.NewID())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeForbidden))

	_, err = svc.Resolve(ctx, core.NewID(), owner)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestRename_RejectsEmptyName(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := core.NewID()

	ds, err := svc.Upload(ctx, owner, "sales.csv", int64(len(sampleCSV)), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, ds.ID, owner, "q1-sales.csv")
	require.NoError(t, err)
	assert.Equal(t, "q1-sales.csv", renamed.Filename)

	_, err = svc.Rename(ctx, ds.ID, owner, "   ")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeValidationError))
}

func TestDelete_RemovesFileAndRow(t *testing.T) {
	svc, repo, dir := newTestService(t)
	ctx := context.Background()
	owner := core.NewID()

	ds, err := svc.Upload(ctx, owner, "sales.csv", int64(len(sampleCSV)), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ds.ID, owner))
	assert.Empty(t, repo.byID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPreview_BoundedRows(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := core.NewID()

	ds, err := svc.Upload(ctx, owner, "sales.csv", int64(len(sampleCSV)), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	preview, err := svc.Preview(ctx, ds.ID, owner, 2)
	require.NoError(t, err)

	rows := preview["rows"].([]map[string]interface{})
	assert.Len(t, rows, 2)
	assert.Equal(t, 3, preview["total_rows"])
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, 10.0, rows[0]["amount"])

	// Asking for more rows than exist returns them all.
	preview, err = svc.Preview(ctx, ds.ID, owner, 50)
	require.NoError(t, err)
	assert.Len(t, preview["rows"].([]map[string]interface{}), 3)
}
