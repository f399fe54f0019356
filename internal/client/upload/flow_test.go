package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cloudvault/internal/client/catalog"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/filex"
)

type fakeSubmitter struct {
	got     []models.UploadDraft
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeSubmitter) Upload(ctx context.Context, d models.UploadDraft) error {
	f.got = append(f.got, d)
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	return f.err
}

func tempFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestSelect_BuildsDraft(t *testing.T) {
	f := NewFlow(&fakeSubmitter{})
	p := tempFile(t, "Scan.PDF", "12345")

	d, err := f.Select(p)
	require.NoError(t, err)
	assert.Equal(t, models.UploadDraft{LocalPath: p, Name: "Scan.PDF", DerivedType: models.TypePDF, SizeBytes: 5}, d)

	got, ok := f.Draft()
	require.True(t, ok)
	assert.Equal(t, d, got)
}

func TestSelect_Rejects(t *testing.T) {
	f := NewFlow(&fakeSubmitter{})

	_, err := f.Select(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = f.Select(t.TempDir())
	require.ErrorIs(t, err, filex.ErrNotRegularFile)

	_, ok := f.Draft()
	assert.False(t, ok)
}

func TestEditWithoutDraft(t *testing.T) {
	f := NewFlow(&fakeSubmitter{})
	require.ErrorIs(t, f.SetDescription("x"), ErrNoDraft)
	require.ErrorIs(t, f.SetTags("x"), ErrNoDraft)
	require.ErrorIs(t, f.Submit(context.Background()), ErrNoDraft)
}

func TestSubmit_SuccessDiscardsDraft(t *testing.T) {
	s := &fakeSubmitter{}
	f := NewFlow(s)
	_, err := f.Select(tempFile(t, "notes.txt", "hi"))
	require.NoError(t, err)
	require.NoError(t, f.SetDescription("my notes"))
	require.NoError(t, f.SetTags("a, b"))

	require.NoError(t, f.Submit(context.Background()))

	require.Len(t, s.got, 1)
	assert.Equal(t, "my notes", s.got[0].Description)
	assert.Equal(t, []string{"a", "b"}, s.got[0].ParsedTags())
	_, ok := f.Draft()
	assert.False(t, ok)
	assert.False(t, f.InFlight())
}

func TestSubmit_RejectionKeepsDraft(t *testing.T) {
	s := &fakeSubmitter{err: catalog.ErrValidation}
	f := NewFlow(s)
	_, err := f.Select(tempFile(t, "notes.txt", "hi"))
	require.NoError(t, err)

	require.ErrorIs(t, f.Submit(context.Background()), catalog.ErrValidation)
	_, ok := f.Draft()
	require.True(t, ok, "draft survives so the user can fix it")

	s.err = nil
	require.NoError(t, f.SetDescription("now described"))
	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, "now described", s.got[1].Description)
}

func TestSubmit_InFlightGuard(t *testing.T) {
	s := &fakeSubmitter{block: make(chan struct{}), entered: make(chan struct{})}
	f := NewFlow(s)
	_, err := f.Select(tempFile(t, "a.txt", "x"))
	require.NoError(t, err)
	require.NoError(t, f.SetDescription("d"))

	errc := make(chan error, 1)
	go func() { errc <- f.Submit(context.Background()) }()
	<-s.entered

	assert.True(t, f.InFlight())
	require.ErrorIs(t, f.Submit(context.Background()), ErrUploadInFlight)

	close(s.block)
	require.NoError(t, <-errc)
	assert.False(t, f.InFlight())
	assert.Len(t, s.got, 1)
}

func TestCancel(t *testing.T) {
	f := NewFlow(&fakeSubmitter{err: errors.New("never called")})
	_, err := f.Select(tempFile(t, "a.txt", "x"))
	require.NoError(t, err)

	f.Cancel()
	_, ok := f.Draft()
	assert.False(t, ok)
}
