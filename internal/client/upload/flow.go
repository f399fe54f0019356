// Package upload holds the unsaved upload draft while the user edits it and
// hands it to the catalog for submission.
package upload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/filex"
)

var (
	ErrNoDraft        = errors.New("no file selected")
	ErrUploadInFlight = errors.New("an upload is already in progress")
)

// Submitter is the catalog side of an upload.
type Submitter interface {
	Upload(ctx context.Context, d models.UploadDraft) error
}

// Flow guards a single draft. The draft is discarded on successful submit or
// Cancel and kept on rejection so the user can correct it.
type Flow struct {
	submitter Submitter

	mu       sync.Mutex
	draft    *models.UploadDraft
	inFlight bool
}

func NewFlow(s Submitter) *Flow {
	return &Flow{submitter: s}
}

// Select starts a new draft for the local file at path, replacing any
// previous draft.
func (f *Flow) Select(path string) (models.UploadDraft, error) {
	fi, err := filex.StatRegular(path)
	if err != nil {
		return models.UploadDraft{}, fmt.Errorf("select %s: %w", path, err)
	}
	name := filepath.Base(path)
	d := models.UploadDraft{
		LocalPath:   path,
		Name:        name,
		DerivedType: models.Classify(name),
		SizeBytes:   fi.Size(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = &d
	return d, nil
}

func (f *Flow) Draft() (models.UploadDraft, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return models.UploadDraft{}, false
	}
	return *f.draft, true
}

func (f *Flow) SetDescription(desc string) error {
	return f.edit(func(d *models.UploadDraft) { d.Description = desc })
}

// SetTags stores the raw comma-separated tags. They are parsed on submit.
func (f *Flow) SetTags(raw string) error {
	return f.edit(func(d *models.UploadDraft) { d.Tags = raw })
}

func (f *Flow) edit(fn func(d *models.UploadDraft)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return ErrNoDraft
	}
	fn(f.draft)
	return nil
}

// InFlight reports whether a submission is running. The UI disables the
// submit trigger while it is true.
func (f *Flow) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Submit sends the current draft. A second Submit while one is running fails
// with ErrUploadInFlight.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.draft == nil {
		f.mu.Unlock()
		return ErrNoDraft
	}
	if f.inFlight {
		f.mu.Unlock()
		return ErrUploadInFlight
	}
	f.inFlight = true
	submitted := f.draft
	d := *submitted
	f.mu.Unlock()

	err := f.submitter.Upload(ctx, d)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	// a Select during the upload started a new draft that must survive
	if err == nil && f.draft == submitted {
		f.draft = nil
	}
	return err
}

func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = nil
}
