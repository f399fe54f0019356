// Package catalog owns the fetch, filter, paginate and mutate lifecycle of the
// signed-in user's file collection. The Controller is the single source of
// truth for the visible page.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/cloudvault/internal/client/auth"
	"github.com/dmitrijs2005/cloudvault/internal/client/client"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/store"
	"github.com/dmitrijs2005/cloudvault/internal/filex"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
)

// SessionSource yields the identity every request is scoped by.
type SessionSource interface {
	Current() *models.Session
}

// StateSink receives quota and file counts after each successful refresh.
type StateSink interface {
	Dispatch(ctx context.Context, a store.Action) store.State
}

// Query is the active listing scope.
type Query struct {
	Filter   models.Filter
	Search   string
	Page     int
	PageSize int
}

type Controller struct {
	api      client.Client
	session  SessionSource
	sink     StateSink
	notifier Notifier
	validate *validator.Validate
	logger   logging.Logger

	// publishMu orders applying a response and pushing its quota against
	// Invalidate.
	publishMu sync.Mutex

	mu    sync.Mutex
	query Query
	page  models.CatalogPage
	quota models.QuotaState
	// seq is the last issued refresh, gen changes on Invalidate and version on
	// every replacement of page.
	seq     uint64
	gen     uint64
	version uint64
}

type Option func(*Controller)

func WithStateSink(s StateSink) Option {
	return func(c *Controller) { c.sink = s }
}

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.query.PageSize = n
		}
	}
}

func NewController(api client.Client, session SessionSource, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		session:  session,
		notifier: discard{},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logging.Nop(),
		query:    Query{Filter: models.FilterAll, Page: 1, PageSize: models.DefaultPageSize},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "catalog")
	return c
}

// Classify is the extension table shared with upload preparation and record
// transformation.
func Classify(fileName string) models.DerivedType { return models.Classify(fileName) }

func FormatSize(bytes int64) string { return models.FormatSize(bytes) }

func (c *Controller) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Page returns a copy of the visible page.
func (c *Controller) Page() models.CatalogPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.Clone()
}

func (c *Controller) Quota() models.QuotaState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quota
}

// Find looks a record up on the visible page.
func (c *Controller) Find(id string) (models.FileRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.page.IndexOf(id); i >= 0 {
		return c.page.Items[i], true
	}
	return models.FileRecord{}, false
}

// Refresh fetches the page for the active query. On success page and quota
// are replaced together. On failure the previous page stays and the error is
// reported. A response overtaken by a newer Refresh or by Invalidate is
// dropped with ErrStaleResponse.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.refresh(ctx, true)
}

func (c *Controller) refresh(ctx context.Context, reconcile bool) error {
	// gen is taken before the session so an identity change in between is seen
	c.mu.Lock()
	c.seq++
	seq, gen, q := c.seq, c.gen, c.query
	c.mu.Unlock()

	sess := c.session.Current()
	if sess == nil {
		return auth.ErrNotSignedIn
	}

	resp, err := c.api.ListFiles(ctx, client.ListFilesRequest{
		UserEmail: sess.Email,
		Filter:    q.Filter,
		Search:    q.Search,
		Page:      q.Page,
		Limit:     q.PageSize,
	})

	c.publishMu.Lock()
	cur := c.session.Current()
	c.mu.Lock()
	if seq != c.seq || gen != c.gen || !sameIdentity(sess, cur) {
		c.mu.Unlock()
		c.publishMu.Unlock()
		c.logger.Debug(ctx, "dropping stale catalog response", "seq", seq)
		return ErrStaleResponse
	}
	if err != nil {
		c.mu.Unlock()
		c.publishMu.Unlock()
		c.logger.Warn(ctx, "catalog refresh failed", "error", err)
		c.notify(LevelError, "Failed to load files")
		return fmt.Errorf("refresh: %w", err)
	}

	page, quota := resp.Page(q.Page)
	// the last item of a trailing page went away: step back to the new last page
	if reconcile && len(page.Items) == 0 && q.Page > page.TotalPages {
		c.query.Page = page.TotalPages
		c.mu.Unlock()
		c.publishMu.Unlock()
		return c.refresh(ctx, false)
	}
	c.page, c.quota = page, quota
	c.version++
	c.mu.Unlock()

	// Invalidate waits on publishMu, so the quota lands before any reset
	if c.sink != nil {
		c.sink.Dispatch(ctx, store.QuotaUpdated{Quota: quota, TotalFiles: page.TotalCount})
	}
	c.publishMu.Unlock()
	return nil
}

func sameIdentity(a, b *models.Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.UserID == b.UserID && a.Email == b.Email
}

// SetFilter switches the type filter, resets to page 1 and refreshes once.
func (c *Controller) SetFilter(ctx context.Context, f models.Filter) error {
	c.mu.Lock()
	c.query.Filter = f
	c.query.Page = 1
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// SetSearch sets the name/description search term, resets to page 1 and
// refreshes once.
func (c *Controller) SetSearch(ctx context.Context, term string) error {
	c.mu.Lock()
	c.query.Search = strings.TrimSpace(term)
	c.query.Page = 1
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// SetPage moves to page n. Pages outside 1..TotalPages are ignored and report
// false.
func (c *Controller) SetPage(ctx context.Context, n int) (bool, error) {
	c.mu.Lock()
	total := c.page.TotalPages
	if total < 1 {
		total = 1
	}
	if n < 1 || n > total {
		c.mu.Unlock()
		return false, nil
	}
	c.query.Page = n
	c.mu.Unlock()
	return true, c.Refresh(ctx)
}

func (c *Controller) Next(ctx context.Context) (bool, error) {
	return c.SetPage(ctx, c.Query().Page+1)
}

func (c *Controller) Prev(ctx context.Context) (bool, error) {
	return c.SetPage(ctx, c.Query().Page-1)
}

// Invalidate drops the page and every in-flight response. It is called when
// the identity changes.
func (c *Controller) Invalidate() {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.version++
	c.page = models.CatalogPage{}
	c.quota = models.QuotaState{}
	c.query = Query{Filter: models.FilterAll, Page: 1, PageSize: c.query.PageSize}
}

// Upload validates the draft, sends it as one multipart request and refreshes
// the active query on success. Concurrent uploads are independent.
func (c *Controller) Upload(ctx context.Context, d models.UploadDraft) error {
	sess := c.session.Current()
	if sess == nil {
		return auth.ErrNotSignedIn
	}
	if err := c.validateDraft(d); err != nil {
		c.notify(LevelError, "Please select a file and add a description.")
		return err
	}

	f, err := os.Open(d.LocalPath)
	if err != nil {
		c.notify(LevelError, "Upload failed")
		return fmt.Errorf("open upload source: %w", err)
	}
	defer f.Close()

	name := d.Name
	err = c.api.Upload(ctx, client.UploadRequest{
		File:        f,
		FileName:    filepath.Base(d.LocalPath),
		Name:        name,
		Type:        Classify(name),
		Description: strings.TrimSpace(d.Description),
		Tags:        d.Tags,
		UserEmail:   sess.Email,
	})
	if err != nil {
		c.logger.Warn(ctx, "upload failed", "name", name, "error", err)
		c.notify(LevelError, client.UserMessage(err, "Upload failed"))
		return fmt.Errorf("upload: %w", err)
	}

	c.logger.Info(ctx, "file uploaded", "name", name, "size", d.SizeBytes)
	c.notify(LevelSuccess, "File uploaded successfully!")
	return c.reconcile(ctx)
}

func (c *Controller) validateDraft(d models.UploadDraft) error {
	d.Description = strings.TrimSpace(d.Description)
	if err := c.validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Remove deletes a file. The record disappears from the visible page at once.
// If the backend rejects the delete the previous page is restored, unless a
// newer page has landed in the meantime. A 404 means the file is already gone
// and counts as success. Confirmation is the caller's job.
func (c *Controller) Remove(ctx context.Context, id string) error {
	sess := c.session.Current()
	if sess == nil {
		return auth.ErrNotSignedIn
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: file id is required", ErrValidation)
	}

	c.mu.Lock()
	prev := c.page.Clone()
	if i := c.page.IndexOf(id); i >= 0 {
		next := c.page.Clone()
		next.Items = append(next.Items[:i], next.Items[i+1:]...)
		next.TotalCount--
		c.page = next
	}
	c.version++
	optimistic := c.version
	c.mu.Unlock()

	err := c.api.DeleteFile(ctx, id, sess.Email)
	if err != nil && !errors.Is(err, client.ErrNotFound) {
		c.mu.Lock()
		if c.version == optimistic {
			c.page = prev
			c.version++
		}
		c.mu.Unlock()

		c.logger.Warn(ctx, "delete failed", "id", id, "error", err)
		if errors.Is(err, client.ErrUnavailable) {
			c.notify(LevelError, "Delete failed. Please check your connection and try again.")
		} else {
			c.notify(LevelError, "Delete failed: "+client.UserMessage(err, "Please try again."))
		}
		return fmt.Errorf("delete %s: %w", id, err)
	}

	c.notify(LevelSuccess, "File deleted successfully!")
	return c.reconcile(ctx)
}

// reconcile refreshes after a mutation. Being overtaken is fine here.
func (c *Controller) reconcile(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrStaleResponse) {
		return err
	}
	return nil
}

// Download saves the bytes behind rec.URL into dir and returns the written
// path. Existing files are never overwritten. There is no retry.
func (c *Controller) Download(ctx context.Context, rec models.FileRecord, dir string) (string, error) {
	if rec.URL == "" {
		c.notify(LevelError, "Download URL not available")
		return "", ErrNoURL
	}

	body, err := c.api.Fetch(ctx, rec.URL)
	if err != nil {
		c.logger.Warn(ctx, "download failed", "id", rec.ID, "error", err)
		c.notify(LevelError, "Unable to download file")
		return "", fmt.Errorf("download %s: %w", rec.ID, err)
	}
	defer body.Close()

	if dir, err = filex.EnsureSubdDir(dir); err != nil {
		c.notify(LevelError, "Unable to download file")
		return "", err
	}
	path := filex.UniquePath(dir, rec.DisplayName())
	n, err := filex.WriteAtomic(path, body)
	if err != nil {
		c.notify(LevelError, "Unable to download file")
		return "", fmt.Errorf("save %s: %w", rec.ID, err)
	}

	c.logger.Info(ctx, "file downloaded", "id", rec.ID, "path", path, "bytes", n)
	c.notify(LevelSuccess, "Saved "+filepath.Base(path))
	return path, nil
}

func (c *Controller) notify(l Level, msg string) {
	c.notifier.Notify(Notification{Level: l, Message: msg})
}
