package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/cloudvault/internal/client/client"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/store"
)

// fakeBackend is an in-memory backend with server-side filtering, search and
// pagination.
type fakeBackend struct {
	mu    sync.Mutex
	files []client.FileDTO
	limit int64

	listErr   error
	uploadErr error
	deleteErr error
	fetchBody string
	fetchErr  error

	// listHook runs before a listing is served, outside the lock.
	listHook func(r client.ListFilesRequest)

	listCalls []client.ListFilesRequest
	uploads   []client.UploadRequest
	uploaded  []string
	deletes   []string
	fetched   []string
}

func newBackend(n int) *fakeBackend {
	b := &fakeBackend{limit: 1 << 30}
	for i := 1; i <= n; i++ {
		b.files = append(b.files, client.FileDTO{
			ID:          fmt.Sprintf("f%02d", i),
			Name:        fmt.Sprintf("file%02d.txt", i),
			Description: fmt.Sprintf("description %d", i),
			FinalSize:   100,
			URL:         fmt.Sprintf("https://cdn.example/f%02d", i),
		})
	}
	return b
}

func (b *fakeBackend) ListFiles(ctx context.Context, r client.ListFilesRequest) (*client.ListFilesResponse, error) {
	if b.listHook != nil {
		b.listHook(r)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls = append(b.listCalls, r)
	if b.listErr != nil {
		return nil, b.listErr
	}

	var matched []client.FileDTO
	var used int64
	for _, f := range b.files {
		used += f.FinalSize
		if r.Filter != models.FilterAll && r.Filter != "" && string(models.Classify(f.Name)) != string(r.Filter) {
			continue
		}
		if s := strings.ToLower(r.Search); s != "" &&
			!strings.Contains(strings.ToLower(f.Name), s) && !strings.Contains(strings.ToLower(f.Description), s) {
			continue
		}
		matched = append(matched, f)
	}

	limit := r.Limit
	pages := (len(matched) + limit - 1) / limit
	start := (r.Page - 1) * limit
	end := start + limit
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	return &client.ListFilesResponse{
		Files:                    append([]client.FileDTO(nil), matched[start:end]...),
		Total:                    len(matched),
		TotalPages:               pages,
		TotalUploadedFileSize:    used,
		TotalFileSizeUploadLimit: b.limit,
	}, nil
}

func (b *fakeBackend) Upload(ctx context.Context, r client.UploadRequest) error {
	body, err := io.ReadAll(r.File)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != nil {
		return b.uploadErr
	}
	r.File = nil
	b.uploads = append(b.uploads, r)
	b.uploaded = append(b.uploaded, string(body))
	b.files = append(b.files, client.FileDTO{
		ID: fmt.Sprintf("u%d", len(b.uploads)), Name: r.Name, Description: r.Description,
		FinalSize: int64(len(body)),
	})
	return nil
}

func (b *fakeBackend) DeleteFile(ctx context.Context, id, userEmail string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, id+"|"+userEmail)
	if b.deleteErr != nil {
		return b.deleteErr
	}
	for i, f := range b.files {
		if f.ID == id {
			b.files = append(b.files[:i], b.files[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: 404, Message: "File not found"}
}

func (b *fakeBackend) DeleteUser(ctx context.Context, userEmail string) error { return nil }

func (b *fakeBackend) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetched = append(b.fetched, url)
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return io.NopCloser(strings.NewReader(b.fetchBody)), nil
}

type staticSession struct{ s *models.Session }

func (s *staticSession) Current() *models.Session { return s.s }

// switchingSession hands out the current session and runs onRead, once,
// after the first read.
type switchingSession struct {
	mu     sync.Mutex
	s      *models.Session
	onRead func()
}

func (s *switchingSession) Current() *models.Session {
	s.mu.Lock()
	cur, hook := s.s, s.onRead
	s.onRead = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return cur
}

func (s *switchingSession) set(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s = sess
}

type recordingSink struct {
	mu      sync.Mutex
	actions []store.Action

	// hook runs before an action is recorded, outside the lock.
	hook func(store.Action)
}

func (r *recordingSink) Dispatch(ctx context.Context, a store.Action) store.State {
	if r.hook != nil {
		r.hook(a)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	return store.State{}
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, n)
}

func (r *recordingNotifier) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return Notification{}
	}
	return r.msgs[len(r.msgs)-1]
}
