package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cloudvault/internal/client/client"
	"github.com/dmitrijs2005/cloudvault/internal/client/config"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
)

// fakeAPI is an in-memory backend with filtering, search and pagination.
type fakeAPI struct {
	mu    sync.Mutex
	files []client.FileDTO
	limit int64
	blobs map[string]string

	listErr   error
	uploadErr error
	deleteErr error

	lists        []client.ListFilesRequest
	uploads      []client.UploadRequest
	uploadBodies []string
	deleted      []string
	deletedUsers []string
}

func newFakeAPI(n int) *fakeAPI {
	api := &fakeAPI{limit: 10 << 20, blobs: map[string]string{}}
	for i := 1; i <= n; i++ {
		api.files = append(api.files, client.FileDTO{
			ID:          fmt.Sprintf("f%02d", i),
			Name:        fmt.Sprintf("file%02d.txt", i),
			Description: fmt.Sprintf("description %d", i),
			FinalSize:   1 << 20,
			URL:         fmt.Sprintf("https://cdn.example/f%02d", i),
		})
	}
	return api
}

func (f *fakeAPI) ListFiles(ctx context.Context, r client.ListFilesRequest) (*client.ListFilesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, r)
	if f.listErr != nil {
		return nil, f.listErr
	}

	var used int64
	var match []client.FileDTO
	for _, file := range f.files {
		used += file.FinalSize
		if r.Filter != "" && r.Filter != models.FilterAll && models.Filter(models.Classify(file.Name)) != r.Filter {
			continue
		}
		if r.Search != "" && !strings.Contains(file.Name+" "+file.Description, r.Search) {
			continue
		}
		match = append(match, file)
	}

	start := (r.Page - 1) * r.Limit
	end := min(start+r.Limit, len(match))
	var page []client.FileDTO
	if start < len(match) {
		page = match[start:end]
	}
	return &client.ListFilesResponse{
		Files:                    page,
		Total:                    len(match),
		TotalPages:               (len(match) + r.Limit - 1) / r.Limit,
		TotalUploadedFileSize:    used,
		TotalFileSizeUploadLimit: f.limit,
	}, nil
}

func (f *fakeAPI) Upload(ctx context.Context, r client.UploadRequest) error {
	body, err := io.ReadAll(r.File)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, r)
	f.uploadBodies = append(f.uploadBodies, string(body))
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.files = append(f.files, client.FileDTO{
		ID:          fmt.Sprintf("up%d", len(f.uploads)),
		Name:        r.Name,
		Description: r.Description,
		Tags:        models.SplitTags(r.Tags),
		FinalSize:   int64(len(body)),
	})
	return nil
}

func (f *fakeAPI) DeleteFile(ctx context.Context, id, userEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	for i, file := range f.files {
		if file.ID == id {
			f.files = append(f.files[:i], f.files[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) DeleteUser(ctx context.Context, userEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedUsers = append(f.deletedUsers, userEmail)
	return nil
}

func (f *fakeAPI) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.blobs[url]
	if !ok {
		return nil, client.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type fakeProvider struct {
	session   *models.Session
	signInErr error
	reauthErr error

	steps   []string
	secrets []string
}

func annSession() *models.Session {
	return &models.Session{
		Email:        "ann@example.com",
		DisplayName:  "Ann",
		UserID:       "u-ann",
		IDToken:      "tok",
		RefreshToken: "ref",
	}
}

func (p *fakeProvider) issue() (*models.Session, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	c := *p.session
	return &c, nil
}

func (p *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	p.steps = append(p.steps, "signin:"+email)
	p.secrets = append(p.secrets, password)
	return p.issue()
}

func (p *fakeProvider) SignUp(ctx context.Context, name, email, password string) (*models.Session, error) {
	p.steps = append(p.steps, "signup:"+name+":"+email)
	return p.issue()
}

func (p *fakeProvider) SignInWithGoogle(ctx context.Context, token string) (*models.Session, error) {
	p.steps = append(p.steps, "google:"+token)
	return p.issue()
}

func (p *fakeProvider) Reauthenticate(ctx context.Context, s *models.Session, secret string) (*models.Session, error) {
	p.steps = append(p.steps, "reauth")
	p.secrets = append(p.secrets, secret)
	if p.reauthErr != nil {
		return nil, p.reauthErr
	}
	c := *s
	c.IDToken = "tok-fresh"
	return &c, nil
}

func (p *fakeProvider) Refresh(ctx context.Context, s *models.Session) (*models.Session, error) {
	p.steps = append(p.steps, "refresh")
	c := *s
	return &c, nil
}

func (p *fakeProvider) DeleteAccount(ctx context.Context, idToken string) error {
	p.steps = append(p.steps, "delete:"+idToken)
	return nil
}

type harness struct {
	app      *App
	api      *fakeAPI
	provider *fakeProvider
	out      *bytes.Buffer
	cfg      *config.Config
}

// newHarness builds an App over fakes. input is what the user types, one
// entry per line.
func newHarness(t *testing.T, api *fakeAPI, input ...string) *harness {
	t.Helper()
	stubTerminal(t, false, nil, nil)

	ctx := context.Background()
	db, err := client.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.PageSize = 5
	cfg.DownloadDir = t.TempDir()

	h := &harness{api: api, provider: &fakeProvider{session: annSession()}, out: &bytes.Buffer{}, cfg: cfg}
	in := strings.NewReader(strings.Join(input, "\n") + "\n")
	h.app, err = assemble(ctx, cfg, deps{db: db, provider: h.provider, api: api, logger: logging.Nop(), in: in, out: h.out})
	require.NoError(t, err)
	t.Cleanup(h.app.Close)
	return h
}

// signIn logs Ann in without consuming scripted input.
func (h *harness) signIn(t *testing.T) {
	t.Helper()
	_, err := h.app.session.SignIn(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)
	h.out.Reset()
}
