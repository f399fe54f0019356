package client

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
)

// Client is the backend REST contract consumed by the CloudVault client.
type Client interface {
	ListFiles(ctx context.Context, req ListFilesRequest) (*ListFilesResponse, error)
	Upload(ctx context.Context, req UploadRequest) error
	DeleteFile(ctx context.Context, id, userEmail string) error
	DeleteUser(ctx context.Context, userEmail string) error
	// Fetch reads the bytes behind a stored file URL. The caller closes the body.
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// ListFilesRequest scopes GET /api/files.
type ListFilesRequest struct {
	UserEmail string
	Filter    models.Filter
	Search    string
	Page      int
	Limit     int
}

// ListFilesResponse is the body of GET /api/files.
type ListFilesResponse struct {
	Files                    []FileDTO `json:"files"`
	Total                    int       `json:"total"`
	TotalPages               int       `json:"totalPages"`
	TotalUploadedFileSize    int64     `json:"totalUploadedFileSize"`
	TotalFileSizeUploadLimit int64     `json:"totalFileSizeUploadLimit"`
}

// FileDTO is one file item as sent by the backend.
type FileDTO struct {
	ID           string   `json:"_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	FinalSize    int64    `json:"final_size"`
	OriginalSize int64    `json:"original_size"`
	UploadedAt   string   `json:"uploaded_at"`
	URL          string   `json:"url"`
}

// Record converts the wire item into a FileRecord. The derived type comes from
// models.Classify, never from server-side metadata.
func (f FileDTO) Record() models.FileRecord {
	size := f.FinalSize
	if size <= 0 {
		size = f.OriginalSize
	}
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	var uploaded time.Time
	if f.UploadedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, f.UploadedAt); err == nil {
			uploaded = t
		}
	}
	return models.FileRecord{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Tags:        tags,
		SizeBytes:   size,
		DerivedType: models.Classify(f.Name),
		UploadedAt:  uploaded,
		URL:         f.URL,
	}
}

// Page converts the response into a catalog page and quota pair.
func (r *ListFilesResponse) Page(currentPage int) (models.CatalogPage, models.QuotaState) {
	items := make([]models.FileRecord, 0, len(r.Files))
	for _, f := range r.Files {
		items = append(items, f.Record())
	}
	totalPages := r.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}
	page := models.CatalogPage{
		Items:       items,
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		TotalCount:  r.Total,
	}
	quota := models.QuotaState{
		UsedBytes:  r.TotalUploadedFileSize,
		LimitBytes: r.TotalFileSizeUploadLimit,
	}
	return page, quota
}

// UploadRequest is the multipart body of POST /api/upload.
type UploadRequest struct {
	File        io.Reader
	FileName    string
	Name        string
	Type        models.DerivedType
	Description string
	Tags        string
	UserEmail   string
}
