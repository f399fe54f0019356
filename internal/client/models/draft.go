package models

import (
	"strings"

	"github.com/samber/lo"
)

// UploadDraft is the unsaved state of an upload while the user edits it.
type UploadDraft struct {
	LocalPath   string `validate:"required"`
	Name        string `validate:"required"`
	Description string `validate:"required"`
	Tags        string
	DerivedType DerivedType
	SizeBytes   int64 `validate:"gte=0"`
}

// ParsedTags splits the raw comma-separated tags, trims every tag and drops
// empty ones. Order is preserved.
func (d UploadDraft) ParsedTags() []string {
	return SplitTags(d.Tags)
}

// SplitTags is the tag parser shared by drafts and the CLI.
func SplitTags(raw string) []string {
	tags := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(tags)
}
