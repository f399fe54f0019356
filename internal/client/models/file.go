// Package models defines the client-side data model of the CloudVault catalog:
// file records, catalog pages, quota, upload drafts and the user session.
package models

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DerivedType is the file category computed from the file name extension.
type DerivedType string

const (
	TypeImage    DerivedType = "image"
	TypePDF      DerivedType = "pdf"
	TypeDocument DerivedType = "document"
	TypeText     DerivedType = "text"
	TypeUnknown  DerivedType = "unknown"
)

// extensionTypes is the only extension table in the client. Upload preparation,
// fetched-record transformation and preview selection all go through Classify.
var extensionTypes = map[string]DerivedType{
	"jpg":  TypeImage,
	"jpeg": TypeImage,
	"png":  TypeImage,
	"gif":  TypeImage,
	"bmp":  TypeImage,
	"webp": TypeImage,
	"svg":  TypeImage,
	"pdf":  TypePDF,
	"doc":  TypeDocument,
	"docx": TypeDocument,
	"rtf":  TypeDocument,
	"odt":  TypeDocument,
	"txt":  TypeText,
	"csv":  TypeText,
}

// Classify maps a file name to its DerivedType using the lowercased extension.
// The server-declared MIME type is ignored on purpose, so a renamed file is
// classified by its new name. Names without an extension are TypeUnknown.
func Classify(fileName string) DerivedType {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return TypeUnknown
	}
	if t, ok := extensionTypes[strings.ToLower(ext[1:])]; ok {
		return t
	}
	return TypeUnknown
}

// Filter restricts a catalog listing to one DerivedType, or to all of them.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterImage    Filter = Filter(TypeImage)
	FilterPDF      Filter = Filter(TypePDF)
	FilterDocument Filter = Filter(TypeDocument)
	FilterText     Filter = Filter(TypeText)
)

// ParseFilter validates a user-supplied filter name. The empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterImage, FilterPDF, FilterDocument, FilterText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, image, pdf, document or text)", s)
	}
}

// FileRecord is one file of the user's collection as shown by the client.
type FileRecord struct {
	ID          string
	Name        string
	Description string
	Tags        []string
	SizeBytes   int64
	DerivedType DerivedType
	UploadedAt  time.Time
	URL         string
}

// DisplayName returns the name used when saving the file locally.
func (f FileRecord) DisplayName() string {
	if f.Name == "" {
		return "download"
	}
	return f.Name
}

func (f FileRecord) String() string {
	return fmt.Sprintf("%s  %-8s  %10s  %s", f.ID, f.DerivedType, FormatSize(f.SizeBytes), f.Name)
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a raw byte count with 1024-based units and at most two
// decimals, trailing zeros removed: 1536 -> "1.5 KB", 0 -> "0 Bytes".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i, div := 0, int64(1)
	for i < len(sizeUnits)-1 && bytes >= div*1024 {
		div *= 1024
		i++
	}
	v := float64(bytes) / float64(div)
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
