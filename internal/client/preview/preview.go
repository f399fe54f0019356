// Package preview picks how a file is shown: inline, through an embedded
// document viewer, as fetched text, or not at all.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
)

const (
	DefaultViewerURL = "https://docs.google.com/gview"
	// DefaultTextLimit caps the bytes read for a text preview.
	DefaultTextLimit int64 = 1 << 20
)

var ErrTextLoad = errors.New("failed to load text file")

type Strategy int

const (
	StrategyUnavailable Strategy = iota
	StrategyInline
	StrategyEmbedded
	StrategyText
)

func (s Strategy) String() string {
	switch s {
	case StrategyInline:
		return "inline"
	case StrategyEmbedded:
		return "embedded"
	case StrategyText:
		return "text"
	default:
		return "unavailable"
	}
}

// Plan is the outcome of strategy selection. URL is what the renderer opens:
// the file itself, or the viewer page for embedded plans.
type Plan struct {
	Strategy     Strategy
	URL          string
	Downloadable bool
}

// Preview is a rendered Plan. Only text plans carry content. Err is set when
// the text fetch failed and is local to this preview.
type Preview struct {
	Plan
	Text      string
	Truncated bool
	Err       error
}

// Fetcher reads the bytes behind a stored file URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

type Resolver struct {
	fetcher   Fetcher
	viewerURL string
	textLimit int64
}

type Option func(*Resolver)

func WithViewerURL(u string) Option {
	return func(r *Resolver) {
		if u != "" {
			r.viewerURL = u
		}
	}
}

func WithTextLimit(n int64) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.textLimit = n
		}
	}
}

func NewResolver(f Fetcher, opts ...Option) *Resolver {
	r := &Resolver{fetcher: f, viewerURL: DefaultViewerURL, textLimit: DefaultTextLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve selects the strategy for rec. It performs no I/O.
func (r *Resolver) Resolve(rec models.FileRecord) Plan {
	if rec.URL == "" {
		return Plan{Strategy: StrategyUnavailable, Downloadable: true}
	}
	switch rec.DerivedType {
	case models.TypeImage:
		return Plan{Strategy: StrategyInline, URL: rec.URL}
	case models.TypePDF, models.TypeDocument:
		return Plan{Strategy: StrategyEmbedded, URL: r.embedURL(rec.URL)}
	case models.TypeText:
		return Plan{Strategy: StrategyText, URL: rec.URL}
	default:
		return Plan{Strategy: StrategyUnavailable, Downloadable: true}
	}
}

func (r *Resolver) embedURL(fileURL string) string {
	q := url.Values{}
	q.Set("url", fileURL)
	q.Set("embedded", "true")
	return r.viewerURL + "?" + q.Encode()
}

// Render resolves rec and, for text plans, fetches the content.
func (r *Resolver) Render(ctx context.Context, rec models.FileRecord) Preview {
	p := Preview{Plan: r.Resolve(rec)}
	if p.Strategy != StrategyText {
		return p
	}

	body, err := r.fetcher.Fetch(ctx, p.URL)
	if err != nil {
		p.Err = fmt.Errorf("%w: %w", ErrTextLoad, err)
		return p
	}
	defer body.Close()

	b, err := io.ReadAll(io.LimitReader(body, r.textLimit+1))
	if err != nil {
		p.Err = fmt.Errorf("%w: %w", ErrTextLoad, err)
		return p
	}
	if int64(len(b)) > r.textLimit {
		b = b[:r.textLimit]
		p.Truncated = true
	}
	p.Text = string(b)
	return p
}
