package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dmitrijs2005/cloudvault/internal/client/catalog"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/preview"
)

const (
	barWidth    = 30
	timeLayout  = "2006-01-02 15:04"
	dateLayout  = "January 2, 2006"
	maxDescCols = 40
)

func renderNotification(w io.Writer, th Theme, n catalog.Notification) {
	switch n.Level {
	case catalog.LevelSuccess:
		fmt.Fprintln(w, th.Success.Render("✓ "+n.Message))
	case catalog.LevelError:
		fmt.Fprintln(w, th.Error.Render("✗ "+n.Message))
	default:
		fmt.Fprintln(w, th.Muted.Render("• "+n.Message))
	}
}

// renderCatalog prints the current page as a table followed by the query and
// pagination footer.
func renderCatalog(w io.Writer, th Theme, q catalog.Query, p models.CatalogPage) {
	header := fmt.Sprintf("Files  [filter: %s", q.Filter)
	if q.Search != "" {
		header += fmt.Sprintf(", search: %q", q.Search)
	}
	header += "]"
	fmt.Fprintln(w, th.Title.Render(header))

	if len(p.Items) == 0 {
		fmt.Fprintln(w, th.Muted.Render("No files found"))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.Border)).
		Headers("ID", "NAME", "TYPE", "SIZE", "UPLOADED", "TAGS", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return th.Accent.Bold(true).Padding(0, 1)
			}
			return th.Text.Padding(0, 1)
		})
	for _, it := range p.Items {
		uploaded := ""
		if !it.UploadedAt.IsZero() {
			uploaded = it.UploadedAt.Local().Format(timeLayout)
		}
		t.Row(
			it.ID,
			it.Name,
			string(it.DerivedType),
			models.FormatSize(it.SizeBytes),
			uploaded,
			strings.Join(it.Tags, ", "),
			truncate(it.Description, maxDescCols),
		)
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w, th.Muted.Render(fmt.Sprintf("Page %d of %d  (%d files)", p.CurrentPage, p.TotalPages, p.TotalCount)))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// renderProfile prints the account card and the storage usage.
func renderProfile(w io.Writer, th Theme, s *models.Session, q models.QuotaState, totalFiles int) {
	fmt.Fprintln(w, th.Title.Render(s.Name()))
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", th.Muted.Render(fmt.Sprintf("%-14s", label)), th.Text.Render(value))
	}
	row("Email", s.Email)
	if !s.RegisteredAt.IsZero() {
		row("Member Since", s.RegisteredAt.Local().Format(dateLayout))
	}
	row("Provider", s.Provider())
	row("Files", fmt.Sprintf("%d", totalFiles))
	row("Storage", fmt.Sprintf("%.2f MB / %.2f MB", models.MB(q.UsedBytes), models.MB(q.LimitBytes)))
	fmt.Fprintf(w, "%s %s %s\n",
		th.Muted.Render(fmt.Sprintf("%-14s", "")),
		th.Accent.Render(progressBar(q.Percent(), barWidth)),
		th.Text.Render(fmt.Sprintf("%.1f%%", q.Percent())))
	row("Remaining", fmt.Sprintf("%.2f MB remaining", models.MB(q.Remaining())))
}

func progressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// renderPreview prints what the chosen strategy can show in a terminal.
func renderPreview(w io.Writer, th Theme, rec models.FileRecord, pv preview.Preview) {
	fmt.Fprintln(w, th.Title.Render(fmt.Sprintf("%s (%s)", rec.Name, rec.DerivedType)))
	switch pv.Strategy {
	case preview.StrategyInline:
		fmt.Fprintln(w, th.Text.Render("Open image: ")+th.Accent.Render(pv.URL))
	case preview.StrategyEmbedded:
		fmt.Fprintln(w, th.Text.Render("Open in viewer: ")+th.Accent.Render(pv.URL))
	case preview.StrategyText:
		if pv.Err != nil {
			fmt.Fprintln(w, th.Error.Render("Failed to load text file"))
			return
		}
		fmt.Fprintln(w, pv.Text)
		if pv.Truncated {
			fmt.Fprintln(w, th.Muted.Render("… preview truncated, download the file to see all of it"))
		}
	default:
		fmt.Fprintln(w, th.Muted.Render("Preview not available for this file type."))
		if pv.Downloadable {
			fmt.Fprintln(w, th.Muted.Render(fmt.Sprintf("Use 'download %s' to save it.", rec.ID)))
		}
	}
}
