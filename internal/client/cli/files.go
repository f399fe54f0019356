package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cloudvault/internal/client/catalog"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/upload"
	"github.com/dmitrijs2005/cloudvault/internal/common"
)

// List prints the visible page, loading it first if nothing was loaded yet.
func (a *App) List(ctx context.Context) error {
	if a.catalog.Page().TotalPages == 0 {
		return a.Refresh(ctx)
	}
	a.showCatalog()
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	return a.afterQuery(ctx, a.catalog.Refresh(ctx))
}

func (a *App) Filter(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: filter <all|image|pdf|document|text>")
		return common.ErrorIncorrectInput
	}
	f, err := models.ParseFilter(args[0])
	if err != nil {
		a.fail(err.Error())
		return fmt.Errorf("%w: %w", common.ErrorIncorrectInput, err)
	}
	return a.afterQuery(ctx, a.catalog.SetFilter(ctx, f))
}

// Search sets the search term. Without arguments it clears it.
func (a *App) Search(ctx context.Context, args []string) error {
	return a.afterQuery(ctx, a.catalog.SetSearch(ctx, strings.Join(args, " ")))
}

func (a *App) Page(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: page <n>")
		return common.ErrorIncorrectInput
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		a.fail(fmt.Sprintf("Not a page number: %s", args[0]))
		return fmt.Errorf("%w: %w", common.ErrorIncorrectInput, err)
	}
	return a.movePage(ctx, fmt.Sprintf("No page %d", n), func() (bool, error) {
		return a.catalog.SetPage(ctx, n)
	})
}

func (a *App) Next(ctx context.Context) error {
	return a.movePage(ctx, "Already on the last page", func() (bool, error) {
		return a.catalog.Next(ctx)
	})
}

func (a *App) Prev(ctx context.Context) error {
	return a.movePage(ctx, "Already on the first page", func() (bool, error) {
		return a.catalog.Prev(ctx)
	})
}

func (a *App) movePage(ctx context.Context, ignored string, move func() (bool, error)) error {
	moved, err := move()
	if !moved && err == nil {
		a.info(ignored)
		return nil
	}
	return a.afterQuery(ctx, err)
}

// afterQuery renders the page after a catalog fetch. A response overtaken by
// a newer one is not an error for the user.
func (a *App) afterQuery(ctx context.Context, err error) error {
	if errors.Is(err, catalog.ErrStaleResponse) {
		return nil
	}
	if err != nil {
		a.expireOnUnauthorized(ctx, err)
		return err
	}
	a.showCatalog()
	return nil
}

func (a *App) showCatalog() {
	renderCatalog(a.out, a.theme(), a.catalog.Query(), a.catalog.Page())
}

// Upload walks the user through one draft. A rejected draft is kept and can be
// corrected and resubmitted.
func (a *App) Upload(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Path to the file to upload", a.out)
	if err != nil {
		return err
	}
	if path == "" {
		a.info("Upload cancelled")
		return nil
	}
	d, err := a.uploads.Select(path)
	if err != nil {
		a.fail(fmt.Sprintf("Cannot upload %s: %v", path, err))
		return err
	}
	a.println(a.theme().Text.Render(fmt.Sprintf("Selected %s (%s, %s)", d.Name, d.DerivedType, models.FormatSize(d.SizeBytes))))

	for {
		if err := a.editDraft(); err != nil {
			a.uploads.Cancel()
			return err
		}

		a.info("Uploading...")
		err := a.uploads.Submit(ctx)
		if err == nil {
			a.showCatalog()
			return nil
		}
		if errors.Is(err, upload.ErrUploadInFlight) || errors.Is(err, upload.ErrNoDraft) {
			a.fail(err.Error())
			return err
		}
		a.expireOnUnauthorized(ctx, err)
		if !a.isLoggedIn() {
			return err
		}

		retry, cerr := Confirm(a.reader, "Edit and try again?", a.out)
		if cerr != nil || !retry {
			a.uploads.Cancel()
			return err
		}
	}
}

func (a *App) editDraft() error {
	d, ok := a.uploads.Draft()
	if !ok {
		return upload.ErrNoDraft
	}
	prompt := "Description"
	if d.Description != "" {
		prompt += fmt.Sprintf(" [%s]", d.Description)
	}
	desc, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if desc != "" {
		if err := a.uploads.SetDescription(desc); err != nil {
			return err
		}
	}
	tags, err := GetSimpleText(a.reader, "Tags, comma separated (optional)", a.out)
	if err != nil {
		return err
	}
	if tags != "" {
		return a.uploads.SetTags(tags)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.idArg("delete", args)
	if err != nil {
		return err
	}
	question := "Are you sure you want to delete this file?"
	if rec, ok := a.catalog.Find(id); ok {
		question = fmt.Sprintf("Are you sure you want to delete %q?", rec.Name)
	}
	ok, err := Confirm(a.reader, question, a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.info("Delete cancelled")
		return nil
	}

	if err := a.catalog.Remove(ctx, id); err != nil {
		a.expireOnUnauthorized(ctx, err)
		return err
	}
	a.showCatalog()
	return nil
}

func (a *App) Download(ctx context.Context, args []string) error {
	rec, err := a.recordArg("download", args)
	if err != nil {
		return err
	}
	path, err := a.catalog.Download(ctx, rec, a.config.DownloadDir)
	if err != nil {
		return err
	}
	a.println(a.theme().Muted.Render(path))
	return nil
}

func (a *App) Preview(ctx context.Context, args []string) error {
	rec, err := a.recordArg("preview", args)
	if err != nil {
		return err
	}
	pv := a.previews.Render(ctx, rec)
	if pv.Err != nil {
		a.logger.Warn(ctx, "text preview failed", "id", rec.ID, "error", pv.Err)
	}
	renderPreview(a.out, a.theme(), rec, pv)
	return pv.Err
}

func (a *App) idArg(cmd string, args []string) (string, error) {
	if len(args) != 1 {
		a.println(fmt.Sprintf("Usage: %s <id>", cmd))
		return "", common.ErrorIncorrectInput
	}
	return args[0], nil
}

// recordArg resolves an id against the visible page.
func (a *App) recordArg(cmd string, args []string) (models.FileRecord, error) {
	id, err := a.idArg(cmd, args)
	if err != nil {
		return models.FileRecord{}, err
	}
	rec, ok := a.catalog.Find(id)
	if !ok {
		a.fail(fmt.Sprintf("No file with id %s on this page", id))
		return models.FileRecord{}, common.ErrorNotFound
	}
	return rec, nil
}
