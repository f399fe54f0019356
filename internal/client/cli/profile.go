package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/cloudvault/internal/client/auth"
	"github.com/dmitrijs2005/cloudvault/internal/client/catalog"
	"github.com/dmitrijs2005/cloudvault/internal/client/store"
)

// Profile shows the account and the storage usage of the last refresh.
func (a *App) Profile(ctx context.Context) error {
	if err := a.catalog.Refresh(ctx); err != nil && !errors.Is(err, catalog.ErrStaleResponse) {
		a.expireOnUnauthorized(ctx, err)
		if !a.isLoggedIn() {
			return err
		}
	}
	st := a.store.Get()
	if st.Session == nil {
		return auth.ErrNotSignedIn
	}
	renderProfile(a.out, a.theme(), st.Session, st.Quota, st.TotalFiles)
	return nil
}

func (a *App) Theme(ctx context.Context) error {
	st := a.store.Dispatch(ctx, store.ThemeToggled{})
	a.info("Theme: " + NewTheme(st.DarkMode).Name())
	return nil
}
