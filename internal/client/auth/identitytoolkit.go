package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudvault/internal/client/client"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
)

const (
	DefaultIdentityURL = "https://identitytoolkit.googleapis.com"
	DefaultTokenURL    = "https://securetoken.googleapis.com/v1/token"

	// idpRequestURI is required by signInWithIdp but unused for ID token
	// exchange.
	idpRequestURI = "http://localhost"
)

// ProviderError is an error answer of the identity provider. Code is the
// upper-case reason such as INVALID_PASSWORD.
type ProviderError struct {
	Status int
	Code   string
	Detail string
}

func (e *ProviderError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("identity provider: %s (%s)", e.Code, e.Detail)
	}
	return "identity provider: " + e.Code
}

func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrInvalidCredentials:
		switch e.Code {
		case "INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS", "INVALID_IDP_RESPONSE", "INVALID_EMAIL":
			return true
		}
	case ErrEmailExists:
		return e.Code == "EMAIL_EXISTS"
	case ErrSessionExpired:
		switch e.Code {
		case "TOKEN_EXPIRED", "INVALID_ID_TOKEN", "CREDENTIAL_TOO_OLD_LOGIN_AGAIN", "USER_NOT_FOUND", "INVALID_REFRESH_TOKEN":
			return true
		}
	}
	return false
}

// IdentityToolkit is a Provider speaking the Identity Toolkit REST API.
type IdentityToolkit struct {
	baseURL    string
	tokenURL   string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
}

type ToolkitOption func(*IdentityToolkit)

func WithTokenURL(u string) ToolkitOption {
	return func(t *IdentityToolkit) { t.tokenURL = u }
}

func WithProviderHTTPClient(c *http.Client) ToolkitOption {
	return func(t *IdentityToolkit) { t.httpClient = c }
}

func WithProviderLogger(l logging.Logger) ToolkitOption {
	return func(t *IdentityToolkit) { t.logger = l }
}

func NewIdentityToolkit(baseURL, apiKey string, opts ...ToolkitOption) *IdentityToolkit {
	t := &IdentityToolkit{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokenURL:   DefaultTokenURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "identity")
	return t
}

type tokenResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
}

func (t *IdentityToolkit) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	var resp tokenResponse
	err := t.call(ctx, "signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return t.complete(ctx, resp)
}

func (t *IdentityToolkit) SignUp(ctx context.Context, displayName, email, password string) (*models.Session, error) {
	var resp tokenResponse
	err := t.call(ctx, "signUp", map[string]any{
		"email":             email,
		"password":          password,
		"displayName":       displayName,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.DisplayName == "" {
		resp.DisplayName = displayName
	}
	return t.complete(ctx, resp)
}

func (t *IdentityToolkit) SignInWithGoogle(ctx context.Context, googleIDToken string) (*models.Session, error) {
	postBody := url.Values{}
	postBody.Set("id_token", googleIDToken)
	postBody.Set("providerId", googleProviderID)

	var resp tokenResponse
	err := t.call(ctx, "signInWithIdp", map[string]any{
		"postBody":          postBody.Encode(),
		"requestUri":        idpRequestURI,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	s, err := t.complete(ctx, resp)
	if err != nil {
		return nil, err
	}
	s.IsGoogleLinked = true
	return s, nil
}

func (t *IdentityToolkit) Reauthenticate(ctx context.Context, s *models.Session, secret string) (*models.Session, error) {
	if s == nil {
		return nil, ErrNotSignedIn
	}
	var (
		fresh *models.Session
		err   error
	)
	if s.IsGoogleLinked {
		fresh, err = t.SignInWithGoogle(ctx, secret)
	} else {
		fresh, err = t.SignInWithPassword(ctx, s.Email, secret)
	}
	if err != nil {
		return nil, err
	}
	if fresh.UserID != s.UserID {
		return nil, fmt.Errorf("%w: credentials belong to another account", ErrReauthFailed)
	}
	return fresh, nil
}

func (t *IdentityToolkit) Refresh(ctx context.Context, s *models.Session) (*models.Session, error) {
	if s == nil || s.RefreshToken == "" {
		return nil, ErrSessionExpired
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", s.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(t.tokenURL), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := t.send(req, &resp); err != nil {
		return nil, err
	}

	fresh := *s
	fresh.IDToken = resp.IDToken
	if resp.RefreshToken != "" {
		fresh.RefreshToken = resp.RefreshToken
	}
	return &fresh, nil
}

func (t *IdentityToolkit) DeleteAccount(ctx context.Context, idToken string) error {
	return t.call(ctx, "delete", map[string]any{"idToken": idToken}, nil)
}

type lookupResponse struct {
	Users []struct {
		LocalID          string `json:"localId"`
		Email            string `json:"email"`
		DisplayName      string `json:"displayName"`
		PhotoURL         string `json:"photoUrl"`
		CreatedAt        string `json:"createdAt"`
		ProviderUserInfo []struct {
			ProviderID string `json:"providerId"`
		} `json:"providerUserInfo"`
	} `json:"users"`
}

// complete turns a token response into a Session and fills the profile fields
// the token does not carry from accounts:lookup. A failed lookup only costs
// the registration time.
func (t *IdentityToolkit) complete(ctx context.Context, resp tokenResponse) (*models.Session, error) {
	s, err := sessionFromTokens(resp.IDToken, resp.RefreshToken)
	if err != nil {
		return nil, err
	}
	if s.UserID == "" {
		s.UserID = resp.LocalID
	}
	if s.Email == "" {
		s.Email = resp.Email
	}
	if s.DisplayName == "" {
		s.DisplayName = resp.DisplayName
	}
	if s.AvatarURL == "" {
		s.AvatarURL = resp.PhotoURL
	}

	var lookup lookupResponse
	if err := t.call(ctx, "lookup", map[string]any{"idToken": resp.IDToken}, &lookup); err != nil {
		t.logger.Warn(ctx, "account lookup failed", "error", err)
		return s, nil
	}
	if len(lookup.Users) == 0 {
		return s, nil
	}
	u := lookup.Users[0]
	if s.DisplayName == "" {
		s.DisplayName = u.DisplayName
	}
	if s.AvatarURL == "" {
		s.AvatarURL = u.PhotoURL
	}
	if ms, err := strconv.ParseInt(u.CreatedAt, 10, 64); err == nil {
		s.RegisteredAt = time.UnixMilli(ms).UTC()
	}
	for _, p := range u.ProviderUserInfo {
		if p.ProviderID == googleProviderID {
			s.IsGoogleLinked = true
		}
	}
	return s, nil
}

func (t *IdentityToolkit) endpoint(base string) string {
	if t.apiKey == "" {
		return base
	}
	return base + "?key=" + url.QueryEscape(t.apiKey)
}

func (t *IdentityToolkit) call(ctx context.Context, method string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	target := t.endpoint(t.baseURL + "/v1/accounts:" + method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.send(req, out)
}

func (t *IdentityToolkit) send(req *http.Request, out any) error {
	ctx := req.Context()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", client.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	t.logger.Debug(ctx, "identity call", "path", req.URL.Path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeProviderError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	return nil
}

func decodeProviderError(resp *http.Response) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	pe := &ProviderError{Status: resp.StatusCode}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error.Message == "" {
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: identity provider responded %d", client.ErrUnavailable, resp.StatusCode)
		}
		pe.Code = http.StatusText(resp.StatusCode)
		return pe
	}
	// messages look like "WEAK_PASSWORD : Password should be at least 6 characters"
	code, detail, _ := strings.Cut(payload.Error.Message, ":")
	pe.Code = strings.TrimSpace(code)
	pe.Detail = strings.TrimSpace(detail)
	return pe
}

// Describe maps a provider error to a short message for the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrEmailExists):
		return "An account with this email already exists."
	case errors.Is(err, ErrSessionExpired):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, ErrReauthFailed):
		return "Re-authentication failed."
	case errors.Is(err, client.ErrUnavailable):
		return "Identity service is unavailable. Please try again."
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Detail != "" {
		return pe.Detail
	}
	return err.Error()
}
