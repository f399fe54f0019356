// Package client contains the CloudVault client's transport to the backend.
//
// # Overview
//
// The package provides:
//  1. The backend REST contract (see the Client interface): list files with
//     filter/search/pagination, multipart upload, delete by id, account purge,
//     and a raw fetch of stored file URLs.
//  2. A net/http implementation (HTTPClient) that tags every call with an
//     X-Request-ID, attaches the session ID token as a bearer token, and maps
//     responses to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the SQLite
//     state database, applying embedded goose migrations.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx answers are *APIError values
// that also match ErrUnauthorized (401, 403), ErrNotFound (404) and
// ErrUnavailable (502, 503, 504) through errors.Is.
//
// All operations accept context.Context and honor cancellation. Nothing is
// retried automatically.
package client
