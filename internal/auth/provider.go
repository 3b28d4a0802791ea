// Package auth resolves which user a request acts for. There is no login:
// callers name a user id or get the configured default.
package auth

import "net/http"

type Provider interface {
	UserID(r *http.Request) (int64, error)
}
