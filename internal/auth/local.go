package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/yourname/leettrack/internal"
)

const UserIDHeader = "X-User-ID"

// HeaderProvider reads the user id from the X-User-ID header and falls back
// to DefaultUserID when the header is absent.
type HeaderProvider struct {
	DefaultUserID int64
	logger        internal.Logger
}

func NewHeaderProvider(defaultUserID int64, logger internal.Logger) *HeaderProvider {
	return &HeaderProvider{DefaultUserID: defaultUserID, logger: logger}
}

func (p *HeaderProvider) UserID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if raw == "" {
		return p.DefaultUserID, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		p.logger.Warnf("invalid %s header: %q", UserIDHeader, raw)
		return 0, fmt.Errorf("%w: %s must be a positive integer", internal.ErrInvalidInput, UserIDHeader)
	}
	return id, nil
}
