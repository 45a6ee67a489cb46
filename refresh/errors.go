package refresh

import "errors"

var (
	// ErrNoRefreshToken means the persisted session cannot be extended;
	// the coordinator fails immediately without a network call.
	ErrNoRefreshToken = errors.New("no refresh token present")

	// ErrRefreshFailed covers network errors, timeouts, non-2xx responses
	// and malformed token responses. The caller escalates to forced
	// re-authentication; retrying here is futile because the refresh
	// token itself is usually invalid.
	ErrRefreshFailed = errors.New("refresh failed")
)
