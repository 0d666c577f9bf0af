package domain

import "errors"

// ErrSessionNotFound is returned for history reads and deletes on an
// unknown session id. The chat flow never sees it because the session is
// created before use.
var ErrSessionNotFound = errors.New("session not found")
