package embedder

import "errors"

// ErrMissingCredentials indicates the selected provider needs a credential
// that was not configured. Callers may choose to fall back to stub mode, but
// that choice is theirs; the embedder never degrades silently.
var ErrMissingCredentials = errors.New("missing provider credentials")
