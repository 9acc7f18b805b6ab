package repository

import "errors"

// ErrVersionConflict is returned when an optimistic write finds that the
// record's version or expected status changed since it was read. The caller
// must re-fetch and re-decide; it is the only retryable failure in the
// engine's taxonomy.
var ErrVersionConflict = errors.New("version conflict: record changed since read")
