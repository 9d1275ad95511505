package domain

import "errors"

// Sentinel errors surfaced by the engine and its collaborators. These are
// fatal configuration errors (§7 "Configuration") — the engine returns
// before BFS starts — as opposed to the per-mapping ValidationIssues, which
// are never fatal.
var (
	ErrAnchorNotFound     = errors.New("anchor person not found in tree")
	ErrUnknownStrategy    = errors.New("unknown threshold strategy")
	ErrInvalidOptionRange = errors.New("option value out of range")
	ErrMalformedTree      = errors.New("family references a missing person")
)
