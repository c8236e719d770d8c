package services

import "errors"

// Sentinel errors returned by the analysis pipeline. The controller maps
// these onto HTTP statuses; everything else is treated as an upstream
// failure.
var (
	ErrEmptyDocument    = errors.New("application document is empty")
	ErrDocumentTooLarge = errors.New("application document exceeds size limit")
	ErrNoGuidelines     = errors.New("no underwriting guidelines are indexed")
)
