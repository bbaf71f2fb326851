package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrEmptyExport         = errors.New("export contains no recipes")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrMissingOrganizer    = errors.New("organizer was not resolved")
	ErrDuplicateUnresolved = errors.New("duplicate title not resolved within retry cap")
)
