package types

import "errors"

// Domain sentinel errors shared across packages.
var (
	ErrInvalidSymbol       = errors.New("invalid symbol")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrNotFound            = errors.New("not found")
	ErrUnchanged           = errors.New("file content unchanged")
	ErrStoreNotConnected   = errors.New("store not connected")
	ErrSchemaDrift         = errors.New("store schema drift")
)
