package db

import "errors"

// Warehouse error sentinels.
var (
	ErrUnavailable          = errors.New("warehouse unavailable")
	ErrNoRows               = errors.New("query returned no rows")
	ErrBootstrapUnsupported = errors.New("schema bootstrap is not supported for this driver")
)
