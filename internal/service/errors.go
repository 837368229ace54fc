package service

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrNotFound            = errors.New("lead not found")
	ErrStoreUnavailable    = errors.New("lead store unavailable")
	ErrCallPlacementFailed = errors.New("call placement failed")
	ErrProviderCallback    = errors.New("malformed provider callback")
)
