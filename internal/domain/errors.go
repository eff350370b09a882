package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedSymbol = errors.New("unsupported symbol")
	ErrNoData            = errors.New("no data available")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrWSDisconnect      = errors.New("websocket disconnected")
)
