package model

import "errors"

// Error categories shared by the builder, renderer and store.
// Callers test for them with errors.Is.
var (
	// ErrBuildFailed means the builder produced an inconsistent tree.
	ErrBuildFailed = errors.New("build failed")

	// ErrRenderUnavailable means the optional raster capability is missing.
	// Callers should offer the data export instead.
	ErrRenderUnavailable = errors.New("render unavailable")

	// ErrInvalidArgument means an unknown format, layout or scheme name.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound means an unknown map id.
	ErrNotFound = errors.New("not found")
)
