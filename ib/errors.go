package ib

import "errors"

// Simple error conditions.
var (
	ErrResourceExhausted = errors.New("transport resources exhausted")
	ErrQueueFull         = errors.New("work queue full")
	ErrBadHandle         = errors.New("unknown or destroyed handle")
)
