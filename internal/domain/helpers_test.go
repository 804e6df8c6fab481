package domain

import "time"

// Polling bounds for Eventually-style assertions.
const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)
