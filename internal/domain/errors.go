package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoAnswer is returned by generators that completed without producing
// usable text.
var ErrNoAnswer = errors.New("generator returned no answer")
