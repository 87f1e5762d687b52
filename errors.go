package sift

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when a provider API key is absent at
// pipeline construction time.
var ErrMissingCredential = errors.New("missing API credential")

type ErrLLM struct {
	Provider string
	Message  string
}

func (e *ErrLLM) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

type ErrHTTP struct {
	Status int
	Body   string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}
