package ai

import (
	"context"
	"errors"
)

var (
	// ErrBackend marks failures talking to a backend: network, auth, timeout or an empty reply.
	ErrBackend = errors.New("backend failure")
	// ErrParse marks replies that do not have the expected shape.
	ErrParse = errors.New("parse failure")
)

// Request is a single prompt sent to a backend.
type Request struct {
	System string
	Prompt string
	// JSON asks the backend to negotiate a JSON response when it supports that.
	JSON bool
}

// Backend is a language-model provider able to answer a prompt with text.
type Backend interface {
	Name() string
	Model() string
	Invoke(ctx context.Context, req Request) (string, error)
}
