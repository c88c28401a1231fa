// Package generation produces the daily sentence from an OpenAI-compatible
// chat completions endpoint.
package generation

import (
	"context"
	"errors"
)

//go:generate mockgen -destination=mocks/mock_generator.go -package=mocks -source=generator.go Generator

// ErrGenerationFailed is returned once every attempt has failed
var ErrGenerationFailed = errors.New("text generation failed after all retries")

// ErrEmptyContent is returned when a response has no message content
var ErrEmptyContent = errors.New("generation response has no content")

// Generator turns a prompt into a single trimmed piece of text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
