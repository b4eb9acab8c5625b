// Package genai invokes the hosted text-generation service through a pool
// of interchangeable credentials with retry, backoff and failure isolation.
package genai

import (
	"context"
	"log/slog"
)

// Generator is the one external capability the rest of the system consumes:
// a resilient generation call.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// Service wires the client and the invoker into a Generator. Construct once
// at startup and share.
type Service struct {
	client  *Client
	invoker *Invoker
	logger  *slog.Logger
}

// NewService builds the resilient generation service.
func NewService(client *Client, invoker *Invoker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, invoker: invoker, logger: logger}
}

// Generate runs one generation request through the invoker: the credential
// used for each attempt is whatever the pool considers current at that
// moment.
func (s *Service) Generate(ctx context.Context, prompt, system string) (string, error) {
	out, err := s.invoker.Invoke(ctx, func(ctx context.Context, credential string) (string, error) {
		return s.client.Generate(ctx, credential, prompt, system)
	})
	if err != nil {
		s.logger.Warn("generation failed", "error", err)
		return "", err
	}
	return out, nil
}
