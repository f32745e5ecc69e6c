// Package hostlink defines the interface for the surfaces over which the
// host voice-orchestration runtime reaches this plugin.
//
// Each link (HTTP, gRPC) implements this interface and receives synthesis
// requests on behalf of the engine. The engine doesn't care how requests
// arrive; it only works with the Handler contract.
package hostlink

import (
	"context"

	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/plugin"
)

// Handler processes one synthesis request. The engine provides this to each
// link.
type Handler func(ctx context.Context, req *plugin.Request) (*plugin.Result, error)

// Link is the interface every host-facing surface must implement.
type Link interface {
	// Name returns the link identifier (e.g. "http", "grpc").
	Name() string

	// Listen starts accepting requests and dispatches them to the handler.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the link, draining in-flight work.
	Close() error
}
