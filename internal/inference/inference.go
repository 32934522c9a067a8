package inference

import (
	"context"

	"github.com/pliro-dev/pliro/internal/config"
)

// Client produces schema-conforming completions. CompleteStructured constrains
// the reply to the JSON schema generated from target's type, unmarshals the
// reply into target and returns the raw payload for callers that persist it
// verbatim.
type Client interface {
	CompleteStructured(ctx context.Context, prompt string, schemaName string, target any) (string, error)
}

// Default is the process-wide inference client, set by Init and replaced with
// a fake in tests.
var Default Client

func Init(cfg *config.Config) {
	Default = NewOpenAIClient(cfg)
}
