package notification

import (
	"context"
	"time"
)

type Sender interface {
	CanSend() bool
	Send(ctx context.Context, title string, description string, runTime time.Duration, fields []Field, dryRun bool) error
	BuildField(options BuildOptions) Field
	Name() string
}

type Field struct {
	Name  string
	Value string
}

// BuildOptions describes one resolved source of a pass.
type BuildOptions struct {
	Path   string
	Source string
	Target string
	Status string
}
