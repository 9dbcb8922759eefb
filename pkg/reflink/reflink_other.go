//go:build !linux

package reflink

import (
	"context"
	"fmt"
)

func (c *CommandCloner) clone(_ context.Context, src string, dstDir string) error {
	return fmt.Errorf("clone %q into %q: %w", src, dstDir, ErrUnsupported)
}
