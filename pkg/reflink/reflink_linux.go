package reflink

import (
	"context"
	"fmt"
	"strings"
)

// clone relies on cp to share extents between src and dst. --reflink=always
// makes cp fail instead of falling back to a full copy.
func (c *CommandCloner) clone(ctx context.Context, src string, dstDir string) error {
	out, err := c.run(ctx, "cp", "--archive", "-r", "--reflink=always", src, dstDir)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("cp: %w: %s", err, msg)
		}
		return fmt.Errorf("cp: %w", err)
	}

	return nil
}
