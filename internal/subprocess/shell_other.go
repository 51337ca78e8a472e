// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package subprocess

import (
	"context"
	"os/exec"
)

// shellCommand runs line with sh -c; args are bound to $1, $2, ... and $0 is
// "sh".
func shellCommand(ctx context.Context, line string, args []string) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", append([]string{"-c", line, "sh"}, args...)...)
}
