// SPDX-License-Identifier: MPL-2.0

//go:build windows

package subprocess

import (
	"context"
	"os/exec"
	"strings"
	"syscall"
)

// shellCommand runs line with cmd /S /C. cmd has no positional parameters,
// so args are appended to the line verbatim. The command line is set
// directly because cmd does not follow the argv quoting rules exec applies.
func shellCommand(ctx context.Context, line string, args []string) *exec.Cmd {
	if len(args) > 0 {
		line += " " + strings.Join(args, " ")
	}
	cmd := exec.CommandContext(ctx, "cmd")
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: `cmd /S /C "` + line + `"`}
	return cmd
}
