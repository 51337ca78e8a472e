// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// HelperEnv must be "1" in the child's environment for RunHelperProcess to act.
const HelperEnv = "GO_WANT_HELPER_PROCESS"

// HelperArgs returns argv that re-runs the current test binary as a helper
// performing cmd.
func HelperArgs(cmd ...string) []string {
	return append([]string{os.Args[0], "-test.run=TestHelperProcess", "--"}, cmd...)
}

// HelperEnviron is the environment a helper child needs.
func HelperEnviron() map[string]string {
	return map[string]string{HelperEnv: "1"}
}

// RunHelperProcess performs the helper command found after "--" in os.Args
// and exits. It returns immediately when the process is not a helper child.
//
// Commands:
//
//	echo ARGS...   print ARGS joined by spaces and a newline
//	env NAME       print the value of NAME without a newline
//	pwd            print the working directory
//	fail           print "partial" on stdout and "boom" on stderr, exit 3
//	warn ARGS...   print ARGS on stdout and "careful" on stderr, exit 0
//	exit N         exit with status N
//	touch FILE     create FILE
//	sleep          sleep for ten seconds
func RunHelperProcess() {
	if os.Getenv(HelperEnv) != "1" {
		return
	}
	os.Exit(helperMain(os.Args, os.Stdout, os.Stderr))
}

func helperMain(argv []string, stdout, stderr io.Writer) int {
	args := argv
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintln(stderr, "no helper command")
		return 2
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "echo":
		fmt.Fprintln(stdout, strings.Join(rest, " "))
	case "env":
		if len(rest) == 1 {
			fmt.Fprint(stdout, os.Getenv(rest[0]))
		}
	case "pwd":
		wd, _ := os.Getwd()
		fmt.Fprint(stdout, wd)
	case "fail":
		fmt.Fprintln(stdout, "partial")
		fmt.Fprintln(stderr, "boom")
		return 3
	case "warn":
		fmt.Fprintln(stdout, strings.Join(rest, " "))
		fmt.Fprintln(stderr, "careful")
	case "exit":
		if len(rest) != 1 {
			return 2
		}
		code, err := strconv.Atoi(rest[0])
		if err != nil {
			return 2
		}
		return code
	case "touch":
		if len(rest) != 1 {
			return 2
		}
		if err := os.WriteFile(rest[0], []byte("artifact"), 0o644); err != nil {
			fmt.Fprintln(stderr, err)
			return 4
		}
	case "sleep":
		time.Sleep(10 * time.Second)
	default:
		fmt.Fprintf(stderr, "unknown helper command %q\n", cmd)
		return 2
	}
	return 0
}
