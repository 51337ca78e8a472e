// SPDX-License-Identifier: MPL-2.0

// Command satchel packages Python projects as native apps.
package main

import cmd "github.com/satchel-build/satchel/cmd/satchel"

func main() {
	cmd.Execute()
}
