/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package main

import "github.com/acrlabs/skpack/pkg/cli"

func main() {
	cli.Execute()
}
