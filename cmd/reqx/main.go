// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command reqx sends HTTP requests through a reqx request manager
// configured from a file and the environment.
package main

import (
	"os"

	"github.com/gogama/reqx/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
