/*
   Copyright Mycophonic.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/mycophonic/isomux"
)

func treeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "Print the indented box tree of a single file",
		ArgsUsage: "<file>",
		Action:    runTree,
	}
}

// runTree reproduces the demuxer's debug box-tree walk: an indented
// four-cc and size per box, in depth-first visitation order.
func runTree(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) != 1 {
		return fmt.Errorf("%w: tree takes exactly one file", errNoFiles)
	}

	logger := newLogger(cmd.Root().Bool("verbose"))

	f, err := os.Open(paths[0]) //nolint:gosec // CLI tool opens user-specified container files
	if err != nil {
		return fmt.Errorf("opening %s: %w", paths[0], err)
	}
	defer f.Close()

	file, err := isomux.Open(ctx, f, isomux.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", paths[0], err)
	}
	defer file.Close()

	for _, node := range file.BoxTree() {
		fmt.Fprintf(os.Stdout, "%s%s (%d bytes)\n", strings.Repeat("  ", node.Depth), node.Type, node.Size)
	}

	return nil
}
