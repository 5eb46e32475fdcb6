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

// Package main provides the mp4probe CLI for inspecting ISOBMFF containers.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
	"github.com/urfave/cli/v3"

	"github.com/mycophonic/isomux/version"
)

func newLogger(verbose bool) *slog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	out := colorable.NewColorable(os.Stderr)
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		out = os.Stderr
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()

	return slog.New(slogzerolog.Option{Logger: &zlog}.NewZerologHandler())
}

func main() {
	ctx := context.Background()

	appl := &cli.Command{
		Name:    version.Name(),
		Usage:   "Inspect ISO Base Media File Format (MP4/MOV) containers",
		Version: version.Version() + " (" + version.Commit() + " - " + version.Date() + ")",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "emit box-tree parse tracing to stderr",
			},
		},
		Commands: []*cli.Command{
			probeCommand(),
			treeCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)

		os.Exit(1)
	}
}
