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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mycophonic/isomux"
)

var errNoFiles = errors.New("expected at least one file path")

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Print file header summary, track list, and metadata for one or more files",
		ArgsUsage: "<file> [file...]",
		Action:    runProbe,
	}
}

// runProbe opens each argument as an independent isomux session on its own
// file handle and probes them concurrently (§5): the parser itself is
// single-threaded per session, but nothing prevents one session per
// goroutine.
func runProbe(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return errNoFiles
	}

	logger := newLogger(cmd.Root().Bool("verbose"))
	width := terminalWidth()

	results := make([]string, len(paths))

	group, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex

	for i, path := range paths {
		group.Go(func() error {
			report, err := probeFile(gctx, path, logger, width)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				results[i] = fmt.Sprintf("%s: error: %v\n", path, err)

				return nil
			}

			results[i] = report

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("probing files: %w", err)
	}

	for _, r := range results {
		fmt.Fprint(os.Stdout, r) //nolint:errcheck // best-effort stdout write for a CLI report
	}

	return nil
}

func terminalWidth() int {
	const defaultWidth = 80

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return defaultWidth
	}

	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}

	return w
}

func probeFile(ctx context.Context, path string, logger *slog.Logger, width int) (string, error) {
	f, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified container files
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	file, err := isomux.Open(ctx, f, isomux.WithLogger(logger))
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	defer file.Close()

	return formatReport(path, file, width), nil
}

func formatReport(path string, file *isomux.File, width int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", path)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", min(width, len(path))))
	fmt.Fprintf(&b, "brand:      %s (minor %d, compatible %v)\n",
		file.MajorBrand(), file.MinorVersion(), file.CompatibleBrands())
	fmt.Fprintf(&b, "timescale:  %d\n", file.Timescale())
	fmt.Fprintf(&b, "duration:   %d\n", file.Duration())
	fmt.Fprintf(&b, "tracks:     %d\n", file.TrackCount())

	for _, t := range file.Tracks() {
		fmt.Fprintf(&b, "  track %d: %s, timescale=%d duration=%d samples=%d lang=%s\n",
			t.ID, t.Type, t.Timescale, t.Duration, t.SampleCount, t.Language)

		if t.Type == isomux.TrackVideo {
			fmt.Fprintf(&b, "    video: codec=%s %dx%d sps=%dB pps=%dB\n",
				t.VideoCodec, t.VideoWidth, t.VideoHeight, len(t.VideoSPS), len(t.VideoPPS))
		}

		if t.Type == isomux.TrackAudio {
			fmt.Fprintf(&b, "    audio: channels=%d sample_size=%d sample_rate=0x%08x\n",
				t.AudioChannelCount, t.AudioSampleSize, t.AudioSampleRate)
		}

		if t.HasReference {
			fmt.Fprintf(&b, "    tref: type=%s track=%d\n", t.ReferenceType, t.ReferenceTrackID)
		}
	}

	if meta := file.UdtaMetadata(); len(meta) > 0 {
		fmt.Fprintf(&b, "udta metadata: %v\n", meta)
	}

	if cover, ok := file.UdtaCoverArt(); ok {
		fmt.Fprintf(&b, "udta cover: %s, %d bytes at offset %d\n", cover.Format, cover.Size, cover.Offset)
	}

	if key, value, ok := file.Location(); ok {
		fmt.Fprintf(&b, "location: %s = %s\n", key, value)
	}

	return b.String()
}
