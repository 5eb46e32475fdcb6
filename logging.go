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

package isomux

import (
	"log/slog"

	"github.com/mycophonic/isomux/internal/box"
)

// Option configures an Open call. The zero value set (no options) parses
// silently: isomux never touches slog.Default.
type Option = box.Option

// WithLogger attaches a structured logger used for parse-time tracing.
// isomux only calls the logger it is given; it never configures handlers
// itself, leaving that to the caller (the CLI wires zerolog via
// samber/slog-zerolog).
func WithLogger(l *slog.Logger) Option {
	return box.WithLogger(l)
}
