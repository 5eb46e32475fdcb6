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
	"errors"
	"fmt"

	"github.com/mycophonic/isomux/internal/box"
)

// Public error taxonomy (§7). Each sentinel wraps the matching
// internal/box error so errors.Is(err, isomux.ErrInvalidSize) works across
// the package boundary without callers ever importing internal/box.
var (
	// ErrInvalidSize: a box header or table declares a size smaller than
	// the minimum required for its fields, or exceeds the parent's
	// remaining budget.
	ErrInvalidSize = errors.New("isomux: invalid size")

	// ErrAlreadyDefined: a sample-table box appears twice under the same track.
	ErrAlreadyDefined = errors.New("isomux: box already defined")

	// ErrIO: short read, seek failure, or a payload parser consumed more
	// bytes than the box allotted.
	ErrIO = errors.New("isomux: io failure")

	// ErrOutOfMemory: allocation failure for a box-tree node, table, or blob.
	ErrOutOfMemory = errors.New("isomux: allocation failed")

	// ErrUnsupported: a feature this implementation does not support.
	ErrUnsupported = errors.New("isomux: unsupported feature")

	// ErrInvalidArgument: null/invalid argument, or a query against an
	// unopened or failed session.
	ErrInvalidArgument = errors.New("isomux: invalid argument")
)

// wrapParseErr maps an internal/box error onto the public taxonomy,
// keeping the original error reachable by errors.Is and errors.As for
// diagnostics.
func wrapParseErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, box.ErrInvalidSize):
		return fmt.Errorf("%w: %w", ErrInvalidSize, err)
	case errors.Is(err, box.ErrAlreadyDefined):
		return fmt.Errorf("%w: %w", ErrAlreadyDefined, err)
	case errors.Is(err, box.ErrOutOfMemory):
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	case errors.Is(err, box.ErrUnsupported):
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	case errors.Is(err, box.ErrInvalidArgument), errors.Is(err, box.ErrNoChunkOffsetBox):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	case errors.Is(err, box.ErrIO):
		return fmt.Errorf("%w: %w", ErrIO, err)
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}
