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

package box

import "errors"

// Box tree parsing error sentinels. These map onto the error taxonomy of
// the public package (see errors.go at the module root); each maps to the
// public sentinel of the same name, except ErrNoChunkOffsetBox, which is
// reported as ErrInvalidArgument.
//
//revive:disable:exported
var (
	ErrInvalidSize      = errors.New("box: invalid size")
	ErrAlreadyDefined   = errors.New("box: sample table already defined")
	ErrIO               = errors.New("box: short read or seek failure")
	ErrOutOfMemory      = errors.New("box: allocation failed")
	ErrUnsupported      = errors.New("box: unsupported feature")
	ErrInvalidArgument  = errors.New("box: invalid argument")
	ErrNoChunkOffsetBox = errors.New("box: track has neither stco nor co64")
)
