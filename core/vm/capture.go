// Copyright 2026 The Humanode Core Developers
// This file is part of the Humanode EVM library.
//
// The Humanode EVM library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.
//
// The Humanode EVM library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the Humanode EVM library. If not, see <http://www.gnu.org/licenses/>.

package vm

// Capture is the outcome of an operation that either resolved to a final
// value or suspended and must be resumed by an external actor. Exactly one
// of the two arms is set. After a trap is observed, the machine that raised
// it must not be advanced until the matching feedback has been delivered.
type Capture[E, T any] struct {
	exit    E
	trap    T
	trapped bool
}

// CaptureExit wraps a fully resolved result.
func CaptureExit[E, T any](exit E) Capture[E, T] {
	return Capture[E, T]{exit: exit}
}

// CaptureTrap wraps a resumption token for the orchestrator to resolve.
func CaptureTrap[E, T any](trap T) Capture[E, T] {
	return Capture[E, T]{trap: trap, trapped: true}
}

// Exit returns the resolved value, if the operation completed.
func (c Capture[E, T]) Exit() (E, bool) {
	return c.exit, !c.trapped
}

// Trap returns the resumption token, if the operation suspended.
func (c Capture[E, T]) Trap() (T, bool) {
	return c.trap, c.trapped
}

// Trapped reports whether the operation suspended.
func (c Capture[E, T]) Trapped() bool {
	return c.trapped
}
