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

const (
	// MaxCodeSize is the EIP-170 cap on deployed contract code.
	MaxCodeSize = 24576
	// MaxInitCodeSize is the EIP-3860 cap on initcode.
	MaxInitCodeSize = 2 * MaxCodeSize
	// CallCreateDepth is the default nesting limit for calls and creations.
	CallCreateDepth = 1024
)
