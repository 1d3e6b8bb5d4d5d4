// This file is part of Dwarfsym.
//
// Dwarfsym is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Dwarfsym is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Dwarfsym.  If not, see <https://www.gnu.org/licenses/>.

// Package dwarf reads the debugging sections of an executable and serves
// symbol, type, line and variable queries over them. Versions 2, 3 and 4 of
// the DWARF format are understood.
//
// A Session is created from the raw section data with NewSession(). The
// session owns the symbol tree of every compilation unit. A Provider wraps a
// session and implements the symbols.Provider interface for consumers that
// do not want to know about DWARF at all.
//
// The reader is deliberately tolerant. A malformed compilation unit is
// dropped and noted in the session's diagnostics, a reference that cannot be
// resolved makes the referring attribute absent, and a location expression
// using an opcode outside the supported set reports the variable's location
// as unknown. None of these conditions fail the parse.
//
// The .debug_types section of DWARF version 4 is not read. Type signature
// references into it decode as absent attributes.
package dwarf
