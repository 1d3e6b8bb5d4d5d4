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

package dwarf

// Error patterns for the dwarf package. To be used with the curated package:
//
//	curated.Is(err, dwarf.TruncatedSection)
//
// Errors in the first group abandon the compilation unit being parsed.
// Errors in the second group are recovered from locally: the attribute or
// variable is treated as absent. Errors in the third group are returned by
// the provider functions. No error is fatal to a parse session.
const (
	MalformedLength  = "malformed length: %v"
	UnknownForm      = "unknown form: %v"
	UnknownOpcode    = "unknown opcode: %v"
	TruncatedSection = "truncated section: %v"

	UnresolvedReference   = "unresolved reference: %v"
	UnsupportedExpression = "unsupported expression: %v"

	UnknownType = "unknown type: %v"
	NoLineInfo  = "no line information: %v"

	Cancelled = "cancelled: %v"
)
