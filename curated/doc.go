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

// Package curated provides a way of creating errors that can be compared by
// the pattern they were created with, rather than by sentinel values or type
// assertions.
//
// The symbol packages declare their error patterns as exported constants.
// Callers that want to distinguish, say, a truncated section from an unknown
// form can do so with:
//
//	if curated.Is(err, dwarf.TruncatedSection) {
//		...
//	}
//
// The Has() function performs the same test over a chain of wrapped curated
// errors.
package curated
