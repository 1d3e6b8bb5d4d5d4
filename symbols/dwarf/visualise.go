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

import (
	"io"

	"github.com/bradleyjkemp/memviz"
)

// Visualise writes a graphviz representation of the symbol tree of one
// compilation unit to w. Intended for debugging the parser itself rather
// than the program being parsed.
//
// The output can be very large for real-world compilation units.
func (cu *CompileUnit) Visualise(w io.Writer) {
	memviz.Map(w, cu.Root)
}
