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
	"github.com/jetsetilly/dwarfsym/curated"
)

// span is one contiguous address range. addresses are normalized and high
// follows the DWARF high pc convention.
type span struct {
	low  uint64
	high uint64
}

// rangeSpans reads a range list from .debug_ranges. Used for symbols whose
// machine code is not contiguous, where a low/high pc pair cannot describe
// the extent.
func (sess *Session) rangeSpans(cu *CompileUnit, offset uint64) ([]span, error) {
	if offset > uint64(len(sess.sections.Ranges)) {
		return nil, curated.Errorf(TruncatedSection, offset)
	}

	// entries are relative to the base address of the compilation unit
	// until a base address selection entry says otherwise
	base, _, _ := cu.lowHigh()

	baseSelect := ^uint64(0)
	if cu.AddressSize == 4 {
		baseSelect = 0xffffffff
	}

	var spans []span

	cur := cursor{data: sess.sections.Ranges, pos: int(offset)}
	for {
		begin, err := cur.ulong(cu.AddressSize)
		if err != nil {
			return nil, err
		}
		end, err := cur.ulong(cu.AddressSize)
		if err != nil {
			return nil, err
		}

		if begin == baseSelect {
			base = sess.normalize(end)
			continue
		}

		if begin == 0 && end == 0 {
			break
		}

		spans = append(spans, span{low: base + begin, high: base + end})
	}

	return spans, nil
}

// symbolSpans returns the address ranges of a symbol, from its low/high pc
// pair or its range list. A nil return means the symbol has no range
// information at all.
func (sess *Session) symbolSpans(sym *Symbol) []span {
	if low, high, ok := lowHighOf(sym); ok {
		return []span{{low: low, high: high}}
	}

	if v, ok := sym.AttrField(AttrRanges); ok && v.Class == ClassSecOffset {
		spans, err := sess.rangeSpans(sym.Unit, v.Uint)
		if err != nil {
			return nil
		}
		return spans
	}

	return nil
}
