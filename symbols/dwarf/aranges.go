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
	"sort"

	"github.com/jetsetilly/dwarfsym/curated"
)

// arange is one contiguous span of machine code belonging to a compilation
// unit. addresses are normalized. high is the first address past the span.
type arange struct {
	low  uint64
	high uint64
	cu   *CompileUnit
}

// arangeIndex maps normalized addresses to compilation units.
type arangeIndex struct {
	spans []arange
}

// find the compilation unit covering the normalized address, or nil.
func (idx arangeIndex) find(addr uint64) *CompileUnit {
	i := sort.Search(len(idx.spans), func(i int) bool {
		return idx.spans[i].high > addr
	})
	if i == len(idx.spans) {
		return nil
	}
	if s := idx.spans[i]; addr >= s.low {
		return s.cu
	}
	return nil
}

// parseAranges builds the address index from the .debug_aranges section.
// Units not described by the section fall back to the low/high bounds of
// their root symbol. A session with no aranges section at all still gets a
// working index that way.
func (sess *Session) parseAranges() (arangeIndex, error) {
	var idx arangeIndex

	// units reachable by their offset into .debug_info
	units := make(map[int64]*CompileUnit, len(sess.Units))
	for _, cu := range sess.Units {
		units[cu.Start] = cu
	}

	covered := make(map[*CompileUnit]bool)

	cur := cursor{data: sess.sections.Aranges}
	for cur.remaining() > 0 {
		setStart := cur.pos

		setLength, is64, err := cur.length()
		if err != nil {
			return idx, err
		}
		end := cur.pos + int(setLength)
		if end > len(cur.data) {
			return idx, curated.Errorf(TruncatedSection, setStart)
		}

		version, err := cur.u16()
		if err != nil {
			return idx, err
		}
		if version != 2 {
			// unknown set version. skip the set rather than abandon the
			// whole section
			cur.pos = end
			continue
		}

		infoOffset, err := cur.offset(is64)
		if err != nil {
			return idx, err
		}

		addressSize, err := cur.u8()
		if err != nil {
			return idx, err
		}
		if addressSize != 4 && addressSize != 8 {
			return idx, curated.Errorf(MalformedLength, addressSize)
		}

		segmentSize, err := cur.u8()
		if err != nil {
			return idx, err
		}
		if segmentSize != 0 {
			cur.pos = end
			continue
		}

		// "The first tuple following the header in each set begins at an
		// offset that is a multiple of the size of a single tuple". section
		// 6.1.2 of "DWARF4 Standard"
		tuple := int(addressSize) * 2
		if over := (cur.pos - setStart) % tuple; over != 0 {
			if _, err := cur.block(tuple - over); err != nil {
				return idx, err
			}
		}

		cu := units[int64(infoOffset)]

		for cur.pos < end {
			address, err := cur.ulong(int(addressSize))
			if err != nil {
				return idx, err
			}
			length, err := cur.ulong(int(addressSize))
			if err != nil {
				return idx, err
			}
			if address == 0 && length == 0 {
				break
			}
			if cu == nil {
				continue
			}
			low := sess.normalize(address)
			idx.spans = append(idx.spans, arange{
				low:  low,
				high: low + length,
				cu:   cu,
			})
			covered[cu] = true
		}

		cur.pos = end
	}

	for _, cu := range sess.Units {
		if covered[cu] {
			continue
		}
		for _, s := range sess.symbolSpans(cu.Root) {
			idx.spans = append(idx.spans, arange{low: s.low, high: s.high, cu: cu})
		}
	}

	sort.Slice(idx.spans, func(i, j int) bool {
		return idx.spans[i].low < idx.spans[j].low
	})

	return idx, nil
}
