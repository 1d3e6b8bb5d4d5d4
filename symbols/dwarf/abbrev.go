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

// abbrevSpec is one (attribute, form) pair in an abbreviation declaration.
type abbrevSpec struct {
	attr Attr
	form form
}

// abbrevEntry is the decoded shape of one class of debug information entry:
// the tag, whether entries of this shape own children, and the ordered list
// of attributes and their encodings.
type abbrevEntry struct {
	code        uint64
	tag         Tag
	hasChildren bool
	specs       []abbrevSpec
}

// abbrevTable decodes the slice of .debug_abbrev belonging to one
// compilation unit.
//
// Decoding is lazy. The declarations are scanned forward only as far as
// needed to satisfy the requested code, with every declaration seen along
// the way memoized. The scan resumes from where it left off on the next
// unknown code, so a full pass over the declarations happens at most once.
type abbrevTable struct {
	cur      cursor
	entries  map[uint64]*abbrevEntry
	finished bool
}

func newAbbrevTable(data []uint8, offset uint64) (*abbrevTable, error) {
	if offset > uint64(len(data)) {
		return nil, curated.Errorf(TruncatedSection, offset)
	}
	return &abbrevTable{
		cur:     cursor{data: data, pos: int(offset)},
		entries: make(map[uint64]*abbrevEntry),
	}, nil
}

// lookup the abbreviation declaration for a code local to this table's
// compilation unit.
func (tbl *abbrevTable) lookup(code uint64) (*abbrevEntry, error) {
	if e, ok := tbl.entries[code]; ok {
		return e, nil
	}
	if tbl.finished {
		return nil, curated.Errorf(UnknownForm, code)
	}

	for tbl.cur.remaining() > 0 {
		c, err := tbl.cur.uleb()
		if err != nil {
			return nil, err
		}

		// code zero terminates the abbreviations for this compilation unit
		if c == 0 {
			tbl.finished = true
			break
		}

		tag, err := tbl.cur.uleb()
		if err != nil {
			return nil, err
		}

		children, err := tbl.cur.u8()
		if err != nil {
			return nil, err
		}

		e := &abbrevEntry{
			code:        c,
			tag:         Tag(tag),
			hasChildren: children != 0x00,
		}

		// attribute specifications are terminated by a (0, 0) pair
		for {
			attr, err := tbl.cur.uleb()
			if err != nil {
				return nil, err
			}
			frm, err := tbl.cur.uleb()
			if err != nil {
				return nil, err
			}
			if attr == 0 && frm == 0 {
				break
			}
			e.specs = append(e.specs, abbrevSpec{attr: Attr(attr), form: form(frm)})
		}

		tbl.entries[c] = e

		if c == code {
			return e, nil
		}
	}

	return nil, curated.Errorf(UnknownForm, code)
}
