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
	"testing"

	"github.com/jetsetilly/dwarfsym/curated"
	"github.com/jetsetilly/dwarfsym/test"
)

func TestCursor_reads(t *testing.T) {
	cur := cursor{data: []uint8{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}}

	v8, err := cur.u8()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v8, uint8(0x01))

	v16, err := cur.u16()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v16, uint16(0x0302))

	v32, err := cur.u32()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v32, uint32(0x07060504))

	test.ExpectEquality(t, cur.remaining(), 1)

	// not enough data left for another word
	_, err = cur.u32()
	test.DemandFailure(t, err)
	test.ExpectEquality(t, curated.Is(err, TruncatedSection), true)
}

func TestCursor_length(t *testing.T) {
	// 32-bit format
	cur := cursor{data: []uint8{0x10, 0x00, 0x00, 0x00}}
	l, is64, err := cur.length()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, l, uint64(0x10))
	test.ExpectEquality(t, is64, false)

	// 64-bit format. the escape value followed by the real length
	cur = cursor{data: []uint8{
		0xff, 0xff, 0xff, 0xff,
		0x20, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}}
	l, is64, err = cur.length()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, l, uint64(0x20))
	test.ExpectEquality(t, is64, true)

	// reserved values
	cur = cursor{data: []uint8{0xf0, 0xff, 0xff, 0xff}}
	_, _, err = cur.length()
	test.DemandFailure(t, err)
	test.ExpectEquality(t, curated.Is(err, MalformedLength), true)
}

func TestCursor_strings(t *testing.T) {
	cur := cursor{data: []uint8{'a', 'b', 'c', 0x00, 'd', 'e', 0x00}}

	s, err := cur.string()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, s, "abc")

	// stringAt does not move the cursor
	s, err = cur.stringAt(4)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, s, "de")
	test.ExpectEquality(t, cur.pos, 4)

	// a string without a terminator is truncated
	cur = cursor{data: []uint8{'a', 'b'}}
	_, err = cur.string()
	test.DemandFailure(t, err)
	test.ExpectEquality(t, curated.Is(err, TruncatedSection), true)
}

func TestCursor_leb(t *testing.T) {
	cur := cursor{data: []uint8{0xe5, 0x8e, 0x26}}
	v, err := cur.uleb()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, uint64(624485))

	cur = cursor{data: []uint8{0x9b, 0xf1, 0x59}}
	s, err := cur.sleb()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, s, int64(-624485))
}

func TestCursor_block(t *testing.T) {
	cur := cursor{data: []uint8{0x01, 0x02, 0x03}}

	b, err := cur.block(2)
	test.DemandSuccess(t, err)
	test.ExpectDeepEquality(t, b, []uint8{0x01, 0x02})

	_, err = cur.block(2)
	test.DemandFailure(t, err)
}
