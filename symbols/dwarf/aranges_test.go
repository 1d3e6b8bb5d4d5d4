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
	"context"
	"testing"

	"github.com/jetsetilly/dwarfsym/test"
)

// fixtureAranges builds an aranges set describing the fixture unit, with a
// range that differs from the unit's low/high pc pair so the tests can tell
// which source the index used.
func fixtureAranges() []uint8 {
	bld := &builder{}

	lengthPos := bld.reserveU32()
	bodyStart := bld.mark()

	bld.u16(2) // set version
	bld.u32(0) // debug info offset of the described unit
	bld.u8(4)  // address size
	bld.u8(0)  // segment size

	// pad to a tuple boundary
	for bld.mark()%8 != 0 {
		bld.u8(0)
	}

	bld.u32(0x7000) // address
	bld.u32(0x0100) // length

	bld.u32(0)
	bld.u32(0)

	bld.patchU32(lengthPos, uint32(bld.mark()-bodyStart))

	return bld.b
}

func TestAranges(t *testing.T) {
	sections := fixtureSections()
	sections.Aranges = fixtureAranges()

	sess, err := NewSession(context.Background(), sections, Config{})
	test.DemandSuccess(t, err)
	cu := sess.Units[0]

	// the section takes precedence over the unit's own address range
	test.ExpectEquality(t, sess.UnitForAddress(0x7050), cu)
	test.DemandSuccess(t, sess.UnitForAddress(0x1050) == nil)

	// first and last addresses of the span
	test.ExpectEquality(t, sess.UnitForAddress(0x7000), cu)
	test.ExpectEquality(t, sess.UnitForAddress(0x70ff), cu)
	test.DemandSuccess(t, sess.UnitForAddress(0x7100) == nil)
}

func TestAranges_fallback(t *testing.T) {
	// no aranges section at all. the index falls back to the low/high
	// bounds of the unit root
	sess, err := NewSession(context.Background(), fixtureSections(), Config{})
	test.DemandSuccess(t, err)
	cu := sess.Units[0]

	test.ExpectEquality(t, sess.UnitForAddress(0x1000), cu)
	test.ExpectEquality(t, sess.UnitForAddress(0x10ff), cu)
	test.DemandSuccess(t, sess.UnitForAddress(0x1100) == nil)
	test.DemandSuccess(t, sess.UnitForAddress(0x0fff) == nil)
}
