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

	"github.com/jetsetilly/dwarfsym/curated"
	"github.com/jetsetilly/dwarfsym/test"
)

func TestSession(t *testing.T) {
	sess, err := NewSession(context.Background(), fixtureSections(), Config{})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(sess.Units), 1)
	test.ExpectEquality(t, len(sess.Diagnostics), 0)

	cu := sess.Units[0]
	test.ExpectEquality(t, cu.Version, 4)
	test.ExpectEquality(t, cu.Is64, false)
	test.ExpectEquality(t, cu.AddressSize, 4)
	test.ExpectEquality(t, cu.Root.Tag, TagCompileUnit)

	// the name arrives through the string section
	test.ExpectEquality(t, cu.Root.Name(), "test.c")
}

func TestSession_producer(t *testing.T) {
	sess, err := NewSession(context.Background(), fixtureSections(), Config{})
	test.DemandSuccess(t, err)

	p := sess.Units[0].Producer
	test.ExpectEquality(t, p.Name, "GCC")
	test.DemandSuccess(t, p.Version != nil)
	test.ExpectEquality(t, p.Version.String(), "10.2.1")
	test.ExpectEquality(t, p.Optimised, true)
}

func TestSession_voidInjection(t *testing.T) {
	sess, err := NewSession(context.Background(), fixtureSections(), Config{})
	test.DemandSuccess(t, err)

	cu := sess.Units[0]
	test.DemandSuccess(t, cu.Void != nil)
	test.ExpectEquality(t, cu.Void.IsVoid(), true)
	test.ExpectEquality(t, cu.Void.Name(), "void")

	// the void type is the first child of the unit root
	test.DemandSuccess(t, len(cu.Root.Children) > 0)
	test.ExpectEquality(t, cu.Root.Children[0], cu.Void)
}

// find returns the first symbol of the unit with the given tag and name.
func find(cu *CompileUnit, tag Tag, name string) *Symbol {
	for _, sym := range cu.symbols {
		if sym.Tag == tag && sym.Name() == name {
			return sym
		}
	}
	return nil
}

func TestSession_resolution(t *testing.T) {
	sess, err := NewSession(context.Background(), fixtureSections(), Config{})
	test.DemandSuccess(t, err)
	cu := sess.Units[0]

	// the typedef is declared before the base type it refers to
	number := find(cu, TagTypedef, "number")
	test.DemandSuccess(t, number != nil)
	ref := number.TypeRef()
	test.DemandSuccess(t, ref != nil)
	test.ExpectEquality(t, ref.Name(), "int")
	test.ExpectEquality(t, ref.Tag, TagBaseType)

	// a pointer with no type attribute points at void
	var pointer *Symbol
	for _, sym := range cu.symbols {
		if sym.Tag == TagPointerType {
			pointer = sym
		}
	}
	test.DemandSuccess(t, pointer != nil)
	ref = pointer.TypeRef()
	test.DemandSuccess(t, ref != nil)
	test.ExpectEquality(t, ref.IsVoid(), true)
}

func TestSession_unresolvedReference(t *testing.T) {
	sess, err := NewSession(context.Background(), fixtureSections(), Config{})
	test.DemandSuccess(t, err)
	cu := sess.Units[0]

	// a reference to an offset with no symbol stays unresolved and the
	// attribute reads as absent
	broken := find(cu, TagTypedef, "broken")
	test.DemandSuccess(t, broken != nil)
	_, ok := broken.AttrField(AttrType)
	test.ExpectEquality(t, ok, false)
	test.DemandSuccess(t, broken.TypeRef() == nil)
}

func TestSession_symbolIndex(t *testing.T) {
	sess, err := NewSession(context.Background(), fixtureSections(), Config{})
	test.DemandSuccess(t, err)
	cu := sess.Units[0]

	number := find(cu, TagTypedef, "number")
	test.DemandSuccess(t, number != nil)
	test.ExpectEquality(t, sess.SymbolAt(number.Offset), number)

	// synthetic symbols are not in the index
	test.DemandSuccess(t, sess.SymbolAt(cu.Void.Offset) == nil)
}

func TestSession_normalization(t *testing.T) {
	// addresses shifted into a different part of the address space
	sess, err := NewSession(context.Background(), fixtureSections(), Config{
		Normalize: func(addr uint64) uint64 { return addr + 0x80000000 },
	})
	test.DemandSuccess(t, err)
	cu := sess.Units[0]

	low, high, ok := cu.lowHigh()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, low, uint64(0x80001000))
	test.ExpectEquality(t, high, uint64(0x80001100))

	test.ExpectEquality(t, sess.UnitForAddress(0x80001050), cu)
	test.DemandSuccess(t, sess.UnitForAddress(0x1050) == nil)
}

// badVersionUnit builds a unit with an unsupported version number. the unit
// length is correct so a parse session can skip over it.
func badVersionUnit() []uint8 {
	bld := &builder{}
	lengthPos := bld.reserveU32()
	bodyStart := bld.mark()
	bld.u16(5) // version
	bld.u32(0)
	bld.u8(4)
	bld.uleb(abbCompileUnit)
	bld.u32(0)
	bld.str("bad.c")
	bld.u32(0)
	bld.u32(0)
	bld.u32(0)
	bld.uleb(0)
	bld.patchU32(lengthPos, uint32(bld.mark()-bodyStart))
	return bld.b
}

func TestSession_errorContainment(t *testing.T) {
	sections := fixtureSections()

	// a malformed unit between two good ones
	good := fixtureInfo()
	var info []uint8
	info = append(info, good...)
	info = append(info, badVersionUnit()...)
	info = append(info, good...)
	sections.Info = info

	sess, err := NewSession(context.Background(), sections, Config{})
	test.DemandSuccess(t, err)

	// the good units survive. the bad unit becomes a diagnostic
	test.ExpectEquality(t, len(sess.Units), 2)
	test.ExpectEquality(t, len(sess.Diagnostics), 1)

	for _, cu := range sess.Units {
		test.ExpectEquality(t, cu.Root.Name(), "test.c")
	}
}

func TestSession_diagnosticsCap(t *testing.T) {
	sections := fixtureSections()

	// three malformed units produce three diagnostics, but only one is
	// retained
	bad := badVersionUnit()
	var info []uint8
	info = append(info, bad...)
	info = append(info, bad...)
	info = append(info, bad...)
	sections.Info = info

	sess, err := NewSession(context.Background(), sections, Config{DiagnosticsCap: 1})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(sess.Units), 0)
	test.ExpectEquality(t, len(sess.Diagnostics), 1)
}

func TestSession_cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess, err := NewSession(ctx, fixtureSections(), Config{})
	test.DemandFailure(t, err)
	test.ExpectEquality(t, curated.Is(err, Cancelled), true)

	// the session is still returned, with the cancellation recorded
	test.DemandSuccess(t, sess != nil)
	test.DemandSuccess(t, len(sess.Diagnostics) > 0)
}

func TestSession_emptySections(t *testing.T) {
	sess, err := NewSession(context.Background(), Sections{}, Config{})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(sess.Units), 0)
}
