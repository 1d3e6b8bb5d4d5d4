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

// builder assembles hand-written section data for the tests in this
// package. all multi-byte values are little-endian, matching the cursor.
type builder struct {
	b []uint8
}

func (bld *builder) u8(v uint8) {
	bld.b = append(bld.b, v)
}

func (bld *builder) u16(v uint16) {
	bld.b = append(bld.b, uint8(v), uint8(v>>8))
}

func (bld *builder) u32(v uint32) {
	bld.b = append(bld.b, uint8(v), uint8(v>>8), uint8(v>>16), uint8(v>>24))
}

func (bld *builder) uleb(v uint64) {
	for {
		c := uint8(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		bld.b = append(bld.b, c)
		if v == 0 {
			return
		}
	}
}

func (bld *builder) sleb(v int64) {
	for {
		c := uint8(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			bld.b = append(bld.b, c)
			return
		}
		bld.b = append(bld.b, c|0x80)
	}
}

func (bld *builder) str(s string) {
	bld.b = append(bld.b, s...)
	bld.b = append(bld.b, 0x00)
}

func (bld *builder) mark() int {
	return len(bld.b)
}

func (bld *builder) reserveU32() int {
	p := len(bld.b)
	bld.u32(0)
	return p
}

func (bld *builder) patchU32(pos int, v uint32) {
	bld.b[pos] = uint8(v)
	bld.b[pos+1] = uint8(v >> 8)
	bld.b[pos+2] = uint8(v >> 16)
	bld.b[pos+3] = uint8(v >> 24)
}

// abbreviation codes used by the main fixture.
const (
	abbCompileUnit = 1
	abbBaseType    = 2
	abbPointer     = 3
	abbTypedef     = 4
	abbStruct      = 5
	abbMember      = 6
	abbSubprogram  = 7
	abbParameter   = 8
	abbVariable    = 9
	abbEnum        = 10
	abbEnumerator  = 11
	abbArray       = 12
	abbSubrange    = 13
)

// fixtureAbbrev builds the abbreviation table matching fixtureInfo.
func fixtureAbbrev() []uint8 {
	bld := &builder{}

	decl := func(code uint64, tag Tag, children bool, specs ...uint64) {
		bld.uleb(code)
		bld.uleb(uint64(tag))
		if children {
			bld.u8(0x01)
		} else {
			bld.u8(0x00)
		}
		for i := 0; i < len(specs); i += 2 {
			bld.uleb(specs[i])
			bld.uleb(specs[i+1])
		}
		bld.uleb(0)
		bld.uleb(0)
	}

	decl(abbCompileUnit, TagCompileUnit, true,
		uint64(AttrName), uint64(formStrp),
		uint64(AttrProducer), uint64(formString),
		uint64(AttrLowpc), uint64(formAddr),
		uint64(AttrHighpc), uint64(formData4),
		uint64(AttrStmtList), uint64(formSecOffset),
	)
	decl(abbBaseType, TagBaseType, false,
		uint64(AttrName), uint64(formString),
		uint64(AttrByteSize), uint64(formData1),
	)
	decl(abbPointer, TagPointerType, false)
	decl(abbTypedef, TagTypedef, false,
		uint64(AttrName), uint64(formString),
		uint64(AttrType), uint64(formRef4),
	)
	decl(abbStruct, TagStructType, true,
		uint64(AttrName), uint64(formString),
		uint64(AttrByteSize), uint64(formData1),
	)
	decl(abbMember, TagMember, false,
		uint64(AttrName), uint64(formString),
		uint64(AttrType), uint64(formRef4),
		uint64(AttrDataMemberLoc), uint64(formData1),
	)
	decl(abbSubprogram, TagSubprogram, true,
		uint64(AttrName), uint64(formString),
		uint64(AttrLowpc), uint64(formAddr),
		uint64(AttrHighpc), uint64(formData4),
	)
	decl(abbParameter, TagFormalParameter, false,
		uint64(AttrName), uint64(formString),
		uint64(AttrType), uint64(formRef4),
		uint64(AttrLocation), uint64(formExprloc),
	)
	decl(abbVariable, TagVariable, false,
		uint64(AttrName), uint64(formString),
		uint64(AttrType), uint64(formRef4),
		uint64(AttrLocation), uint64(formExprloc),
	)
	decl(abbEnum, TagEnumerationType, true,
		uint64(AttrName), uint64(formString),
		uint64(AttrByteSize), uint64(formData1),
	)
	decl(abbEnumerator, TagEnumerator, false,
		uint64(AttrName), uint64(formString),
		uint64(AttrConstValue), uint64(formSdata),
	)
	decl(abbArray, TagArrayType, true,
		uint64(AttrType), uint64(formRef4),
	)
	decl(abbSubrange, TagSubrangeType, false,
		uint64(AttrUpperBound), uint64(formData1),
	)

	bld.uleb(0) // end of abbreviations

	return bld.b
}

// fixtureInfo builds one compilation unit. DWARF version 4, 32-bit format,
// 4 byte addresses. The unit describes:
//
//	int                         base type
//	(unnamed pointer)           no type attribute, acquires void
//	typedef number -> int       forward reference to the base type
//	struct coords {x, y}        two int members at offsets 0 and 4
//	main(argc) {total}          0x1000 to 0x1100, frame and memory locations
//	enum colour {red,green,blue}
//	typedef vector -> int[4]    array sized through its subrange
//	typedef broken -> 0xeeee    reference that resolves to nothing
//
// The base type is declared after the typedef that refers to it, so the
// fixture also exercises forward references.
func fixtureInfo() []uint8 {
	bld := &builder{}

	lengthPos := bld.reserveU32()
	bodyStart := bld.mark()

	bld.u16(4) // version
	bld.u32(0) // abbreviation offset
	bld.u8(4)  // address size

	bld.uleb(abbCompileUnit)
	bld.u32(0) // strp offset of "test.c"
	bld.str("GCC 10.2.1 -O2")
	bld.u32(0x1000) // low pc
	bld.u32(0x100)  // high pc as offset
	bld.u32(0)      // stmt list

	// the target offset is patched once the base type has been written
	bld.uleb(abbTypedef)
	bld.str("number")
	numberTargetPos := bld.reserveU32()

	intOffset := bld.mark()
	bld.uleb(abbBaseType)
	bld.str("int")
	bld.u8(4)

	bld.patchU32(numberTargetPos, uint32(intOffset))

	bld.uleb(abbPointer)

	bld.uleb(abbStruct)
	bld.str("coords")
	bld.u8(8)
	{
		bld.uleb(abbMember)
		bld.str("x")
		bld.u32(uint32(intOffset))
		bld.u8(0)

		bld.uleb(abbMember)
		bld.str("y")
		bld.u32(uint32(intOffset))
		bld.u8(4)

		bld.uleb(0) // end of struct children
	}

	bld.uleb(abbSubprogram)
	bld.str("main")
	bld.u32(0x1000)
	bld.u32(0x100)
	{
		bld.uleb(abbParameter)
		bld.str("argc")
		bld.u32(uint32(intOffset))
		bld.uleb(2) // expression length
		bld.u8(opFbreg)
		bld.sleb(-4)

		bld.uleb(abbVariable)
		bld.str("total")
		bld.u32(uint32(intOffset))
		bld.uleb(5)
		bld.u8(opAddr)
		bld.u32(0x2000)

		bld.uleb(0) // end of subprogram children
	}

	bld.uleb(abbEnum)
	bld.str("colour")
	bld.u8(1)
	{
		bld.uleb(abbEnumerator)
		bld.str("red")
		bld.sleb(0)

		bld.uleb(abbEnumerator)
		bld.str("green")
		bld.sleb(1)

		bld.uleb(abbEnumerator)
		bld.str("blue")
		bld.sleb(2)

		bld.uleb(0) // end of enumeration children
	}

	// the array has no byte size of its own
	arrayOffset := bld.mark()
	bld.uleb(abbArray)
	bld.u32(uint32(intOffset))
	{
		bld.uleb(abbSubrange)
		bld.u8(3) // upper bound, four elements

		bld.uleb(0) // end of array children
	}

	bld.uleb(abbTypedef)
	bld.str("vector")
	bld.u32(uint32(arrayOffset))

	bld.uleb(abbTypedef)
	bld.str("broken")
	bld.u32(0xeeee)

	bld.uleb(0) // end of unit children

	bld.patchU32(lengthPos, uint32(bld.mark()-bodyStart))

	return bld.b
}

// fixtureLine builds the line number program referenced by the fixture
// unit's stmt list attribute. Three rows:
//
//	0x1000  src/test.c line 2
//	0x1004  src/test.c line 3
//	0x1100  end of sequence
func fixtureLine() []uint8 {
	bld := &builder{}

	lengthPos := bld.reserveU32()
	bodyStart := bld.mark()

	bld.u16(4) // version

	headerLengthPos := bld.reserveU32()
	headerStart := bld.mark()

	bld.u8(1)    // minimum instruction length
	bld.u8(1)    // maximum operations per instruction
	bld.u8(1)    // default is_stmt
	bld.u8(0xfb) // line base, -5
	bld.u8(14)   // line range
	bld.u8(13)   // opcode base
	for _, n := range []uint8{0, 1, 1, 1, 1, 0, 0, 0, 1, 0, 0, 1} {
		bld.u8(n)
	}

	bld.str("src")
	bld.u8(0x00) // end of include directories

	bld.str("test.c")
	bld.uleb(1)  // directory index
	bld.uleb(0)  // mtime
	bld.uleb(0)  // file length
	bld.u8(0x00) // end of file names

	bld.patchU32(headerLengthPos, uint32(bld.mark()-headerStart))

	// set address 0x1000
	bld.u8(0x00)
	bld.uleb(5)
	bld.u8(lneSetAddress)
	bld.u32(0x1000)

	// special opcode. address advance zero, line advance one
	bld.u8(13 + 6)

	// advance pc by 4 and the line by 1, set the column, then copy
	bld.u8(lnsAdvancePC)
	bld.uleb(4)
	bld.u8(lnsAdvanceLine)
	bld.sleb(1)
	bld.u8(lnsSetColumn)
	bld.uleb(9)
	bld.u8(lnsCopy)

	// advance to 0x1100 and end the sequence
	bld.u8(lnsAdvancePC)
	bld.uleb(0xfc)
	bld.u8(0x00)
	bld.uleb(1)
	bld.u8(lneEndSequence)

	bld.patchU32(lengthPos, uint32(bld.mark()-bodyStart))

	return bld.b
}

// fixtureSections assembles the complete section set for the fixture unit.
func fixtureSections() Sections {
	str := &builder{}
	str.str("test.c")

	return Sections{
		Info:   fixtureInfo(),
		Abbrev: fixtureAbbrev(),
		Str:    str.b,
		Line:   fixtureLine(),
	}
}
