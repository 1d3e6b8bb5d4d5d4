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

	"github.com/jetsetilly/dwarfsym/curated"
)

// CompileUnit is the debug information for one translation unit.
//
// A CompileUnit is immutable once the parse session that created it has
// completed.
type CompileUnit struct {
	// DWARF version of the unit. versions 2 to 4 are accepted
	Version int

	// true if the unit uses the 64-bit DWARF format. note that this is
	// independent of the address size of the target
	Is64 bool

	// size in bytes of a target address. 4 or 8
	AddressSize int

	// the unit's extent in .debug_info. Start addresses the first byte of
	// the unit header, End the first byte past the unit
	Start int64
	End   int64

	// the compiler that produced the unit, parsed from the producer
	// attribute of the root symbol
	Producer Producer

	// the root symbol of the unit. almost always a CompileUnit tag
	Root *Symbol

	// the synthetic void type for this unit. also present as the first
	// child of Root
	Void *Symbol

	// every symbol of the unit in the order it was parsed
	symbols []*Symbol

	// the abbreviation dictionary used by this unit
	abbrev *abbrevTable

	// decoded .debug_line rows for this unit. nil if the unit has no line
	// program
	lines *lineTable
}

// parseUnit reads one compilation unit from .debug_info, starting at the
// cursor's current position.
//
// On error a partial CompileUnit is still returned whenever the unit header
// was read far enough to know where the next unit begins. The caller uses
// the End field to resynchronize.
func (sess *Session) parseUnit(ctx context.Context, cur *cursor) (*CompileUnit, error) {
	cu := &CompileUnit{
		Start: int64(cur.pos),
	}

	unitLength, is64, err := cur.length()
	if err != nil {
		return nil, err
	}
	cu.Is64 = is64
	cu.End = int64(cur.pos) + int64(unitLength)

	if cu.End > int64(len(cur.data)) {
		return cu, curated.Errorf(TruncatedSection, cu.Start)
	}

	version, err := cur.u16()
	if err != nil {
		return cu, err
	}
	if version < 2 || version > 4 {
		return cu, curated.Errorf(MalformedLength, version)
	}
	cu.Version = int(version)

	abbrevOffset, err := cur.offset(is64)
	if err != nil {
		return cu, err
	}

	addressSize, err := cur.u8()
	if err != nil {
		return cu, err
	}
	if addressSize != 4 && addressSize != 8 {
		return cu, curated.Errorf(MalformedLength, addressSize)
	}
	cu.AddressSize = int(addressSize)

	cu.abbrev, err = newAbbrevTable(sess.sections.Abbrev, abbrevOffset)
	if err != nil {
		return cu, err
	}

	// the parent stack. DIEs with children push themselves, the null entry
	// pops
	var parents []*Symbol

	for int64(cur.pos) < cu.End {
		if err := ctx.Err(); err != nil {
			return cu, curated.Errorf(Cancelled, err)
		}

		offset := int64(cur.pos)

		code, err := cur.uleb()
		if err != nil {
			return cu, err
		}

		// code zero closes the current parent
		if code == 0 {
			if len(parents) > 0 {
				parents = parents[:len(parents)-1]
			}
			continue // DIE loop
		}

		abb, err := cu.abbrev.lookup(code)
		if err != nil {
			return cu, err
		}

		sym := &Symbol{
			Tag:    abb.tag,
			Offset: offset,
			Attr:   make(map[Attr]Value, len(abb.specs)),
			Unit:   cu,
		}

		for _, spec := range abb.specs {
			v, err := sess.decodeForm(cur, cu, spec.form, 0)
			if err != nil {
				return cu, err
			}

			// a duplicated attribute keeps the last value
			sym.Attr[spec.attr] = v
		}

		if len(parents) > 0 {
			sym.Parent = parents[len(parents)-1]
			sym.Parent.Children = append(sym.Parent.Children, sym)
		} else if cu.Root == nil {
			cu.Root = sym
		}

		cu.symbols = append(cu.symbols, sym)

		if abb.hasChildren {
			// an entry that declares children but is immediately followed
			// by the null entry has a valid, empty child list. nothing
			// special is needed to support that here
			parents = append(parents, sym)
		}
	}

	if cu.Root == nil {
		return cu, curated.Errorf(TruncatedSection, cu.Start)
	}

	return cu, nil
}

// maximum number of indirections allowed when decoding an Indirect form.
const maxIndirect = 4

// decodeForm reads one attribute value encoded with the given form.
func (sess *Session) decodeForm(cur *cursor, cu *CompileUnit, f form, depth int) (Value, error) {
	switch f {
	case formAddr:
		// normalization to a runtime address happens in the resolution
		// pass, once, after the unit has parsed
		v, err := cur.ulong(cu.AddressSize)
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassAddress, Uint: v}, nil

	case formData1:
		v, err := cur.u8()
		if err != nil {
			return Value{}, err
		}
		return constant(uint64(v)), nil

	case formData2:
		v, err := cur.u16()
		if err != nil {
			return Value{}, err
		}
		return constant(uint64(v)), nil

	case formData4:
		v, err := cur.u32()
		if err != nil {
			return Value{}, err
		}
		return constant(uint64(v)), nil

	case formData8:
		v, err := cur.u64()
		if err != nil {
			return Value{}, err
		}
		return constant(v), nil

	case formUdata:
		v, err := cur.uleb()
		if err != nil {
			return Value{}, err
		}
		return constant(v), nil

	case formSdata:
		v, err := cur.sleb()
		if err != nil {
			return Value{}, err
		}
		return signedConstant(v), nil

	case formBlock1:
		n, err := cur.u8()
		if err != nil {
			return Value{}, err
		}
		b, err := cur.block(int(n))
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassBlock, Block: b}, nil

	case formBlock2:
		n, err := cur.u16()
		if err != nil {
			return Value{}, err
		}
		b, err := cur.block(int(n))
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassBlock, Block: b}, nil

	case formBlock4:
		n, err := cur.u32()
		if err != nil {
			return Value{}, err
		}
		b, err := cur.block(int(n))
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassBlock, Block: b}, nil

	case formBlock:
		n, err := cur.uleb()
		if err != nil {
			return Value{}, err
		}
		b, err := cur.block(int(n))
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassBlock, Block: b}, nil

	case formExprloc:
		n, err := cur.uleb()
		if err != nil {
			return Value{}, err
		}
		b, err := cur.block(int(n))
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassExprLoc, Block: b}, nil

	case formString:
		s, err := cur.string()
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassString, Str: s}, nil

	case formStrp:
		o, err := cur.offset(cu.Is64)
		if err != nil {
			return Value{}, err
		}
		str := cursor{data: sess.sections.Str}
		s, err := str.stringAt(o)
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassString, Str: s}, nil

	case formFlag:
		v, err := cur.u8()
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassFlag, Uint: uint64(v)}, nil

	case formFlagPresent:
		// the attribute's presence is the value. no bytes on the wire
		return Value{Class: ClassFlag, Uint: 1}, nil

	case formRef1:
		v, err := cur.u8()
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassReference, Uint: uint64(cu.Start) + uint64(v)}, nil

	case formRef2:
		v, err := cur.u16()
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassReference, Uint: uint64(cu.Start) + uint64(v)}, nil

	case formRef4:
		v, err := cur.u32()
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassReference, Uint: uint64(cu.Start) + uint64(v)}, nil

	case formRef8:
		v, err := cur.u64()
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassReference, Uint: uint64(cu.Start) + v}, nil

	case formRefUdata:
		v, err := cur.uleb()
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassReference, Uint: uint64(cu.Start) + v}, nil

	case formRefAddr:
		// in DWARF version 2 this form is the size of an address. in later
		// versions it is the size of a section offset
		var v uint64
		var err error
		if cu.Version == 2 {
			v, err = cur.ulong(cu.AddressSize)
		} else {
			v, err = cur.offset(cu.Is64)
		}
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassReference, Uint: v}, nil

	case formSecOffset:
		v, err := cur.offset(cu.Is64)
		if err != nil {
			return Value{}, err
		}
		return Value{Class: ClassSecOffset, Uint: v}, nil

	case formRefSig8:
		// type signatures refer into .debug_types, which this reader does
		// not process. consume the bytes and leave the value invalid
		if _, err := cur.u64(); err != nil {
			return Value{}, err
		}
		return Value{Class: ClassInvalid}, nil

	case formIndirect:
		if depth >= maxIndirect {
			return Value{}, curated.Errorf(UnknownForm, f)
		}
		indirect, err := cur.uleb()
		if err != nil {
			return Value{}, err
		}
		return sess.decodeForm(cur, cu, form(indirect), depth+1)
	}

	return Value{}, curated.Errorf(UnknownForm, f)
}

// resolve is the first post-parse pass over a unit: reference attributes are
// replaced with resolved references, address attributes are normalized, and
// pointer and typedef symbols without a type acquire the unit's void type.
//
// References that cannot be found in the session's index are left as they
// are. Consumers treat them as absent.
func (cu *CompileUnit) resolve(index map[int64]*Symbol, normalize Normalizer) {
	for _, sym := range cu.symbols {
		for a, v := range sym.Attr {
			switch v.Class {
			case ClassReference:
				if target, ok := index[int64(v.Uint)]; ok {
					sym.Attr[a] = Value{Class: ClassResolvedReference, Sym: target, Uint: v.Uint}
				}
			case ClassAddress:
				sym.Attr[a] = Value{Class: ClassAddress, Uint: normalize(v.Uint)}
			}
		}

		switch sym.Tag {
		case TagPointerType, TagTypedef:
			if _, ok := sym.Attr[AttrType]; !ok {
				sym.Attr[AttrType] = Value{Class: ClassResolvedReference, Sym: cu.Void}
			}
		}
	}
}

// mergeSpecifications is the second post-parse pass: a symbol that completes
// another through a specification attribute copies its attributes onto the
// referent. The referring symbol keeps its own attributes so it remains
// addressable by offset.
//
// Must run after resolve() for every unit of the session. The specification
// edge is itself a reference.
func (cu *CompileUnit) mergeSpecifications() {
	for _, sym := range cu.symbols {
		v, ok := sym.Attr[AttrSpecification]
		if !ok || v.Class != ClassResolvedReference {
			continue
		}
		for a, av := range sym.Attr {
			if a == AttrSpecification {
				continue
			}
			v.Sym.Attr[a] = av
		}
	}
}

// injectVoid creates the synthetic void type for the unit and inserts it as
// the first child of the unit root. The symbol exists so that pointer and
// typedef entries always have something to refer to.
func (cu *CompileUnit) injectVoid() {
	cu.Void = &Symbol{
		Tag:    TagVoidType,
		Offset: voidOffset,
		Attr: map[Attr]Value{
			AttrName:     {Class: ClassString, Str: "void"},
			AttrByteSize: constant(0),
		},
		Parent: cu.Root,
		Unit:   cu,
	}
	cu.Root.Children = append([]*Symbol{cu.Void}, cu.Root.Children...)
	cu.symbols = append(cu.symbols, cu.Void)
}

// lowHigh returns the address range of the unit root, if it has one. the
// second return value follows the same convention as the DWARF high pc: the
// first address past the range.
func (cu *CompileUnit) lowHigh() (uint64, uint64, bool) {
	return lowHighOf(cu.Root)
}
