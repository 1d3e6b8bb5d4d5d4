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
	"fmt"
	"strings"
)

// ValueClass says which arm of the Value variant is live.
type ValueClass int

// List of ValueClass values. The set is closed, fixed by the DWARF
// specification.
const (
	ClassInvalid ValueClass = iota
	ClassAddress
	ClassConstant
	ClassBlock
	ClassString
	ClassFlag
	ClassReference
	ClassResolvedReference
	ClassExprLoc
	ClassSecOffset
)

func (c ValueClass) String() string {
	switch c {
	case ClassAddress:
		return "Address"
	case ClassConstant:
		return "Constant"
	case ClassBlock:
		return "Block"
	case ClassString:
		return "String"
	case ClassFlag:
		return "Flag"
	case ClassReference:
		return "Reference"
	case ClassResolvedReference:
		return "ResolvedReference"
	case ClassExprLoc:
		return "ExprLoc"
	case ClassSecOffset:
		return "SecOffset"
	}
	return "Invalid"
}

// Value is the decoded value of one attribute of a Symbol. Only the fields
// indicated by the Class are meaningful.
//
//	ClassAddress            Uint (already normalized)
//	ClassConstant           Uint and Int (always both set)
//	ClassBlock              Block
//	ClassString             Str
//	ClassFlag               Uint (zero or one)
//	ClassReference          Uint (absolute offset into .debug_info)
//	ClassResolvedReference  Sym
//	ClassExprLoc            Block
//	ClassSecOffset          Uint
type Value struct {
	Class ValueClass
	Uint  uint64
	Int   int64
	Block []uint8
	Str   string
	Sym   *Symbol
}

func (v Value) String() string {
	switch v.Class {
	case ClassAddress, ClassSecOffset, ClassReference:
		return fmt.Sprintf("%s(%#08x)", v.Class, v.Uint)
	case ClassConstant:
		return fmt.Sprintf("%s(%d)", v.Class, v.Int)
	case ClassBlock, ClassExprLoc:
		return fmt.Sprintf("%s(%d bytes)", v.Class, len(v.Block))
	case ClassString:
		return fmt.Sprintf("%s(%s)", v.Class, v.Str)
	case ClassFlag:
		return fmt.Sprintf("%s(%v)", v.Class, v.Uint != 0)
	case ClassResolvedReference:
		if v.Sym != nil {
			return fmt.Sprintf("%s(%s)", v.Class, v.Sym)
		}
	}
	return v.Class.String()
}

// constant creates an unsigned constant Value.
func constant(v uint64) Value {
	return Value{Class: ClassConstant, Uint: v, Int: int64(v)}
}

// signedConstant creates a signed constant Value.
func signedConstant(v int64) Value {
	return Value{Class: ClassConstant, Uint: uint64(v), Int: v}
}

// voidOffset is the offset given to the synthetic void symbol of a compile
// unit. no real symbol can have this offset.
const voidOffset = int64(-1)

// Symbol is one entry in the debug information tree: a tag, the attribute
// values the producer emitted for it, and its place in the tree.
type Symbol struct {
	Tag Tag

	// absolute position of the entry within .debug_info. the synthetic void
	// symbol has an offset of voidOffset
	Offset int64

	// decoded attribute values keyed by attribute. if a producer emits the
	// same attribute twice on one entry the last value wins
	Attr map[Attr]Value

	// tree edges. children are in the order they appear in .debug_info
	Parent   *Symbol
	Children []*Symbol

	// the compilation unit the symbol was parsed from
	Unit *CompileUnit
}

// AttrField returns the value of the attribute and whether the attribute is
// present. An unresolved reference is reported as absent.
func (sym *Symbol) AttrField(a Attr) (Value, bool) {
	v, ok := sym.Attr[a]
	if !ok || v.Class == ClassInvalid || v.Class == ClassReference {
		return Value{}, false
	}
	return v, true
}

// Name returns the name attribute of the symbol, or the empty string.
func (sym *Symbol) Name() string {
	if v, ok := sym.AttrField(AttrName); ok {
		return v.Str
	}
	return ""
}

// TypeRef returns the symbol referenced by the type attribute, or nil.
func (sym *Symbol) TypeRef() *Symbol {
	if v, ok := sym.AttrField(AttrType); ok && v.Class == ClassResolvedReference {
		return v.Sym
	}
	return nil
}

// IsVoid returns true if the symbol is the synthetic void type of its
// compilation unit.
func (sym *Symbol) IsVoid() bool {
	return sym.Offset == voidOffset
}

func (sym *Symbol) String() string {
	s := strings.Builder{}
	s.WriteString(sym.Tag.String())
	if n := sym.Name(); n != "" {
		s.WriteString(fmt.Sprintf(" %s", n))
	}
	if sym.IsVoid() {
		s.WriteString(" (synthetic)")
	} else {
		s.WriteString(fmt.Sprintf(" @%#08x", sym.Offset))
	}
	return s.String()
}
