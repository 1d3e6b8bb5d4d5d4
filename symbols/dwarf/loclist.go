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
	"github.com/jetsetilly/dwarfsym/symbols"
)

// the DWARF expression opcodes acted on by the evaluator. section 7.7.1 of
// "DWARF4 Standard".
const (
	opAddr       = 0x03
	opDeref      = 0x06
	opConst1u    = 0x08
	opConst1s    = 0x09
	opConst2u    = 0x0a
	opConst2s    = 0x0b
	opConst4u    = 0x0c
	opConst4s    = 0x0d
	opConst8u    = 0x0e
	opConst8s    = 0x0f
	opConstu     = 0x10
	opConsts     = 0x11
	opPlus       = 0x22
	opPlusUconst = 0x23
	opReg0       = 0x50
	opReg31      = 0x6f
	opBreg0      = 0x70
	opBreg31     = 0x8f
	opRegx       = 0x90
	opFbreg      = 0x91
	opBregx      = 0x92
	opPiece      = 0x93
	opStackValue = 0x9f
)

// RegisterReader supplies the contents of a numbered machine register at the
// moment of evaluation. The boolean return is false if the register is not
// available.
type RegisterReader func(reg int) (uint64, bool)

// MemoryReader supplies the contents of target memory at the moment of
// evaluation. Size is the number of bytes to read, never more than eight.
// The boolean return is false if the address cannot be read.
type MemoryReader func(addr uint64, size int) (uint64, bool)

// evalContext is everything a location expression can draw on besides its
// own bytecode.
type evalContext struct {
	addressSize int
	normalize   Normalizer

	// the frame base of the enclosing subprogram. zero when evaluating the
	// frame base expression itself
	frameBase uint64

	// may be nil, in which case expressions that read registers are
	// unsupported
	registers RegisterReader

	// may be nil, in which case expressions that dereference memory are
	// unsupported
	memory MemoryReader
}

// evaluate runs one DWARF expression to completion.
//
// Expressions made of a lone register-name opcode locate the variable in
// that register. Every other supported expression leaves the variable's
// address on the stack, unless it ends in a stack-value opcode, in which
// case the stack holds the variable's value directly.
//
// An opcode outside the supported set stops evaluation with the
// UnsupportedExpression error. Callers treat the location as unknown rather
// than wrong.
func (ec evalContext) evaluate(expr []uint8) (symbols.Location, error) {
	if len(expr) == 0 {
		return symbols.Location{}, curated.Errorf(UnsupportedExpression, "empty expression")
	}

	// a register-name opcode is only meaningful as the whole expression
	if op := expr[0]; op >= opReg0 && op <= opReg31 && len(expr) == 1 {
		return symbols.Location{
			Kind:     symbols.LocationRegister,
			Register: int(op - opReg0),
		}, nil
	}
	if expr[0] == opRegx {
		cur := cursor{data: expr, pos: 1}
		reg, err := cur.uleb()
		if err != nil {
			return symbols.Location{}, err
		}
		if cur.remaining() == 0 {
			return symbols.Location{
				Kind:     symbols.LocationRegister,
				Register: int(reg),
			}, nil
		}
	}

	var stack []uint64
	push := func(v uint64) { stack = append(stack, v) }
	pop := func() (uint64, bool) {
		if len(stack) == 0 {
			return 0, false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, true
	}

	isValue := false
	pieces := 0

	cur := cursor{data: expr}
	for cur.remaining() > 0 {
		op, err := cur.u8()
		if err != nil {
			return symbols.Location{}, err
		}

		switch {
		case op == opAddr:
			v, err := cur.ulong(ec.addressSize)
			if err != nil {
				return symbols.Location{}, err
			}
			push(ec.normalize(v))

		case op == opDeref:
			a, ok := pop()
			if !ok {
				return symbols.Location{}, curated.Errorf(UnsupportedExpression, "stack underflow")
			}
			if ec.memory == nil {
				return symbols.Location{}, curated.Errorf(UnsupportedExpression, "no memory context")
			}
			v, ok := ec.memory(a, ec.addressSize)
			if !ok {
				return symbols.Location{}, curated.Errorf(UnsupportedExpression, "memory not readable")
			}
			push(v)

		case op == opConst1u:
			v, err := cur.u8()
			if err != nil {
				return symbols.Location{}, err
			}
			push(uint64(v))

		case op == opConst1s:
			v, err := cur.u8()
			if err != nil {
				return symbols.Location{}, err
			}
			push(uint64(int64(int8(v))))

		case op == opConst2u:
			v, err := cur.u16()
			if err != nil {
				return symbols.Location{}, err
			}
			push(uint64(v))

		case op == opConst2s:
			v, err := cur.u16()
			if err != nil {
				return symbols.Location{}, err
			}
			push(uint64(int64(int16(v))))

		case op == opConst4u:
			v, err := cur.u32()
			if err != nil {
				return symbols.Location{}, err
			}
			push(uint64(v))

		case op == opConst4s:
			v, err := cur.u32()
			if err != nil {
				return symbols.Location{}, err
			}
			push(uint64(int64(int32(v))))

		case op == opConst8u, op == opConst8s:
			v, err := cur.u64()
			if err != nil {
				return symbols.Location{}, err
			}
			push(v)

		case op == opConstu:
			v, err := cur.uleb()
			if err != nil {
				return symbols.Location{}, err
			}
			push(v)

		case op == opConsts:
			v, err := cur.sleb()
			if err != nil {
				return symbols.Location{}, err
			}
			push(uint64(v))

		case op == opPlus:
			a, ok := pop()
			if !ok {
				return symbols.Location{}, curated.Errorf(UnsupportedExpression, "stack underflow")
			}
			b, ok := pop()
			if !ok {
				return symbols.Location{}, curated.Errorf(UnsupportedExpression, "stack underflow")
			}
			push(a + b)

		case op == opPlusUconst:
			v, err := cur.uleb()
			if err != nil {
				return symbols.Location{}, err
			}
			a, ok := pop()
			if !ok {
				return symbols.Location{}, curated.Errorf(UnsupportedExpression, "stack underflow")
			}
			push(a + v)

		case op >= opBreg0 && op <= opBreg31:
			o, err := cur.sleb()
			if err != nil {
				return symbols.Location{}, err
			}
			if ec.registers == nil {
				return symbols.Location{}, curated.Errorf(UnsupportedExpression, "no register context")
			}
			r, ok := ec.registers(int(op - opBreg0))
			if !ok {
				return symbols.Location{}, curated.Errorf(UnsupportedExpression, "register not available")
			}
			push(r + uint64(o))

		case op == opBregx:
			reg, err := cur.uleb()
			if err != nil {
				return symbols.Location{}, err
			}
			o, err := cur.sleb()
			if err != nil {
				return symbols.Location{}, err
			}
			if ec.registers == nil {
				return symbols.Location{}, curated.Errorf(UnsupportedExpression, "no register context")
			}
			r, ok := ec.registers(int(reg))
			if !ok {
				return symbols.Location{}, curated.Errorf(UnsupportedExpression, "register not available")
			}
			push(r + uint64(o))

		case op == opFbreg:
			o, err := cur.sleb()
			if err != nil {
				return symbols.Location{}, err
			}
			push(ec.frameBase + uint64(o))

		case op == opPiece:
			// a single piece describing the whole object is equivalent to
			// the location already on the stack. composition from multiple
			// pieces is not attempted
			if _, err := cur.uleb(); err != nil {
				return symbols.Location{}, err
			}
			pieces++
			if pieces > 1 {
				return symbols.Location{}, curated.Errorf(UnsupportedExpression, "more than one piece")
			}

		case op == opStackValue:
			// "The DW_OP_stack_value operation specifies that the object
			// does not exist in memory but its value is nonetheless known
			// and is at the top of the DWARF expression stack". section
			// 2.6.1.1.4 of "DWARF4 Standard"
			isValue = true

		default:
			return symbols.Location{}, curated.Errorf(UnsupportedExpression, op)
		}
	}

	v, ok := pop()
	if !ok {
		return symbols.Location{}, curated.Errorf(UnsupportedExpression, "empty stack")
	}

	if isValue {
		return symbols.Location{Kind: symbols.LocationConstant, Value: int64(v)}, nil
	}
	return symbols.Location{Kind: symbols.LocationAddress, Address: v}, nil
}

// locationExpr returns the expression bytes for a location attribute that
// apply at the given normalized pc.
//
// In the exprloc and block classes the attribute is the expression. In the
// sec-offset class the attribute refers to a location list in .debug_loc and
// the entry covering the pc is selected.
func (sess *Session) locationExpr(sym *Symbol, pc uint64) ([]uint8, error) {
	v, ok := sym.AttrField(AttrLocation)
	if !ok {
		return nil, curated.Errorf(UnsupportedExpression, "no location")
	}

	switch v.Class {
	case ClassExprLoc, ClassBlock:
		return v.Block, nil
	case ClassSecOffset:
		return sess.loclistExpr(sym.Unit, v.Uint, pc)
	}

	return nil, curated.Errorf(UnsupportedExpression, v.Class)
}

// loclistExpr walks a location list in .debug_loc and returns the expression
// whose range covers the normalized pc.
func (sess *Session) loclistExpr(cu *CompileUnit, offset uint64, pc uint64) ([]uint8, error) {
	if offset > uint64(len(sess.sections.Loc)) {
		return nil, curated.Errorf(TruncatedSection, offset)
	}

	// ranges in a location list are relative to the base address of the
	// compilation unit, unless a base address selection entry changes it
	base, _, _ := cu.lowHigh()

	baseSelect := ^uint64(0)
	if cu.AddressSize == 4 {
		baseSelect = 0xffffffff
	}

	cur := cursor{data: sess.sections.Loc, pos: int(offset)}
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

		// an end of list entry
		if begin == 0 && end == 0 {
			break
		}

		length, err := cur.u16()
		if err != nil {
			return nil, err
		}
		expr, err := cur.block(int(length))
		if err != nil {
			return nil, err
		}

		// begin and end are offsets from the base address. base has already
		// been normalized so the comparison is in the process address space
		if pc >= base+begin && pc < base+end {
			return expr, nil
		}
	}

	return nil, curated.Errorf(UnsupportedExpression, "no covering range")
}
