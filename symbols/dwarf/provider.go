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
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/jetsetilly/dwarfsym/curated"
	"github.com/jetsetilly/dwarfsym/symbols"
)

// funcSpan is one function of the function index. high follows the DWARF
// high pc convention.
type funcSpan struct {
	low  uint64
	high uint64
	name string
	sym  *Symbol
}

// Provider serves the symbols.Provider contract from a parse session.
//
// The preferred method of initialisation is through the NewProvider()
// function. All functions are safe for concurrent use.
type Provider struct {
	sess *Session

	// type symbols in traversal order. the position in the slice is the
	// symbol's TypeID
	byID []*Symbol
	ids  map[*Symbol]symbols.TypeID

	// functions sorted by entry address
	functions []funcSpan

	// name lookup is built on first use
	nameOnce sync.Once
	byName   map[string]symbols.TypeID

	// may be nil. required only for location expressions that read machine
	// registers
	registers RegisterReader

	// may be nil. required only for location expressions that dereference
	// target memory
	memory MemoryReader
}

var _ symbols.Provider = (*Provider)(nil)

// NewProvider indexes the session for symbol queries. The RegisterReader and
// MemoryReader may be nil.
func NewProvider(sess *Session, registers RegisterReader, memory MemoryReader) *Provider {
	prv := &Provider{
		sess:      sess,
		ids:       make(map[*Symbol]symbols.TypeID),
		registers: registers,
		memory:    memory,
	}

	for _, cu := range sess.Units {
		for _, sym := range cu.symbols {
			if isTypeTag(sym.Tag) {
				prv.ids[sym] = symbols.TypeID(len(prv.byID))
				prv.byID = append(prv.byID, sym)
			}

			if sym.Tag == TagSubprogram {
				low, high, ok := lowHighOf(sym)
				if !ok {
					continue
				}
				name := sym.Name()
				if name == "" {
					if v, nok := sym.AttrField(AttrLinkageName); nok {
						name = v.Str
					}
				}
				if name == "" {
					continue
				}
				prv.functions = append(prv.functions, funcSpan{
					low:  low,
					high: high,
					name: name,
					sym:  sym,
				})
			}
		}
	}

	slices.SortFunc(prv.functions, func(a, b funcSpan) int {
		switch {
		case a.low < b.low:
			return -1
		case a.low > b.low:
			return 1
		}
		return 0
	})

	return prv
}

func isTypeTag(t Tag) bool {
	switch t {
	case TagVoidType, TagBaseType, TagPointerType, TagArrayType,
		TagStructType, TagUnionType, TagClassType, TagEnumerationType,
		TagSubroutineType, TagTypedef, TagConstType, TagVolatileType:
		return true
	}
	return false
}

func (prv *Provider) symbolForID(id symbols.TypeID) (*Symbol, bool) {
	if id < 0 || int(id) >= len(prv.byID) {
		return nil, false
	}
	return prv.byID[id], true
}

func (prv *Provider) idForSymbol(sym *Symbol) (symbols.TypeID, bool) {
	id, ok := prv.ids[sym]
	return id, ok
}

// TypeTag implements the symbols.Provider interface.
func (prv *Provider) TypeTag(id symbols.TypeID) symbols.TagKind {
	sym, ok := prv.symbolForID(id)
	if !ok {
		return symbols.TagUnknown
	}

	switch sym.Tag {
	case TagVoidType:
		return symbols.TagVoid
	case TagBaseType:
		return symbols.TagBase
	case TagPointerType:
		return symbols.TagPointer
	case TagArrayType:
		return symbols.TagArray
	case TagStructType:
		return symbols.TagStruct
	case TagUnionType:
		return symbols.TagUnion
	case TagClassType:
		return symbols.TagClass
	case TagEnumerationType:
		return symbols.TagEnum
	case TagSubroutineType:
		return symbols.TagFunction
	case TagTypedef:
		return symbols.TagTypedef
	case TagConstType, TagVolatileType:
		// type qualifiers are all reported the same way
		return symbols.TagConst
	}

	return symbols.TagUnknown
}

// maximum number of typedef and qualifier links followed when sizing a type.
// guards against reference cycles in hostile debug data
const maxTypeChase = 32

// TypeSize implements the symbols.Provider interface.
func (prv *Provider) TypeSize(id symbols.TypeID) (int64, error) {
	sym, ok := prv.symbolForID(id)
	if !ok {
		return 0, curated.Errorf(UnknownType, id)
	}
	return prv.sizeOf(sym, maxTypeChase)
}

func (prv *Provider) sizeOf(sym *Symbol, chase int) (int64, error) {
chaseLoop:
	for i := 0; i < chase; i++ {
		if v, ok := sym.AttrField(AttrByteSize); ok {
			return v.Int, nil
		}

		switch sym.Tag {
		case TagPointerType:
			// a pointer without an explicit size is the size of a target
			// address
			return int64(sym.Unit.AddressSize), nil

		case TagArrayType:
			// an array without an explicit size is the size of its element
			// type multiplied by the element count of every dimension
			elem := sym.TypeRef()
			if elem == nil {
				return 0, curated.Errorf(UnknownType, sym.Offset)
			}
			sz, err := prv.sizeOf(elem, chase-i-1)
			if err != nil {
				return 0, err
			}
			for _, c := range sym.Children {
				if c.Tag != TagSubrangeType {
					continue
				}
				n, ok := subrangeCount(c)
				if !ok {
					return 0, curated.Errorf(UnknownType, sym.Offset)
				}
				sz *= n
			}
			return sz, nil

		case TagTypedef, TagConstType, TagVolatileType:
			next := sym.TypeRef()
			if next == nil {
				return 0, curated.Errorf(UnknownType, sym.Offset)
			}
			sym = next
			continue
		}

		break chaseLoop
	}

	return 0, curated.Errorf(UnknownType, sym.Offset)
}

// subrangeCount returns the number of elements in one array dimension. The
// count attribute is preferred. Section 5.11 of "DWARF4 Standard": "the
// default lower bound ... for languages in the C family is 0", so an upper
// bound of n means n+1 elements.
func subrangeCount(sym *Symbol) (int64, bool) {
	if v, ok := sym.AttrField(AttrCount); ok {
		return v.Int, true
	}
	if v, ok := sym.AttrField(AttrUpperBound); ok {
		return v.Int + 1, true
	}
	return 0, false
}

// TypeID implements the symbols.Provider interface. If more than one type
// shares a name the one earliest in the traversal order wins.
func (prv *Provider) TypeID(name string) (symbols.TypeID, error) {
	prv.nameOnce.Do(func() {
		prv.byName = make(map[string]symbols.TypeID)
		for id, sym := range prv.byID {
			n := sym.Name()
			if n == "" {
				continue
			}
			if _, ok := prv.byName[n]; !ok {
				prv.byName[n] = symbols.TypeID(id)
			}
		}
	})

	id, ok := prv.byName[name]
	if !ok {
		return symbols.NoTypeID, curated.Errorf(UnknownType, name)
	}
	return id, nil
}

// TypeNames returns the names of every named type known to the provider, in
// alphabetical order.
func (prv *Provider) TypeNames() []string {
	// force the name index
	_, _ = prv.TypeID("")

	names := maps.Keys(prv.byName)
	slices.Sort(names)
	return names
}

// TypeName implements the symbols.Provider interface.
func (prv *Provider) TypeName(id symbols.TypeID) (string, error) {
	sym, ok := prv.symbolForID(id)
	if !ok {
		return "", curated.Errorf(UnknownType, id)
	}
	return sym.Name(), nil
}

// ElementType implements the symbols.Provider interface.
func (prv *Provider) ElementType(id symbols.TypeID) (symbols.TypeID, error) {
	sym, ok := prv.symbolForID(id)
	if !ok {
		return symbols.NoTypeID, curated.Errorf(UnknownType, id)
	}

	switch sym.Tag {
	case TagPointerType, TagArrayType, TagTypedef, TagConstType, TagVolatileType:
		ref := sym.TypeRef()
		if ref == nil {
			return symbols.NoTypeID, curated.Errorf(UnknownType, id)
		}
		eid, ok := prv.idForSymbol(ref)
		if !ok {
			return symbols.NoTypeID, curated.Errorf(UnknownType, id)
		}
		return eid, nil
	}

	return symbols.NoTypeID, curated.Errorf(UnknownType, id)
}

// fields returns the member symbols of a composite type, or the enumerator
// symbols of an enumeration.
func (prv *Provider) fields(sym *Symbol) []*Symbol {
	var memberTag Tag
	switch sym.Tag {
	case TagStructType, TagUnionType, TagClassType:
		memberTag = TagMember
	case TagEnumerationType:
		memberTag = TagEnumerator
	default:
		return nil
	}

	var flds []*Symbol
	for _, c := range sym.Children {
		if c.Tag == memberTag && c.Name() != "" {
			flds = append(flds, c)
		}
	}
	return flds
}

// FieldNames implements the symbols.Provider interface.
func (prv *Provider) FieldNames(id symbols.TypeID) ([]string, error) {
	sym, ok := prv.symbolForID(id)
	if !ok {
		return nil, curated.Errorf(UnknownType, id)
	}

	flds := prv.fields(sym)
	if flds == nil {
		return nil, curated.Errorf(UnknownType, id)
	}

	names := make([]string, 0, len(flds))
	for _, f := range flds {
		names = append(names, f.Name())
	}
	return names, nil
}

// Field implements the symbols.Provider interface.
func (prv *Provider) Field(id symbols.TypeID, name string) (symbols.Field, error) {
	sym, ok := prv.symbolForID(id)
	if !ok {
		return symbols.Field{}, curated.Errorf(UnknownType, id)
	}

	for _, f := range prv.fields(sym) {
		if f.Name() != name {
			continue
		}

		fld := symbols.Field{Name: name}

		if ref := f.TypeRef(); ref != nil {
			if fid, ok := prv.idForSymbol(ref); ok {
				fld.Type = fid
			} else {
				fld.Type = symbols.NoTypeID
			}
		} else {
			fld.Type = symbols.NoTypeID
		}

		if sym.Tag == TagEnumerationType {
			if v, ok := f.AttrField(AttrConstValue); ok {
				fld.Offset = v.Int
			}
			return fld, nil
		}

		offset, err := memberOffset(f)
		if err != nil {
			return symbols.Field{}, err
		}
		fld.Offset = offset

		return fld, nil
	}

	return symbols.Field{}, curated.Errorf(UnknownType, name)
}

// memberOffset decodes the data member location of a member symbol. Members
// at the start of the composite may have no location at all.
func memberOffset(f *Symbol) (int64, error) {
	// virtual inheritance is not supported. a member marked with a
	// virtuality attribute has no offset that can be reported
	if _, ok := f.AttrField(AttrVirtuality); ok {
		return 0, curated.Errorf(UnsupportedExpression, AttrVirtuality)
	}

	v, ok := f.AttrField(AttrDataMemberLoc)
	if !ok {
		return 0, nil
	}

	switch v.Class {
	case ClassConstant:
		return v.Int, nil

	case ClassBlock, ClassExprLoc:
		// older producers wrap the offset in an expression that expects the
		// base address of the composite on the stack
		cur := cursor{data: v.Block}
		op, err := cur.u8()
		if err != nil {
			return 0, err
		}
		if op != opPlusUconst {
			return 0, curated.Errorf(UnsupportedExpression, op)
		}
		o, err := cur.uleb()
		if err != nil {
			return 0, err
		}
		return int64(o), nil
	}

	return 0, curated.Errorf(UnsupportedExpression, v.Class)
}

// lowHighOf returns the address range of a symbol, if it has one. the second
// return value is the first address past the range.
func lowHighOf(sym *Symbol) (uint64, uint64, bool) {
	low, ok := sym.AttrField(AttrLowpc)
	if !ok || low.Class != ClassAddress {
		return 0, 0, false
	}

	high, ok := sym.AttrField(AttrHighpc)
	if !ok {
		return 0, 0, false
	}

	switch high.Class {
	case ClassConstant:
		// dwarf-4 expresses the high pc as an offset from the low pc
		return low.Uint, low.Uint + high.Uint, true
	case ClassAddress:
		// dwarf-2 expresses it as an address
		return low.Uint, high.Uint, true
	}

	return 0, 0, false
}

// SourceLineAt implements the symbols.Provider interface.
func (prv *Provider) SourceLineAt(processAddress uint64, relativeAddress uint64) symbols.LineInfo {
	addr := processAddress + relativeAddress

	notFound := symbols.LineInfo{Displacement: addr}

	cu := prv.sess.UnitForAddress(addr)
	if cu == nil || cu.lines == nil {
		return notFound
	}

	row, ok := cu.lines.findAddress(addr)
	if !ok {
		return notFound
	}

	fn := cu.lines.filename(row.file)
	if fn == "" {
		return notFound
	}

	return symbols.LineInfo{
		Filename:     fn,
		LineNumber:   row.line,
		Displacement: addr - row.address,
	}
}

// findFunction returns the function covering the address, or nil.
func (prv *Provider) findFunction(addr uint64) *funcSpan {
	i := slices.IndexFunc(prv.functions, func(f funcSpan) bool {
		return addr >= f.low && addr < f.high
	})
	if i == -1 {
		return nil
	}
	return &prv.functions[i]
}

// FunctionAt implements the symbols.Provider interface.
func (prv *Provider) FunctionAt(processAddress uint64, relativeAddress uint64) (string, uint64, error) {
	addr := processAddress + relativeAddress

	f := prv.findFunction(addr)
	if f == nil {
		return "", 0, curated.Errorf(NoLineInfo, addr)
	}
	return f.name, addr - f.low, nil
}

// FrameLocals implements the symbols.Provider interface.
//
// A variable whose location expression cannot be evaluated is still included
// in the result, with an unsupported location. The caller can show the
// variable's name and type even when its value is out of reach.
func (prv *Provider) FrameLocals(frame symbols.FrameDescriptor, relativeAddress uint64, argumentsOnly bool) ([]symbols.FrameLocal, error) {
	addr := relativeAddress

	f := prv.findFunction(addr)
	if f == nil {
		return nil, curated.Errorf(NoLineInfo, addr)
	}

	ec := evalContext{
		addressSize: f.sym.Unit.AddressSize,
		normalize:   prv.sess.normalize,
		frameBase:   frame.FrameBase,
		registers:   prv.registers,
		memory:      prv.memory,
	}

	var locals []symbols.FrameLocal
	prv.collectLocals(f.sym, addr, argumentsOnly, ec, &locals)
	return locals, nil
}

func (prv *Provider) collectLocals(scope *Symbol, addr uint64, argumentsOnly bool, ec evalContext, locals *[]symbols.FrameLocal) {
	for _, c := range scope.Children {
		switch c.Tag {
		case TagFormalParameter, TagVariable:
			if argumentsOnly && c.Tag != TagFormalParameter {
				continue
			}
			name := c.Name()
			if name == "" {
				continue
			}

			local := symbols.FrameLocal{
				Name:       name,
				Type:       symbols.NoTypeID,
				IsArgument: c.Tag == TagFormalParameter,
			}
			if ref := c.TypeRef(); ref != nil {
				if id, ok := prv.idForSymbol(ref); ok {
					local.Type = id
				}
			}

			local.Location = prv.locate(c, addr, ec)

			*locals = append(*locals, local)

		case TagLexicalBlock:
			// a block with address ranges hides its variables outside those
			// ranges. a block without any is always in scope
			if spans := prv.sess.symbolSpans(c); spans != nil {
				inScope := false
				for _, s := range spans {
					if addr >= s.low && addr < s.high {
						inScope = true
						break
					}
				}
				if !inScope {
					continue
				}
			}
			prv.collectLocals(c, addr, argumentsOnly, ec, locals)
		}
	}
}

// locate evaluates the location of one variable. failure is not an error,
// it is an unsupported location.
func (prv *Provider) locate(sym *Symbol, addr uint64, ec evalContext) symbols.Location {
	expr, err := prv.sess.locationExpr(sym, addr)
	if err != nil {
		return symbols.Location{Kind: symbols.LocationUnsupported}
	}

	loc, err := ec.evaluate(expr)
	if err != nil {
		return symbols.Location{Kind: symbols.LocationUnsupported}
	}
	return loc
}
