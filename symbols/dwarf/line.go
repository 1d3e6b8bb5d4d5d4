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
	"sort"
	"strings"

	"github.com/jetsetilly/dwarfsym/curated"
)

// standard opcodes of the line number program. section 6.2.5.2 of "DWARF4
// Standard".
const (
	lnsCopy           = 0x01
	lnsAdvancePC      = 0x02
	lnsAdvanceLine    = 0x03
	lnsSetFile        = 0x04
	lnsSetColumn      = 0x05
	lnsNegateStmt     = 0x06
	lnsSetBasicBlock  = 0x07
	lnsConstAddPC     = 0x08
	lnsFixedAdvancePC = 0x09
	lnsSetPrologueEnd = 0x0a
	lnsSetEpilogue    = 0x0b
	lnsSetISA         = 0x0c
)

// extended opcodes.
const (
	lneEndSequence = 0x01
	lneSetAddress  = 0x02
	lneDefineFile  = 0x03
)

// lineRow is one row of the decoded line number matrix.
type lineRow struct {
	address uint64
	file    int
	line    int
	column  int
	isStmt  bool

	// an end-sequence row marks the first address past the machine code of
	// the sequence. it is kept in the matrix so that a lookup between
	// sequences does not bleed into the previous one
	endSequence bool
}

func (r lineRow) String() string {
	return fmt.Sprintf("%#08x file=%d line=%d", r.address, r.file, r.line)
}

// lineTable is the decoded line number program of one compilation unit.
type lineTable struct {
	files []string

	// rows sorted by address. addresses have been normalized
	rows []lineRow
}

// findAddress returns the row covering the normalized address and true, or
// the zero row and false.
func (lt *lineTable) findAddress(addr uint64) (lineRow, bool) {
	// the first row with an address greater than the lookup address. the
	// covering row, if there is one, is the row before that
	i := sort.Search(len(lt.rows), func(i int) bool {
		return lt.rows[i].address > addr
	})
	if i == 0 {
		return lineRow{}, false
	}

	r := lt.rows[i-1]
	if r.endSequence {
		return lineRow{}, false
	}
	return r, true
}

// filename returns the full path for a file index of this table.
func (lt *lineTable) filename(idx int) string {
	if idx < 0 || idx >= len(lt.files) {
		return ""
	}
	return lt.files[idx]
}

// parseLineTable decodes the line number program for one compilation unit,
// starting at the given offset into .debug_line.
func (sess *Session) parseLineTable(cu *CompileUnit, offset uint64) (*lineTable, error) {
	if offset > uint64(len(sess.sections.Line)) {
		return nil, curated.Errorf(NoLineInfo, offset)
	}

	cur := cursor{data: sess.sections.Line, pos: int(offset)}

	unitLength, is64, err := cur.length()
	if err != nil {
		return nil, err
	}
	end := cur.pos + int(unitLength)
	if end > len(cur.data) {
		return nil, curated.Errorf(TruncatedSection, offset)
	}

	version, err := cur.u16()
	if err != nil {
		return nil, err
	}
	if version < 2 || version > 4 {
		return nil, curated.Errorf(MalformedLength, version)
	}

	headerLength, err := cur.offset(is64)
	if err != nil {
		return nil, err
	}
	program := cur.pos + int(headerLength)
	if program > end {
		return nil, curated.Errorf(TruncatedSection, offset)
	}

	minInstLength, err := cur.u8()
	if err != nil {
		return nil, err
	}
	if minInstLength == 0 {
		return nil, curated.Errorf(MalformedLength, minInstLength)
	}

	// "The maximum_operations_per_instruction field is new in DWARF Version
	// 4". values other than one describe VLIW architectures, which are not
	// supported
	if version >= 4 {
		maxOps, err := cur.u8()
		if err != nil {
			return nil, err
		}
		if maxOps != 1 {
			return nil, curated.Errorf(UnknownOpcode, maxOps)
		}
	}

	defaultIsStmt, err := cur.u8()
	if err != nil {
		return nil, err
	}

	lineBase, err := cur.u8()
	if err != nil {
		return nil, err
	}

	lineRange, err := cur.u8()
	if err != nil {
		return nil, err
	}
	if lineRange == 0 {
		return nil, curated.Errorf(MalformedLength, lineRange)
	}

	opcodeBase, err := cur.u8()
	if err != nil {
		return nil, err
	}

	// number of uleb arguments for each standard opcode. used to skip
	// opcodes this decoder does not act on
	opcodeLengths := make([]uint8, opcodeBase)
	for i := 1; i < int(opcodeBase); i++ {
		opcodeLengths[i], err = cur.u8()
		if err != nil {
			return nil, err
		}
	}

	var directories []string
	directories = append(directories, "") // index zero is the compilation directory
	for {
		d, err := cur.string()
		if err != nil {
			return nil, err
		}
		if d == "" {
			break
		}
		directories = append(directories, d)
	}

	lt := &lineTable{}
	lt.files = append(lt.files, "") // file indexes start at one

	readFile := func() (string, bool, error) {
		name, err := cur.string()
		if err != nil {
			return "", false, err
		}
		if name == "" {
			return "", false, nil
		}
		dir, err := cur.uleb()
		if err != nil {
			return "", false, err
		}
		if _, err := cur.uleb(); err != nil { // mtime
			return "", false, err
		}
		if _, err := cur.uleb(); err != nil { // file length
			return "", false, err
		}
		if !strings.HasPrefix(name, "/") && dir > 0 && dir < uint64(len(directories)) {
			name = fmt.Sprintf("%s/%s", directories[dir], name)
		}
		return name, true, nil
	}

	for {
		name, ok, err := readFile()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		lt.files = append(lt.files, name)
	}

	// the state machine registers. section 6.2.2 of "DWARF4 Standard"
	var address uint64
	file := 1
	line := 1
	column := 0
	isStmt := defaultIsStmt != 0

	reset := func() {
		address = 0
		file = 1
		line = 1
		column = 0
		isStmt = defaultIsStmt != 0
	}

	emit := func(endSeq bool) {
		lt.rows = append(lt.rows, lineRow{
			address:     address,
			file:        file,
			line:        line,
			column:      column,
			isStmt:      isStmt,
			endSequence: endSeq,
		})
	}

	cur.pos = program
	for cur.pos < end {
		opcode, err := cur.u8()
		if err != nil {
			return nil, err
		}

		switch {
		case opcode >= opcodeBase:
			// special opcodes advance both address and line and emit a row
			adjusted := uint64(opcode - opcodeBase)
			address += (adjusted / uint64(lineRange)) * uint64(minInstLength)
			line += int(int8(lineBase)) + int(adjusted%uint64(lineRange))
			emit(false)

		case opcode == 0:
			// extended opcode. the length prefix lets unknown opcodes be
			// skipped
			length, err := cur.uleb()
			if err != nil {
				return nil, err
			}
			next := cur.pos + int(length)
			if next > end {
				return nil, curated.Errorf(TruncatedSection, cur.pos)
			}

			sub, err := cur.u8()
			if err != nil {
				return nil, err
			}

			switch sub {
			case lneEndSequence:
				emit(true)
				reset()

			case lneSetAddress:
				a, err := cur.ulong(cu.AddressSize)
				if err != nil {
					return nil, err
				}
				// the only place a raw address enters the line number
				// machine. normalized here and nowhere else
				address = sess.normalize(a)

			case lneDefineFile:
				name, ok, err := readFile()
				if err != nil {
					return nil, err
				}
				if ok {
					lt.files = append(lt.files, name)
				}
			}

			cur.pos = next

		case opcode == lnsCopy:
			emit(false)

		case opcode == lnsAdvancePC:
			adv, err := cur.uleb()
			if err != nil {
				return nil, err
			}
			address += adv * uint64(minInstLength)

		case opcode == lnsAdvanceLine:
			adv, err := cur.sleb()
			if err != nil {
				return nil, err
			}
			line += int(adv)

		case opcode == lnsSetFile:
			f, err := cur.uleb()
			if err != nil {
				return nil, err
			}
			file = int(f)

		case opcode == lnsSetColumn:
			c, err := cur.uleb()
			if err != nil {
				return nil, err
			}
			column = int(c)

		case opcode == lnsNegateStmt:
			isStmt = !isStmt

		case opcode == lnsSetBasicBlock:
			// no arguments and no effect on the matrix we keep

		case opcode == lnsConstAddPC:
			adjusted := uint64(255 - opcodeBase)
			address += (adjusted / uint64(lineRange)) * uint64(minInstLength)

		case opcode == lnsFixedAdvancePC:
			// the one standard opcode with a fixed-width argument. the
			// advance is not scaled by the minimum instruction length
			adv, err := cur.u16()
			if err != nil {
				return nil, err
			}
			address += uint64(adv)

		case opcode == lnsSetPrologueEnd, opcode == lnsSetEpilogue:
			// no arguments

		case opcode == lnsSetISA:
			if _, err := cur.uleb(); err != nil {
				return nil, err
			}

		default:
			// an unknown standard opcode. the header told us how many uleb
			// arguments it has
			for i := 0; i < int(opcodeLengths[opcode]); i++ {
				if _, err := cur.uleb(); err != nil {
					return nil, err
				}
			}
		}
	}

	sort.SliceStable(lt.rows, func(i, j int) bool {
		return lt.rows[i].address < lt.rows[j].address
	})

	return lt, nil
}
