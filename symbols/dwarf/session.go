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
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/jetsetilly/dwarfsym/curated"
	"github.com/jetsetilly/dwarfsym/logger"
)

// Sections is the raw data of the debugging sections of one executable. Any
// section may be empty. An empty Info section produces a session with no
// compilation units.
type Sections struct {
	Info    []uint8
	Abbrev  []uint8
	Str     []uint8
	Line    []uint8
	Loc     []uint8
	Ranges  []uint8
	Aranges []uint8
}

// Normalizer converts an address as it appears in the debugging sections to
// an address in the executing process. It is applied exactly once to every
// address-class value during parsing. Addresses seen by the consumer of the
// session are always normalized.
type Normalizer func(uint64) uint64

// Producer describes the compiler that emitted a compilation unit, as
// recovered from the producer attribute of the root symbol.
type Producer struct {
	Raw     string
	Name    string
	Version *semver.Version

	// whether the producer string indicates that optimisation was enabled.
	// only meaningful for producers that record the option, such as GCC
	Optimised bool
}

func (p Producer) String() string {
	if p.Name == "" {
		return p.Raw
	}
	if p.Version == nil {
		return p.Name
	}
	return fmt.Sprintf("%s %s", p.Name, p.Version)
}

// parseProducer extracts what it can from the free-form producer string. The
// string is not standardised so anything unrecognized is kept only in the
// Raw field.
func parseProducer(raw string) Producer {
	p := Producer{Raw: raw}

	flds := strings.Fields(raw)
	if len(flds) == 0 {
		return p
	}
	p.Name = flds[0]

	for _, f := range flds[1:] {
		if v, err := semver.NewVersion(f); err == nil && p.Version == nil {
			p.Version = v
			continue
		}
		if f == "-O1" || f == "-O2" || f == "-O3" || f == "-Os" || f == "-Ofast" {
			p.Optimised = true
		}
	}

	return p
}

// default for Config.DiagnosticsCap.
const maxDiagnostics = 256

// Config adjusts how a session is created. The zero value is a usable
// default.
type Config struct {
	// Normalize translates addresses as they appear in the sections into
	// the process address space. may be nil, in which case addresses are
	// used unchanged
	Normalize Normalizer

	// maximum number of entries retained in the Diagnostics field. zero
	// means the default of 256. entries beyond the cap are still logged
	DiagnosticsCap int
}

// Session is the result of parsing the debugging sections of one executable.
//
// The preferred method of initialisation is through the NewSession()
// function.
type Session struct {
	sections  Sections
	normalize Normalizer
	diagCap   int

	// compilation units in the order they appear in .debug_info. units that
	// failed to parse are not included
	Units []*CompileUnit

	// every symbol of every compilation unit keyed by offset into
	// .debug_info. synthetic symbols are not included
	index map[int64]*Symbol

	// problems encountered during parsing. none of these are fatal but they
	// do indicate that information may be missing from the session. the
	// number of entries is limited by Config.DiagnosticsCap
	Diagnostics []string

	// address ranges from the .debug_aranges section, with the low/high
	// bounds of unit roots standing in for units the section does not cover
	aranges arangeIndex
}

// NewSession parses the supplied debugging sections.
//
// A compilation unit that cannot be parsed is dropped from the session and
// noted in the Diagnostics field. The rest of the sections are still
// processed. If the context is cancelled, parsing stops and the units parsed
// so far are returned along with the Cancelled error.
func NewSession(ctx context.Context, sections Sections, cfg Config) (*Session, error) {
	normalize := cfg.Normalize
	if normalize == nil {
		normalize = func(addr uint64) uint64 { return addr }
	}

	diagCap := cfg.DiagnosticsCap
	if diagCap == 0 {
		diagCap = maxDiagnostics
	}

	sess := &Session{
		sections:  sections,
		normalize: normalize,
		diagCap:   diagCap,
		index:     make(map[int64]*Symbol),
	}

	var cancelled bool

	cur := cursor{data: sections.Info}
	for cur.remaining() > 0 {
		if err := ctx.Err(); err != nil {
			sess.diagnostic(fmt.Sprintf("cancelled at offset %#08x", cur.pos))
			cancelled = true
			break
		}

		start := cur.pos

		cu, err := sess.parseUnit(ctx, &cur)
		if err != nil {
			if curated.Is(err, Cancelled) {
				sess.diagnostic(fmt.Sprintf("cancelled at offset %#08x", start))
				cancelled = true
				break
			}

			sess.diagnostic(fmt.Sprintf("compilation unit at %#08x: %s", start, err))

			// the unit header may still have told us where the next unit
			// starts. if it did not then there is no way to resynchronize
			// and the remainder of the section is abandoned
			if cu == nil || cu.End <= int64(start) || cu.End > int64(len(cur.data)) {
				break
			}
			cur.pos = int(cu.End)
			continue
		}

		cur.pos = int(cu.End)
		sess.Units = append(sess.Units, cu)
	}

	// post-processing happens only after every unit has been parsed so that
	// references between units resolve no matter their order in the section
	for _, cu := range sess.Units {
		cu.injectVoid()
		for _, sym := range cu.symbols {
			if !sym.IsVoid() {
				sess.index[sym.Offset] = sym
			}
		}
	}
	for _, cu := range sess.Units {
		cu.resolve(sess.index, sess.normalize)
	}
	for _, cu := range sess.Units {
		cu.mergeSpecifications()
	}

	// producer and line information for each unit
	for _, cu := range sess.Units {
		if v, ok := cu.Root.AttrField(AttrProducer); ok {
			cu.Producer = parseProducer(v.Str)
		}
		if v, ok := cu.Root.AttrField(AttrStmtList); ok {
			lt, err := sess.parseLineTable(cu, v.Uint)
			if err != nil {
				sess.diagnostic(fmt.Sprintf("line table for %s: %s", cu.Root.Name(), err))
			} else {
				cu.lines = lt
			}
		}
	}

	// the aranges index falls back to the low/high bounds of the units when
	// the section is absent or empty
	ar, err := sess.parseAranges()
	if err != nil {
		sess.diagnostic(fmt.Sprintf("aranges: %s", err))
	}
	sess.aranges = ar

	if cancelled {
		return sess, curated.Errorf(Cancelled, "session")
	}

	return sess, nil
}

// SymbolAt returns the symbol at the given .debug_info offset, or nil.
func (sess *Session) SymbolAt(offset int64) *Symbol {
	return sess.index[offset]
}

// UnitForAddress returns the compilation unit covering the normalized
// address, or nil.
func (sess *Session) UnitForAddress(addr uint64) *CompileUnit {
	return sess.aranges.find(addr)
}

func (sess *Session) diagnostic(s string) {
	logger.Logf("dwarf", "%s", s)
	if len(sess.Diagnostics) < sess.diagCap {
		sess.Diagnostics = append(sess.Diagnostics, s)
	}
}
