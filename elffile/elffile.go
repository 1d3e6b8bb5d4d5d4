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

// Package elffile extracts the debugging sections from an ELF executable
// and prepares them for a dwarf parse session.
package elffile

import (
	"context"
	"debug/elf"
	"io"

	"github.com/jetsetilly/dwarfsym/curated"
	"github.com/jetsetilly/dwarfsym/symbols/dwarf"
)

// Error patterns for the elffile package.
const (
	UnsupportedFile = "unsupported file: %v"
)

// File is an ELF executable opened for symbol extraction.
//
// The preferred method of initialisation is through the Open() and NewFile()
// functions.
type File struct {
	elf    *elf.File
	closer io.Closer

	// the raw debugging sections. sections absent from the file are empty
	Sections dwarf.Sections

	// the lowest virtual address of any loadable segment. addresses in the
	// debugging sections are relative to the load image starting here
	Origin uint64
}

// Open an ELF file from the filesystem.
func Open(path string) (*File, error) {
	ef, err := elf.Open(path)
	if err != nil {
		return nil, curated.Errorf(UnsupportedFile, err)
	}
	f, err := newFile(ef)
	if err != nil {
		_ = ef.Close()
		return nil, err
	}
	f.closer = ef
	return f, nil
}

// NewFile reads an ELF file from memory or any other random access source.
func NewFile(r io.ReaderAt) (*File, error) {
	ef, err := elf.NewFile(r)
	if err != nil {
		return nil, curated.Errorf(UnsupportedFile, err)
	}
	return newFile(ef)
}

func newFile(ef *elf.File) (*File, error) {
	f := &File{elf: ef}

	section := func(name string) ([]uint8, error) {
		sec := ef.Section(name)
		if sec == nil {
			return nil, nil
		}
		// Data() transparently decompresses sections compressed with
		// SHF_COMPRESSED
		d, err := sec.Data()
		if err != nil {
			return nil, curated.Errorf(UnsupportedFile, err)
		}
		return d, nil
	}

	var err error
	if f.Sections.Info, err = section(".debug_info"); err != nil {
		return nil, err
	}
	if f.Sections.Abbrev, err = section(".debug_abbrev"); err != nil {
		return nil, err
	}
	if f.Sections.Str, err = section(".debug_str"); err != nil {
		return nil, err
	}
	if f.Sections.Line, err = section(".debug_line"); err != nil {
		return nil, err
	}
	if f.Sections.Loc, err = section(".debug_loc"); err != nil {
		return nil, err
	}
	if f.Sections.Ranges, err = section(".debug_ranges"); err != nil {
		return nil, err
	}
	if f.Sections.Aranges, err = section(".debug_aranges"); err != nil {
		return nil, err
	}

	first := true
	for _, prog := range ef.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if first || prog.Vaddr < f.Origin {
			f.Origin = prog.Vaddr
			first = false
		}
	}

	return f, nil
}

// Close the underlying file. Files created with NewFile() have nothing to
// close and the function is a no-op.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// Normalizer returns the address normalizer for an image of this file loaded
// at the given address. For a file executing at its link-time address, pass
// the file's Origin.
func (f *File) Normalizer(loadAddress uint64) dwarf.Normalizer {
	origin := f.Origin
	return func(addr uint64) uint64 {
		return addr - origin + loadAddress
	}
}

// Session parses the debugging sections of the file, assuming the image is
// loaded at the given address.
func (f *File) Session(ctx context.Context, loadAddress uint64) (*dwarf.Session, error) {
	return dwarf.NewSession(ctx, f.Sections, dwarf.Config{
		Normalize: f.Normalizer(loadAddress),
	})
}
