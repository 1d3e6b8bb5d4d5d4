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

// Package logger is the central log for the whole module. Parsing code logs
// recoverable problems here rather than returning them as errors. The log is
// kept in memory and can be written out on demand.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Entry represents a single line/entry in the log.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	repeated  int
}

func (e *Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", e.Tag, e.Detail))
	if e.repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}

// maximum number of entries kept by the central logger. the oldest entries
// are dropped first.
const maxCentral = 512

type logger struct {
	crit    sync.Mutex
	entries []Entry
	echo    io.Writer
}

// the central logger. sessions may run concurrently so all access is through
// the critical section.
var central = logger{}

// Log adds a new entry to the central logger.
func Log(tag, detail string) {
	central.crit.Lock()
	defer central.crit.Unlock()

	// strip newlines so an entry is always a single line
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	if len(central.entries) > 0 {
		e := &central.entries[len(central.entries)-1]
		if e.Tag == tag && e.Detail == detail {
			e.repeated++
			e.Timestamp = time.Now()
			return
		}
	}

	central.entries = append(central.entries, Entry{
		Timestamp: time.Now(),
		Tag:       tag,
		Detail:    detail,
	})

	if len(central.entries) > maxCentral {
		central.entries = central.entries[len(central.entries)-maxCentral:]
	}

	if central.echo != nil {
		io.WriteString(central.echo, central.entries[len(central.entries)-1].String())
	}
}

// Logf adds a new formatted entry to the central logger.
func Logf(tag, format string, args ...any) {
	Log(tag, fmt.Sprintf(format, args...))
}

// Clear all entries from the central logger.
func Clear() {
	central.crit.Lock()
	defer central.crit.Unlock()
	central.entries = central.entries[:0]
}

// Write contents of central logger to io.Writer.
func Write(output io.Writer) {
	central.crit.Lock()
	defer central.crit.Unlock()
	for i := range central.entries {
		io.WriteString(output, central.entries[i].String())
	}
}

// Tail writes the last number of entries to io.Writer.
func Tail(output io.Writer, number int) {
	central.crit.Lock()
	defer central.crit.Unlock()

	if number > len(central.entries) {
		number = len(central.entries)
	}

	for i := len(central.entries) - number; i < len(central.entries); i++ {
		io.WriteString(output, central.entries[i].String())
	}
}

// SetEcho prints entries to io.Writer as they are received. A nil writer
// stops any echoing. Echoing to os.Stdout is the most common use:
//
//	logger.SetEcho(os.Stdout)
func SetEcho(output io.Writer) {
	central.crit.Lock()
	defer central.crit.Unlock()
	if output == os.Stdout && central.echo == os.Stdout {
		return
	}
	central.echo = output
}
