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

package logger_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/dwarfsym/logger"
	"github.com/jetsetilly/dwarfsym/test"
)

func TestLogger(t *testing.T) {
	logger.Clear()

	logger.Log("test", "this is a test")
	s := &strings.Builder{}
	logger.Write(s)
	test.ExpectEquality(t, s.String(), "test: this is a test\n")

	logger.Logf("test", "this is test %d", 2)
	s.Reset()
	logger.Write(s)
	test.ExpectEquality(t, s.String(), "test: this is a test\ntest: this is test 2\n")

	logger.Clear()
	s.Reset()
	logger.Write(s)
	test.ExpectEquality(t, s.String(), "")
}

func TestLogger_repeats(t *testing.T) {
	logger.Clear()

	// the same entry repeated is collapsed into one line
	logger.Log("test", "again")
	logger.Log("test", "again")
	logger.Log("test", "again")

	s := &strings.Builder{}
	logger.Write(s)
	test.ExpectEquality(t, s.String(), "test: again (repeat x3)\n")
}

func TestLogger_tail(t *testing.T) {
	logger.Clear()

	logger.Log("test", "one")
	logger.Log("test", "two")
	logger.Log("test", "three")

	s := &strings.Builder{}
	logger.Tail(s, 2)
	test.ExpectEquality(t, s.String(), "test: two\ntest: three\n")

	// asking for more entries than exist is not an error
	s.Reset()
	logger.Tail(s, 100)
	test.ExpectEquality(t, s.String(), "test: one\ntest: two\ntest: three\n")
}
