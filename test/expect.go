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

// Package test contains helper functions to remove common boilerplate from
// the tests in the rest of the module.
package test

import (
	"reflect"
	"testing"

	"github.com/modern-go/reflect2"
)

// ExpectEquality is used to test equality between one value and another.
func ExpectEquality[T comparable](t *testing.T, value T, expectedValue T) {
	t.Helper()
	if value != expectedValue {
		t.Errorf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expectedValue)
	}
}

// ExpectInequality is the inverse of ExpectEquality.
func ExpectInequality[T comparable](t *testing.T, value T, expectedValue T) {
	t.Helper()
	if value == expectedValue {
		t.Errorf("inequality test of type %T failed: '%v' does equal '%v'", value, value, expectedValue)
	}
}

// ExpectDeepEquality is used to test equality between values that are not
// comparable with the equality operator (slices, maps, etc).
//
// The reflect2 package gives us a cheap type identity check before the more
// expensive deep comparison.
func ExpectDeepEquality(t *testing.T, value any, expectedValue any) {
	t.Helper()
	if reflect2.TypeOf(value) != reflect2.TypeOf(expectedValue) {
		t.Errorf("deep equality test failed: type %T does not match type %T", value, expectedValue)
		return
	}
	if !reflect.DeepEqual(value, expectedValue) {
		t.Errorf("deep equality test of type %T failed: '%v' does not equal '%v'", value, value, expectedValue)
	}
}

// ExpectSuccess tests argument v for a success value appropriate to its
// type: true for bools, nil for errors, non-nil for pointers.
func ExpectSuccess(t *testing.T, v any) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		if !v {
			t.Errorf("success test of type %T failed", v)
			return false
		}
	case error:
		if v != nil {
			t.Errorf("success test of type %T failed: %v", v, v)
			return false
		}
	case nil:
		return true
	default:
		// a nil pointer arrives as a non-nil interface with a nil value
		if !reflect2.IsNil(v) {
			return true
		}
		t.Errorf("success test of type %T failed", v)
		return false
	}

	return true
}

// ExpectFailure tests argument v for a failure value appropriate to its
// type: false for bools, non-nil for errors.
func ExpectFailure(t *testing.T, v any) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		if v {
			t.Errorf("failure test of type %T failed", v)
			return false
		}
	case error:
		if v == nil {
			t.Errorf("failure test of type %T failed", v)
			return false
		}
	case nil:
		t.Errorf("failure test of type %T failed", v)
		return false
	default:
		if reflect2.IsNil(v) {
			return true
		}
		t.Errorf("failure test of type %T failed", v)
		return false
	}

	return true
}

// DemandSuccess is the same as ExpectSuccess but the test is terminated on
// failure.
func DemandSuccess(t *testing.T, v any) {
	t.Helper()
	if !ExpectSuccess(t, v) {
		t.FailNow()
	}
}

// DemandFailure is the same as ExpectFailure but the test is terminated on
// failure.
func DemandFailure(t *testing.T, v any) {
	t.Helper()
	if !ExpectFailure(t, v) {
		t.FailNow()
	}
}
