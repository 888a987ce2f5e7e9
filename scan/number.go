// Copyright 2023 Rain Language
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// maxPow10 is the largest n for which 10^n fits a 256-bit integer.
const maxPow10 = 77

// ParseU256 converts a recognized numeric literal (decimal, 0x hex or
// integer-exponent form) to an unsigned 256-bit integer. A value that
// does not fit 256 bits returns an error.
func ParseU256(text string) (*uint256.Int, error) {
	switch {
	case strings.HasPrefix(text, "0x"):
		digits := strings.TrimLeft(text[2:], "0")
		if digits == "" {
			digits = "0"
		}
		if len(digits) > 64 {
			return nil, fmt.Errorf("hex literal %q out of range", text)
		}
		v, err := uint256.FromHex("0x" + strings.ToLower(digits))
		if err != nil {
			return nil, fmt.Errorf("hex literal %q: %w", text, err)
		}
		return v, nil
	case strings.Contains(text, "e"):
		mantissa, exponent, _ := strings.Cut(text, "e")
		m, err := uint256.FromDecimal(mantissa)
		if err != nil {
			return nil, fmt.Errorf("exponent literal %q: %w", text, err)
		}
		e, err := strconv.Atoi(exponent)
		if err != nil || e > maxPow10 {
			return nil, fmt.Errorf("exponent literal %q out of range", text)
		}
		pow := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(e)))
		result, overflow := new(uint256.Int).MulOverflow(m, pow)
		if overflow {
			return nil, fmt.Errorf("exponent literal %q out of range", text)
		}
		return result, nil
	default:
		digits := strings.TrimLeft(text, "0")
		if digits == "" {
			digits = "0"
		}
		v, err := uint256.FromDecimal(digits)
		if err != nil {
			return nil, fmt.Errorf("decimal literal %q: %w", text, err)
		}
		return v, nil
	}
}

// InRangeU256 reports whether a numeric literal fits 256 bits.
func InRangeU256(text string) bool {
	_, err := ParseU256(text)
	return err == nil
}
