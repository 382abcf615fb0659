package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errEmpty = errors.New("empty string")

// IsHexString returns true when "s" is "0x" (or "0X") prefixed hexadecimal number.
func IsHexString(s string) bool {
	digits, ok := cutHexPrefix(s)
	return ok && isDigits(digits, isHexDigit)
}

// IsDecString returns true when "s" consists of decimal digits only.
func IsDecString(s string) bool {
	return isDigits(s, isDecDigit)
}

/*
ParseHex parses hexadecimal number, the "0x" prefix is optional.

	ParseHex("0x1F") == 31
	ParseHex("1f") == 31
*/
func ParseHex(s string) (uint64, error) {
	digits, _ := cutHexPrefix(s)
	if digits == "" {
		return 0, fmt.Errorf("invalid hex string %q: %w", s, errEmpty)
	}
	if !isDigits(digits, isHexDigit) {
		return 0, fmt.Errorf("invalid hex string %q", s)
	}
	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex string %q: %w", s, err)
	}
	return v, nil
}

// ParseDec parses unsigned decimal number.
func ParseDec(s string) (uint64, error) {
	if !IsDecString(s) {
		return 0, fmt.Errorf("invalid decimal string %q", s)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal string %q: %w", s, err)
	}
	return v, nil
}

/*
ParseNumber parses "s" as hexadecimal number when it has "0x" prefix and as decimal
number otherwise.
*/
func ParseNumber(s string) (uint64, error) {
	if _, ok := cutHexPrefix(s); ok {
		return ParseHex(s)
	}
	return ParseDec(s)
}

func cutHexPrefix(s string) (string, bool) {
	if digits, ok := strings.CutPrefix(s, "0x"); ok {
		return digits, true
	}
	return strings.CutPrefix(s, "0X")
}

func isDigits(s string, valid func(c byte) bool) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !valid(s[i]) {
			return false
		}
	}
	return true
}

func isDecDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDecDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
