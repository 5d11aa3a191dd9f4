package main

import (
	"strings"
	"unicode"

	"github.com/massung/chip-8/chip8"
)

/// Layout is the modern keyboard layout of the keypad, read left to right
/// and top to bottom. Each character maps to the CHIP-8 key at the same
/// position in Keypad.
///
const (
	Layout = "1234QWERASDFZXCV"
	Keypad = "123C456D789EA0BF"
)

/// KeyForRune returns the CHIP-8 key mapped to a keyboard character.
///
func KeyForRune(r rune) (chip8.Key, bool) {
	i := strings.IndexRune(Layout, unicode.ToUpper(r))
	if i < 0 {
		return chip8.NoKey, false
	}

	return keypadKey(i), true
}

/// keypadKey returns the CHIP-8 key at position i of the keypad.
///
func keypadKey(i int) chip8.Key {
	c := Keypad[i]

	if c >= 'A' {
		return chip8.Key(c - 'A' + 10)
	}

	return chip8.Key(c - '0')
}
