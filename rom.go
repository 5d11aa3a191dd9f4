package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/massung/chip-8/chip8"
	"github.com/sqweek/dialog"
)

/// SourceExtensions are the file extensions treated as assembly source.
///
var SourceExtensions = []string{".c8s", ".asm", ".s"}

/// IsSource returns true if the file should be assembled before loading.
///
func IsSource(file string) bool {
	ext := strings.ToLower(filepath.Ext(file))

	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}

	return false
}

/// ReadImage reads a program image. Assembly source is assembled first.
///
func ReadImage(file string) ([]byte, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}

	return BuildImage(file, data)
}

/// BuildImage turns the contents of file into a program image.
///
func BuildImage(file string, data []byte) ([]byte, error) {
	if IsSource(file) {
		asm, err := chip8.Assemble(data)
		if err != nil {
			return nil, fmt.Errorf("assembling %s: %w", filepath.Base(file), err)
		}

		data = asm.ROM
	}

	if len(data) > chip8.MaxImageSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, at most %d fit", chip8.ErrImageTooLarge, filepath.Base(file), len(data), chip8.MaxImageSize)
	}

	return data, nil
}

/// OpenDialog asks the user for a program to load. Returns
/// dialog.ErrCancelled if nothing was picked.
///
func OpenDialog() (string, error) {
	return dialog.File().
		Title("Load CHIP-8 program").
		Filter("CHIP-8 programs", "ch8", "c8").
		Filter("CHIP-8 assembly", "c8s", "asm", "s").
		Load()
}
