/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package main

import (
	"fmt"
	"strings"
)

// MaxLogLines is how many lines the on-screen log keeps.
const MaxLogLines = 500

// Logger is an on-screen output log that can be viewed and scrolled. It
// complements the structured process log with messages meant for the user
// of the SDL frontend.
type Logger struct {
	// buf contains each line of logged text.
	buf []string

	// pos is the current user read position within the log. It is the
	// index one past the last visible line.
	pos int
}

// NewLog creates a new Logger.
func NewLog() *Logger {
	return &Logger{
		buf: make([]string, 0, 100),
		pos: 0,
	}
}

// Len returns the number of lines in the log.
func (log *Logger) Len() int {
	return len(log.buf)
}

// Log outputs a new line to the log.
func (log *Logger) Log(s ...string) {
	log.append(strings.Join(s, " "))
}

// Logln outputs a new line to the log, with an empty line prefixed.
func (log *Logger) Logln(s ...string) {
	log.append("", strings.Join(s, " "))
}

// Logf outputs a formatted line to the log.
func (log *Logger) Logf(format string, args ...any) {
	log.append(fmt.Sprintf(format, args...))
}

func (log *Logger) append(lines ...string) {
	scroll := log.pos == len(log.buf)

	log.buf = append(log.buf, lines...)

	// drop the oldest lines, keeping the read position on the same text
	if n := len(log.buf) - MaxLogLines; n > 0 {
		log.buf = append(log.buf[:0], log.buf[n:]...)

		if log.pos -= n; log.pos < 0 {
			log.pos = 0
		}
	}

	if scroll {
		log.pos = len(log.buf)
	}
}

// Window returns up to n lines of the log ending at the read position.
func (log *Logger) Window(n int) []string {
	end := log.pos
	if end < n {
		end = n
	}

	if end > len(log.buf) {
		end = len(log.buf)
	}

	start := end - n
	if start < 0 {
		start = 0
	}

	return log.buf[start:end]
}

// Home scrolls the log to the beginning.
func (log *Logger) Home() {
	log.pos = 0
}

// End scrolls the log to the end.
func (log *Logger) End() {
	log.pos = len(log.buf)
}

// ScrollUp scrolls the log back one position.
func (log *Logger) ScrollUp(windowSize int) {
	log.pos -= 1

	// the window is already showing the first lines
	if log.pos < windowSize {
		log.pos = windowSize
	}

	if log.pos > len(log.buf) {
		log.End()
	}
}

// ScrollDown scrolls the log forward one position.
func (log *Logger) ScrollDown() {
	log.pos += 1

	// clamp to end
	if log.pos >= len(log.buf) {
		log.End()
	}
}
