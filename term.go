package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/massung/chip-8/chip8"
	"github.com/pkg/term"
	"github.com/retroenv/retrogolib/log"
)

const (
	/// KeyHold is how long a key stays pressed after its character arrives.
	/// Terminals report no key releases, only repeats.
	///
	KeyHold = 150 * time.Millisecond

	/// TTY is the controlling terminal.
	///
	TTY = "/dev/tty"
)

/// Terminal is a frontend for a text terminal. The display is drawn with
/// half-block characters, two pixel rows per line of text.
///
type Terminal struct {
	tty *term.Term
	out *bufio.Writer

	// characters read from the terminal
	keys chan byte
	done chan struct{}

	// the pressed key and when it is released
	held    chip8.Key
	release time.Time

	// last frame written, to skip identical frames
	frame string

	// fault that ended the session
	err error
}

/// NewTerminal puts the controlling terminal into cbreak mode and starts
/// reading keys from it.
///
func NewTerminal() (*Terminal, error) {
	tty, err := term.Open(TTY, term.CBreakMode, term.ReadTimeout(100*time.Millisecond))
	if err != nil {
		return nil, fmt.Errorf("opening terminal: %w", err)
	}

	t := &Terminal{
		tty:  tty,
		out:  bufio.NewWriter(os.Stdout),
		keys: make(chan byte, 16),
		done: make(chan struct{}),
		held: chip8.NoKey,
	}

	go t.read()

	// clear the screen and hide the cursor
	t.out.WriteString("\x1b[2J\x1b[?25l")
	t.out.Flush()

	return t, nil
}

/// Close restores the terminal.
///
func (t *Terminal) Close() error {
	close(t.done)

	t.out.WriteString("\x1b[?25h\n")
	t.out.Flush()

	err := t.tty.Restore()

	return errors.Join(err, t.tty.Close())
}

/// read forwards characters to the keys channel until closed. A read that
/// times out returns io.EOF, which just means nothing was typed.
///
func (t *Terminal) read() {
	defer close(t.keys)

	buf := make([]byte, 1)

	for {
		select {
		case <-t.done:
			return
		default:
		}

		n, err := t.tty.Read(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return
		}

		if n > 0 {
			select {
			case t.keys <- buf[0]:
			case <-t.done:
				return
			}
		}
	}
}

/// ProcessEvents maps typed characters to CHIP-8 keys and commands.
///
func (t *Terminal) ProcessEvents(m *Machine) bool {
	now := time.Now()

	for {
		select {
		case c, ok := <-t.keys:
			if !ok || !t.command(m, c, now) {
				return false
			}
		default:
			if t.held != chip8.NoKey && now.After(t.release) {
				t.held = chip8.NoKey
				m.VM.SetInputKey(chip8.NoKey)
			}

			return true
		}
	}
}

/// command handles a single character. Returns false to quit.
///
func (t *Terminal) command(m *Machine, c byte, now time.Time) bool {
	if key, ok := KeyForRune(rune(c)); ok {
		t.held = key
		t.release = now.Add(KeyHold)

		m.VM.SetInputKey(key)
		return true
	}

	switch c {
	case 0x1B:
		return false
	case 0x7F, 0x08:
		if err := m.Boot(); err != nil {
			m.log.Error("Reboot failed", log.Err(err))
		}
	case ' ':
		m.TogglePause()
	case '\n', '\r':
		if m.Paused && m.Fault == nil {
			if err := m.Step(); err != nil {
				m.halted(err)
				return t.Fault(m, err)
			}
		}
	case '[':
		m.DecSpeed()
	case ']':
		m.IncSpeed()
	}

	return true
}

/// Refresh draws the display and a status line.
///
func (t *Terminal) Refresh(m *Machine) {
	frame := RenderBlocks(&m.VM.Video) + StatusLine(m)
	if frame == t.frame {
		return
	}

	t.frame = frame

	// home the cursor and overwrite the previous frame
	t.out.WriteString("\x1b[H")
	t.out.WriteString(frame)
	t.out.Flush()
}

/// Fault ends the terminal session. The error is kept for Err.
///
func (t *Terminal) Fault(m *Machine, err error) bool {
	t.err = err
	t.Refresh(m)

	return false
}

/// Err returns the fault that ended the session, if any.
///
func (t *Terminal) Err() error {
	return t.err
}

/// RenderBlocks draws the display with two pixel rows per line of text.
///
func RenderBlocks(d *chip8.Display) string {
	var sb strings.Builder

	sb.Grow((chip8.Width*3 + 1) * chip8.Height / 2)

	for row := 0; row < chip8.Height; row += 2 {
		for col := 0; col < chip8.Width; col++ {
			top, bottom := d.Get(row, col), d.Get(row+1, col)

			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}

/// StatusLine summarizes the machine state under the display.
///
func StatusLine(m *Machine) string {
	state := "RUN  "

	switch {
	case m.Fault != nil:
		state = "HALT "
	case m.Paused:
		state = "PAUSE"
	}

	return fmt.Sprintf("%s PC %04X I %04X DT %02X ST %02X %5d/s\x1b[K\n",
		state,
		m.VM.PC,
		m.VM.I,
		m.VM.DelayTimer(),
		m.VM.SoundTimer(),
		m.Speed)
}
