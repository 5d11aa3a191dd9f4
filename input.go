package main

import (
	"errors"

	"github.com/massung/chip-8/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// Mapping of modern keyboard to CHIP-8 keys.
	///
	KeyMap = map[sdl.Scancode]chip8.Key{
		sdl.SCANCODE_X: 0x0,
		sdl.SCANCODE_1: 0x1,
		sdl.SCANCODE_2: 0x2,
		sdl.SCANCODE_3: 0x3,
		sdl.SCANCODE_Q: 0x4,
		sdl.SCANCODE_W: 0x5,
		sdl.SCANCODE_E: 0x6,
		sdl.SCANCODE_A: 0x7,
		sdl.SCANCODE_S: 0x8,
		sdl.SCANCODE_D: 0x9,
		sdl.SCANCODE_Z: 0xA,
		sdl.SCANCODE_C: 0xB,
		sdl.SCANCODE_4: 0xC,
		sdl.SCANCODE_R: 0xD,
		sdl.SCANCODE_F: 0xE,
		sdl.SCANCODE_V: 0xF,
	}
)

/// ProcessEvents from SDL and map keys to the CHIP-8 VM.
///
func ProcessEvents(m *Machine) bool {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			key, mapped := KeyMap[ev.Keysym.Scancode]

			if ev.Type == sdl.KEYUP {
				if mapped {
					m.VM.ReleaseKey(key)
				}

				continue
			}

			if mapped {
				m.VM.PressKey(key)
				continue
			}

			if ev.Repeat != 0 {
				continue
			}

			switch ev.Keysym.Scancode {
			case sdl.SCANCODE_ESCAPE:
				return false
			case sdl.SCANCODE_BACKSPACE:
				Reboot(m)

				// holding control during reset will reboot paused
				if ev.Keysym.Mod&sdl.KMOD_LCTRL == sdl.KMOD_LCTRL || ev.Keysym.Mod&sdl.KMOD_RCTRL == sdl.KMOD_RCTRL {
					m.Paused = true
				}
			case sdl.SCANCODE_UP, sdl.SCANCODE_PAGEUP:
				Console.ScrollUp(DebugLines)
			case sdl.SCANCODE_DOWN, sdl.SCANCODE_PAGEDOWN:
				Console.ScrollDown()
			case sdl.SCANCODE_HOME:
				Console.Home()
			case sdl.SCANCODE_END:
				Console.End()
			case sdl.SCANCODE_F1, sdl.SCANCODE_H:
				DebugHelp()
			case sdl.SCANCODE_F3:
				LoadDialog(m)
			case sdl.SCANCODE_LEFTBRACKET:
				m.DecSpeed()
				Console.Logf("Speed %d/s", m.Speed)
			case sdl.SCANCODE_RIGHTBRACKET:
				m.IncSpeed()
				Console.Logf("Speed %d/s", m.Speed)
			case sdl.SCANCODE_F5, sdl.SCANCODE_SPACE:
				m.TogglePause()
			case sdl.SCANCODE_F6, sdl.SCANCODE_F10:
				if m.Paused && m.Fault == nil {
					if err := m.Step(); err != nil {
						Fault(m, err)
					}
				}
			}
		}
	}

	return true
}

/// Reboot the loaded program.
///
func Reboot(m *Machine) {
	if err := m.Boot(); err != nil {
		Console.Logln("Reboot failed:", err.Error())
		return
	}

	Console.Logln("Rebooted")
}

/// LoadDialog asks for a program and boots it.
///
func LoadDialog(m *Machine) {
	file, err := OpenDialog()
	if err != nil {
		if !errors.Is(err, dialog.ErrCancelled) {
			m.log.Error("Open dialog failed", log.Err(err))
		}

		return
	}

	if err := m.Load(file); err != nil {
		m.log.Error("Loading program failed", log.Err(err))
		Console.Logln("Load failed:", err.Error())
		return
	}

	Window.SetTitle("CHIP-8 - " + file)
	Console.Logln("Loaded", file)
}

/// Fault pauses emulation and shows the error in the log.
///
func Fault(m *Machine, err error) bool {
	m.Paused = true

	Console.Logln("Halted:", err.Error())
	Console.Log("Press BS to reboot or F3 to load")

	return true
}
