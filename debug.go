package main

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

const (
	/// DebugLines is how many lines of disassembly and log are shown.
	///
	DebugLines = 16

	/// LineHeight is the vertical distance between lines of text.
	///
	LineHeight = 10
)

var (
	/// Current debug window address.
	///
	Address uint16

	/// Console is the on-screen log.
	///
	Console = NewLog()
)

/// Show the HELP text in the log.
///
func DebugHelp() {
	Console.Logln("Virtual keys:")
	Console.Log("  1-2-3-4")
	Console.Log("  Q-W-E-R")
	Console.Log("  A-S-D-F")
	Console.Log("  Z-X-C-V")
	Console.Logln("Emulation keys:")
	Console.Log("  ESC      - Quit")
	Console.Log("  BS       - Reboot")
	Console.Log("  F1       - Help")
	Console.Log("  F3       - Load program")
	Console.Log("  SPACE/F5 - Pause")
	Console.Log("  F6       - Step")
	Console.Log("  [ ]      - Speed down/up")
	Console.Log("  UP/DN    - Scroll log")
}

/// DebugWindow returns the first address of the disassembly window so that
/// pc stays visible, moving the window as little as possible.
///
func DebugWindow(address, pc uint16) uint16 {
	last := address + 2*(DebugLines-1)

	if pc < address || pc > last || (pc^address)&1 == 1 {
		if pc < 2 {
			return pc
		}

		return pc - 2
	}

	return address
}

/// DebugAssembly renders the disassembled instructions around
/// the CHIP-8 program counter.
///
func DebugAssembly(m *Machine, x, y int32) {
	Address = DebugWindow(Address, m.VM.PC)

	// show the disassembled instructions
	for i := uint16(0); i < DebugLines; i++ {
		address := Address + i*2
		line := y + int32(i)*LineHeight

		if address == m.VM.PC {
			switch {
			case m.Fault != nil:
				Renderer.SetDrawColor(176, 32, 57, 255)
			case m.Paused:
				Renderer.SetDrawColor(176, 132, 57, 255)
			default:
				Renderer.SetDrawColor(57, 102, 176, 255)
			}

			// highlight the current instruction
			Renderer.FillRect(&sdl.Rect{
				X: x - 2,
				Y: line - 2,
				W: 200,
				H: LineHeight - 1,
			})
		}

		Renderer.SetDrawColor(220, 220, 220, 255)
		DrawText(m.VM.Disassemble(address), x, line)
	}
}

/// Show the current value of all the CHIP-8 registers.
///
func DebugRegisters(m *Machine, x, y int32) {
	vm := m.VM

	Renderer.SetDrawColor(220, 220, 220, 255)

	for i := 0; i < 16; i++ {
		DrawText(fmt.Sprintf("V%X - #%02X", i, vm.V[i]), x, y+int32(i)*LineHeight)
	}

	// shift over for the other registers
	x += 64

	DrawText(fmt.Sprintf("PC - #%04X", vm.PC), x, y)
	DrawText(fmt.Sprintf("SP - #%02X", len(vm.Stack)), x, y+LineHeight)
	DrawText(fmt.Sprintf("I  - #%04X", vm.I), x, y+3*LineHeight)
	DrawText(fmt.Sprintf("DT - #%02X", vm.DelayTimer()), x, y+5*LineHeight)
	DrawText(fmt.Sprintf("ST - #%02X", vm.SoundTimer()), x, y+6*LineHeight)
	DrawText(fmt.Sprintf("%d/S", m.Speed), x, y+8*LineHeight)

	// show the keys being held
	keys := ""
	for k, down := range vm.Keys {
		if down {
			keys += fmt.Sprintf("%X", k)
		}
	}

	DrawText("K  - "+keys, x, y+10*LineHeight)
}

/// Show the current log text.
///
func DebugLog(x, y int32, columns int) {
	Renderer.SetDrawColor(220, 220, 220, 255)

	for _, line := range Console.Window(DebugLines) {
		if len(line) > columns {
			line = line[:columns-3] + "..."
		}

		DrawText(line, x, y)

		// advance to the next line
		y += LineHeight
	}
}
