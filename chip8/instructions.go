package chip8

import (
	"fmt"
)

/// execute a decoded instruction fetched from address. The program counter
/// has already been advanced past it.
///
func (vm *CHIP_8) execute(address uint16, ins Instruction) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpCLS:
		vm.cls()
	case OpRET:
		return vm.ret()
	case OpJP:
		vm.jump(ins.NNN)
	case OpCALL:
		return vm.call(ins.NNN)
	case OpSEByte:
		vm.skipIf(x, ins.NN)
	case OpSNEByte:
		vm.skipIfNot(x, ins.NN)
	case OpSEReg:
		vm.skipIfXY(x, y)
	case OpLDByte:
		vm.loadX(x, ins.NN)
	case OpADDByte:
		vm.addX(x, ins.NN)
	case OpLDReg:
		vm.loadXY(x, y)
	case OpOR:
		vm.or(x, y)
	case OpAND:
		vm.and(x, y)
	case OpXOR:
		vm.xor(x, y)
	case OpADDReg:
		vm.addXY(x, y)
	case OpSUB:
		vm.subXY(x, y)
	case OpSHR:
		vm.shr(x, y)
	case OpSUBN:
		vm.subYX(x, y)
	case OpSHL:
		vm.shl(x, y)
	case OpSNEReg:
		vm.skipIfNotXY(x, y)
	case OpLDI:
		vm.loadI(ins.NNN)
	case OpJPV0:
		vm.jumpV0(x, ins.NNN)
	case OpRND:
		vm.rnd(x, ins.NN)
	case OpDRW:
		vm.drw(x, y, ins.N)
	case OpSKP:
		vm.skipIfPressed(x)
	case OpSKNP:
		vm.skipIfNotPressed(x)
	case OpLDVxDT:
		vm.loadXDT(x)
	case OpLDVxK:
		vm.loadXK(x)
	case OpLDDTVx:
		vm.loadDTX(x)
	case OpLDSTVx:
		vm.loadSTX(x)
	case OpADDI:
		vm.addIX(x)
	case OpLDF:
		vm.loadF(x)
	case OpLDB:
		vm.loadB(x)
	case OpLDIVx:
		vm.saveRegs(x)
	case OpLDVxI:
		vm.loadRegs(x)
	default:
		return &UnsupportedOpcodeError{Opcode: ins.Inst, Address: address}
	}

	return nil
}

/// Clear the video display memory.
///
func (vm *CHIP_8) cls() {
	vm.Video.Clear()
}

/// call a subroutine at address.
///
func (vm *CHIP_8) call(address uint16) error {
	if len(vm.Stack) >= vm.stackDepth {
		return fmt.Errorf("%w: call to %04X from %04X", ErrStackOverflow, address, (vm.PC-2)&0xFFF)
	}

	// push program counter onto stack
	vm.Stack = append(vm.Stack, vm.PC)

	// jump to address
	vm.PC = address

	return nil
}

/// return from subroutine.
///
func (vm *CHIP_8) ret() error {
	n := len(vm.Stack)
	if n == 0 {
		return fmt.Errorf("%w: return from %04X", ErrStackUnderflow, (vm.PC-2)&0xFFF)
	}

	// restore program counter
	vm.PC = vm.Stack[n-1]
	vm.Stack = vm.Stack[:n-1]

	return nil
}

/// jump to address.
///
func (vm *CHIP_8) jump(address uint16) {
	vm.PC = address
}

/// jump to address + v0, or xnn + vx with the JumpVX quirk.
///
func (vm *CHIP_8) jumpV0(x byte, address uint16) {
	if vm.quirks.JumpVX {
		vm.PC = (address + uint16(vm.V[x])) & 0xFFF
	} else {
		vm.PC = (address + uint16(vm.V[0])) & 0xFFF
	}
}

/// skip next instruction if vx == n.
///
func (vm *CHIP_8) skipIf(x, b byte) {
	if vm.V[x] == b {
		vm.PC += 2
	}
}

/// skip next instruction if vx != n.
///
func (vm *CHIP_8) skipIfNot(x, b byte) {
	if vm.V[x] != b {
		vm.PC += 2
	}
}

/// skip next instruction if vx == vy.
///
func (vm *CHIP_8) skipIfXY(x, y byte) {
	if vm.V[x] == vm.V[y] {
		vm.PC += 2
	}
}

/// skip next instruction if vx != vy.
///
func (vm *CHIP_8) skipIfNotXY(x, y byte) {
	if vm.V[x] != vm.V[y] {
		vm.PC += 2
	}
}

/// skip next instruction if key(vx) is pressed.
///
func (vm *CHIP_8) skipIfPressed(x byte) {
	if vm.Keys[vm.V[x]&0xF] {
		vm.PC += 2
	}
}

/// skip next instruction if key(vx) is not pressed.
///
func (vm *CHIP_8) skipIfNotPressed(x byte) {
	if !vm.Keys[vm.V[x]&0xF] {
		vm.PC += 2
	}
}

/// load n into vx.
///
func (vm *CHIP_8) loadX(x, b byte) {
	vm.V[x] = b
}

/// load y into vx.
///
func (vm *CHIP_8) loadXY(x, y byte) {
	vm.V[x] = vm.V[y]
}

/// load delay timer into vx.
///
func (vm *CHIP_8) loadXDT(x byte) {
	vm.V[x] = vm.DT
}

/// load vx into delay timer.
///
func (vm *CHIP_8) loadDTX(x byte) {
	vm.DT = vm.V[x]
}

/// load vx into sound timer.
///
func (vm *CHIP_8) loadSTX(x byte) {
	vm.ST = vm.V[x]
}

/// load vx with the next key hit. Until a key is down the instruction
/// repeats.
///
func (vm *CHIP_8) loadXK(x byte) {
	for k, down := range vm.Keys {
		if down {
			vm.V[x] = byte(k)
			return
		}
	}

	vm.PC = (vm.PC - 2) & 0xFFF
}

/// load address register.
///
func (vm *CHIP_8) loadI(address uint16) {
	vm.I = address
}

/// load address with BCD of vx.
///
func (vm *CHIP_8) loadB(x byte) {
	n := uint16(vm.V[x])
	b := uint16(0)

	// perform 8 shifts
	for i := uint(0); i < 8; i++ {
		if (b>>0)&0xF >= 5 {
			b += 3
		}
		if (b>>4)&0xF >= 5 {
			b += 3 << 4
		}
		if (b>>8)&0xF >= 5 {
			b += 3 << 8
		}

		// apply shift, pull next bit
		b = (b << 1) | (n >> (7 - i) & 1)
	}

	// write to memory
	vm.Memory[(vm.I+0)&0xFFF] = byte(b>>8) & 0xF
	vm.Memory[(vm.I+1)&0xFFF] = byte(b>>4) & 0xF
	vm.Memory[(vm.I+2)&0xFFF] = byte(b>>0) & 0xF
}

/// load font sprite for vx into I.
///
func (vm *CHIP_8) loadF(x byte) {
	vm.I = FontAddress + uint16(vm.V[x]&0xF)*GlyphSize
}

/// or vx with vy into vx.
///
func (vm *CHIP_8) or(x, y byte) {
	vm.V[x] |= vm.V[y]

	if vm.quirks.ResetFlag {
		vm.V[0xF] = 0
	}
}

/// and vx with vy into vx.
///
func (vm *CHIP_8) and(x, y byte) {
	vm.V[x] &= vm.V[y]

	if vm.quirks.ResetFlag {
		vm.V[0xF] = 0
	}
}

/// xor vx with vy into vx.
///
func (vm *CHIP_8) xor(x, y byte) {
	vm.V[x] ^= vm.V[y]

	if vm.quirks.ResetFlag {
		vm.V[0xF] = 0
	}
}

/// shift source returns vx, or vy with the ShiftVY quirk.
///
func (vm *CHIP_8) shiftSource(x, y byte) byte {
	if vm.quirks.ShiftVY {
		return vm.V[y]
	}

	return vm.V[x]
}

/// shl 1 bit into vx, set carry to MSB of the source before shift.
///
func (vm *CHIP_8) shl(x, y byte) {
	s := vm.shiftSource(x, y)

	vm.V[x] = s << 1
	vm.V[0xF] = s >> 7
}

/// shr 1 bit into vx, set carry to LSB of the source before shift.
///
func (vm *CHIP_8) shr(x, y byte) {
	s := vm.shiftSource(x, y)

	vm.V[x] = s >> 1
	vm.V[0xF] = s & 1
}

/// add n to vx.
///
func (vm *CHIP_8) addX(x, b byte) {
	vm.V[x] += b
}

/// add vy to vx and set carry.
///
func (vm *CHIP_8) addXY(x, y byte) {
	sum := uint16(vm.V[x]) + uint16(vm.V[y])

	vm.V[x] = byte(sum)
	vm.V[0xF] = byte(sum >> 8)
}

/// add vx to i.
///
func (vm *CHIP_8) addIX(x byte) {
	vm.I = (vm.I + uint16(vm.V[x])) & 0xFFF
}

/// subtract vy from vx, set carry if no borrow.
///
func (vm *CHIP_8) subXY(x, y byte) {
	carry := flag(vm.V[x] >= vm.V[y])

	vm.V[x] -= vm.V[y]
	vm.V[0xF] = carry
}

/// subtract vx from vy and store in vx, set carry if no borrow.
///
func (vm *CHIP_8) subYX(x, y byte) {
	carry := flag(vm.V[y] >= vm.V[x])

	vm.V[x] = vm.V[y] - vm.V[x]
	vm.V[0xF] = carry
}

func flag(b bool) byte {
	if b {
		return 1
	}

	return 0
}

/// load a random number & n into vx.
///
func (vm *CHIP_8) rnd(x, b byte) {
	vm.V[x] = byte(vm.rng.Intn(0x100)) & b
}

/// draw a sprite at I to video memory at vx, vy. Sprites are clipped at the
/// right edge and wrap from the bottom edge to the top.
///
func (vm *CHIP_8) drw(x, y, n byte) {
	x0 := int(vm.V[x]) % Width
	y0 := int(vm.V[y])

	vm.V[0xF] = 0

	// draw each row of the sprite
	for row := 0; row < int(n); row++ {
		s := vm.Memory[(vm.I+uint16(row))&0xFFF]

		for col := 0; col < 8; col++ {
			if s>>(7-col)&1 == 0 {
				continue
			}

			xPos := x0 + col

			// clip pixels that are off screen
			if xPos >= Width {
				break
			}

			yPos := (y0 + row) % Height

			// were any pixels turned off?
			if vm.Video.Get(yPos, xPos) {
				vm.V[0xF] = 1
			}

			vm.Video.Toggle(yPos, xPos)
		}
	}
}

/// save registers v0..vx to I.
///
func (vm *CHIP_8) saveRegs(x byte) {
	for i := uint16(0); i <= uint16(x); i++ {
		vm.Memory[(vm.I+i)&0xFFF] = vm.V[i]
	}

	if vm.quirks.IncrementIndex {
		vm.I = (vm.I + uint16(x) + 1) & 0xFFF
	}
}

/// load registers v0..vx from I.
///
func (vm *CHIP_8) loadRegs(x byte) {
	for i := uint16(0); i <= uint16(x); i++ {
		vm.V[i] = vm.Memory[(vm.I+i)&0xFFF]
	}

	if vm.quirks.IncrementIndex {
		vm.I = (vm.I + uint16(x) + 1) & 0xFFF
	}
}
