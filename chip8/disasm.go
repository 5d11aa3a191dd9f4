package chip8

import (
	"fmt"
	"strings"

	cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

/// mnemonics maps every operation to its instruction in the retrogolib
/// CHIP-8 instruction set.
///
var mnemonics = map[Op]*cpu.Instruction{
	OpCLS:     cpu.ClsInst,
	OpRET:     cpu.RetInst,
	OpJP:      cpu.JpInst,
	OpCALL:    cpu.CallInst,
	OpSEByte:  cpu.SeInst,
	OpSNEByte: cpu.SneInst,
	OpSEReg:   cpu.SeInst,
	OpLDByte:  cpu.LdInst,
	OpADDByte: cpu.AddInst,
	OpLDReg:   cpu.LdInst,
	OpOR:      cpu.OrInst,
	OpAND:     cpu.AndInst,
	OpXOR:     cpu.XorInst,
	OpADDReg:  cpu.AddInst,
	OpSUB:     cpu.SubInst,
	OpSHR:     cpu.ShrInst,
	OpSUBN:    cpu.SubnInst,
	OpSHL:     cpu.ShlInst,
	OpSNEReg:  cpu.SneInst,
	OpLDI:     cpu.LdInst,
	OpJPV0:    cpu.JpInst,
	OpRND:     cpu.RndInst,
	OpDRW:     cpu.DrwInst,
	OpSKP:     cpu.SkpInst,
	OpSKNP:    cpu.SknpInst,
	OpLDVxDT:  cpu.LdInst,
	OpLDVxK:   cpu.LdInst,
	OpLDDTVx:  cpu.LdInst,
	OpLDSTVx:  cpu.LdInst,
	OpADDI:    cpu.AddInst,
	OpLDF:     cpu.LdInst,
	OpLDB:     cpu.LdInst,
	OpLDIVx:   cpu.LdInst,
	OpLDVxI:   cpu.LdInst,
}

/// Name returns the upper-case mnemonic of an operation, or "??".
///
func (op Op) Name() string {
	if ins, ok := mnemonics[op]; ok {
		return strings.ToUpper(ins.Name)
	}

	return "??"
}

/// Mnemonic formats a decoded instruction as assembly source.
///
func Mnemonic(ins Instruction) string {
	name := ins.Op.Name()
	x, y := ins.X, ins.Y

	var operands string

	switch ins.Op {
	case OpCLS, OpRET, OpInvalid:
		return name
	case OpJP, OpCALL:
		operands = fmt.Sprintf("#%03X", ins.NNN)
	case OpJPV0:
		operands = fmt.Sprintf("V0, #%03X", ins.NNN)
	case OpSEByte, OpSNEByte, OpLDByte, OpADDByte, OpRND:
		operands = fmt.Sprintf("V%X, #%02X", x, ins.NN)
	case OpSEReg, OpSNEReg, OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSUBN:
		operands = fmt.Sprintf("V%X, V%X", x, y)
	case OpSHR, OpSHL:
		if x == y {
			operands = fmt.Sprintf("V%X", x)
		} else {
			operands = fmt.Sprintf("V%X, V%X", x, y)
		}
	case OpLDI:
		operands = fmt.Sprintf("I, #%03X", ins.NNN)
	case OpDRW:
		operands = fmt.Sprintf("V%X, V%X, %d", x, y, ins.N)
	case OpSKP, OpSKNP:
		operands = fmt.Sprintf("V%X", x)
	case OpLDVxDT:
		operands = fmt.Sprintf("V%X, DT", x)
	case OpLDVxK:
		operands = fmt.Sprintf("V%X, K", x)
	case OpLDDTVx:
		operands = fmt.Sprintf("DT, V%X", x)
	case OpLDSTVx:
		operands = fmt.Sprintf("ST, V%X", x)
	case OpADDI:
		operands = fmt.Sprintf("I, V%X", x)
	case OpLDF:
		operands = fmt.Sprintf("F, V%X", x)
	case OpLDB:
		operands = fmt.Sprintf("B, V%X", x)
	case OpLDIVx:
		operands = fmt.Sprintf("[I], V%X", x)
	case OpLDVxI:
		operands = fmt.Sprintf("V%X, [I]", x)
	}

	return fmt.Sprintf("%-6s %s", name, operands)
}

/// Disassemble the CHIP-8 instruction at address.
///
func (vm *CHIP_8) Disassemble(address uint16) string {
	if int(address) >= len(vm.Memory)-1 {
		return ""
	}

	// fetch the instruction at this location
	inst := uint16(vm.Memory[address])<<8 | uint16(vm.Memory[address+1])

	// end of program memory?
	if inst == 0 {
		return fmt.Sprintf("%04X -", address)
	}

	return fmt.Sprintf("%04X - %s", address, Mnemonic(Decode(inst)))
}
