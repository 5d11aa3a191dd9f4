package chip8

/// Fields are the nibble and byte operands of a 16-bit instruction.
///
type Fields struct {
	/// Inst is the raw instruction word.
	///
	Inst uint16

	/// W is the high nibble, which selects the instruction family.
	///
	W byte

	/// X and Y are register operands.
	///
	X byte
	Y byte

	/// N is the low nibble, NN the low byte and NNN the 12-bit address.
	///
	N   byte
	NN  byte
	NNN uint16
}

/// DecodeFields splits an instruction into its operand fields. Every
/// 16-bit value decodes.
///
func DecodeFields(inst uint16) Fields {
	return Fields{
		Inst: inst,
		W:    byte(inst >> 12 & 0xF),
		X:    byte(inst >> 8 & 0xF),
		Y:    byte(inst >> 4 & 0xF),
		N:    byte(inst & 0xF),
		NN:   byte(inst & 0xFF),
		NNN:  inst & 0xFFF,
	}
}

/// Op identifies one CHIP-8 instruction.
///
type Op int

const (
	OpInvalid Op = iota
	OpCLS
	OpRET
	OpJP
	OpCALL
	OpSEByte
	OpSNEByte
	OpSEReg
	OpLDByte
	OpADDByte
	OpLDReg
	OpOR
	OpAND
	OpXOR
	OpADDReg
	OpSUB
	OpSHR
	OpSUBN
	OpSHL
	OpSNEReg
	OpLDI
	OpJPV0
	OpRND
	OpDRW
	OpSKP
	OpSKNP
	OpLDVxDT
	OpLDVxK
	OpLDDTVx
	OpLDSTVx
	OpADDI
	OpLDF
	OpLDB
	OpLDIVx
	OpLDVxI
)

/// Instruction is a decoded instruction: its operand fields and which
/// operation they select.
///
type Instruction struct {
	Fields

	Op Op
}

/// Valid is false if the instruction word matched no known operation.
///
func (ins Instruction) Valid() bool {
	return ins.Op != OpInvalid
}

/// Decode an instruction word into an Instruction.
///
func Decode(inst uint16) Instruction {
	f := DecodeFields(inst)

	return Instruction{Fields: f, Op: classify(f)}
}

// families 0x0, 0x5, 0x8, 0x9, 0xE and 0xF need a second look at the low bits
func classify(f Fields) Op {
	switch f.W {
	case 0x0:
		switch f.NNN {
		case 0x0E0:
			return OpCLS
		case 0x0EE:
			return OpRET
		}
	case 0x1:
		return OpJP
	case 0x2:
		return OpCALL
	case 0x3:
		return OpSEByte
	case 0x4:
		return OpSNEByte
	case 0x5:
		if f.N == 0 {
			return OpSEReg
		}
	case 0x6:
		return OpLDByte
	case 0x7:
		return OpADDByte
	case 0x8:
		return classifyALU(f.N)
	case 0x9:
		if f.N == 0 {
			return OpSNEReg
		}
	case 0xA:
		return OpLDI
	case 0xB:
		return OpJPV0
	case 0xC:
		return OpRND
	case 0xD:
		return OpDRW
	case 0xE:
		switch f.NN {
		case 0x9E:
			return OpSKP
		case 0xA1:
			return OpSKNP
		}
	case 0xF:
		return classifyMisc(f.NN)
	}

	return OpInvalid
}

func classifyALU(n byte) Op {
	switch n {
	case 0x0:
		return OpLDReg
	case 0x1:
		return OpOR
	case 0x2:
		return OpAND
	case 0x3:
		return OpXOR
	case 0x4:
		return OpADDReg
	case 0x5:
		return OpSUB
	case 0x6:
		return OpSHR
	case 0x7:
		return OpSUBN
	case 0xE:
		return OpSHL
	}

	return OpInvalid
}

func classifyMisc(nn byte) Op {
	switch nn {
	case 0x07:
		return OpLDVxDT
	case 0x0A:
		return OpLDVxK
	case 0x15:
		return OpLDDTVx
	case 0x18:
		return OpLDSTVx
	case 0x1E:
		return OpADDI
	case 0x29:
		return OpLDF
	case 0x33:
		return OpLDB
	case 0x55:
		return OpLDIVx
	case 0x65:
		return OpLDVxI
	}

	return OpInvalid
}
