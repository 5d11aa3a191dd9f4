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

package chip8

import (
	"bufio"
	"bytes"
	"fmt"
)

/// Assembly is a completely assembled source file.
///
type Assembly struct {
	/// ROM is the final, assembled bytes to load at Base.
	///
	ROM []byte

	/// Label mapping.
	///
	Labels map[string]token

	/// Addresses with unresolved labels.
	///
	Unresolved map[int]Reference

	/// Base address the ROM begins at.
	///
	Base int
}

/// Reference is a forward label reference waiting to be patched.
///
type Reference struct {
	Label string

	/// Bits is the operand width: 8 for bytes, 12 for addresses and 16
	/// for words.
	///
	Bits int
}

/// Assemble an input CHIP-8 source code file.
///
func Assemble(program []byte) (out *Assembly, err error) {
	var line int

	// create an empty, return assembly
	out = &Assembly{
		ROM:        make([]byte, ProgramStart, MemorySize),
		Labels:     make(map[string]token),
		Unresolved: make(map[int]Reference),
		Base:       ProgramStart,
	}

	// handle panics during assembly
	defer func() {
		if r := recover(); r != nil {
			if line > 0 {
				err = fmt.Errorf("line %d - %v", line, r)
			} else {
				err = fmt.Errorf("%v", r)
			}

			out = nil
		}
	}()

	// create simple line scanner over the file
	reader := bytes.NewReader(bytes.ToUpper(program))
	scanner := bufio.NewScanner(reader)

	// parse and assemble
	for line = 1; scanner.Scan(); line++ {
		out.assemble(&tokenScanner{bytes: scanner.Bytes()})

		if len(out.ROM) > MemorySize {
			panic("program too large")
		}
	}

	// clear the line number as we're done assembling
	line = 0

	// resolve all label references
	for address, ref := range out.Unresolved {
		if t, ok := out.Labels[ref.Label]; ok {
			if t.typ != TOKEN_LIT {
				panic(fmt.Errorf("label does not resolve to a literal: %s", ref.Label))
			}

			out.patch(address, ref, t.val.(int))

			// delete the unresolved address
			delete(out.Unresolved, address)
		}
	}

	// if there are any unresolved addresses, panic
	for _, ref := range out.Unresolved {
		panic(fmt.Errorf("unresolved label: %s", ref.Label))
	}

	// drop the reserved bytes before the program
	out.ROM = out.ROM[out.Base:]

	return
}

/// Patch a resolved forward reference into the ROM.
///
func (a *Assembly) patch(address int, ref Reference, v int) {
	switch ref.Bits {
	case 8:
		if v < -0x80 || v > 0xFF {
			panic(fmt.Errorf("illegal byte: %s", ref.Label))
		}

		a.ROM[address] = byte(v)
	case 12:
		if v < 0 || v >= MemorySize {
			panic(fmt.Errorf("illegal address: %s", ref.Label))
		}

		// the high nibble of the first byte is the instruction
		a.ROM[address] = byte(v>>8&0xF) | (a.ROM[address] & 0xF0)
		a.ROM[address+1] = byte(v & 0xFF)
	default:
		if v < 0 || v > 0xFFFF {
			panic(fmt.Errorf("invalid word: %s", ref.Label))
		}

		a.ROM[address] = byte(v >> 8 & 0xFF)
		a.ROM[address+1] = byte(v & 0xFF)
	}
}

/// Compile a single line into the assembly.
///
func (a *Assembly) assemble(s *tokenScanner) {
	t := s.scanToken()

	// assign labels
	if t.typ == TOKEN_LABEL {
		t = a.assembleLabel(t.val.(string), s)
	}

	// continue assembling
	switch t.typ {
	case TOKEN_INSTRUCTION:
		a.assembleInstruction(t.val.(string), s)
	case TOKEN_END:
	default:
		panic("unexpected token")
	}
}

/// Scan for a label and add it to the assembly.
///
func (a *Assembly) assembleLabel(label string, s *tokenScanner) token {
	if _, exists := a.Labels[label]; exists {
		panic(fmt.Errorf("duplicate label: %s", label))
	}

	// by default, the label is assigned the current address
	a.Labels[label] = token{typ: TOKEN_LIT, val: len(a.ROM)}

	// scan the next token
	t := s.scanToken()

	// if EQU or VAR, reassign the label
	if t.typ == TOKEN_EQU || t.typ == TOKEN_VAR {
		v := s.scanToken()

		// equ requires a literal, and var requires a v-register
		if (t.typ == TOKEN_EQU && v.typ == TOKEN_LIT) || (t.typ == TOKEN_VAR && v.typ == TOKEN_V) {
			a.Labels[label] = v

			// should be the final token
			if t = s.scanToken(); t.typ == TOKEN_END {
				return t
			}
		}

		panic("illegal label assignment")
	}

	return t
}

/// Compile a single instruction into the assembly.
///
func (a *Assembly) assembleInstruction(i string, s *tokenScanner) {
	tokens := s.scanOperands()

	var b []byte

	switch i {
	case "CLS":
		b = a.assembleImplied(tokens, 0x00, 0xE0)
	case "RET":
		b = a.assembleImplied(tokens, 0x00, 0xEE)
	case "JP":
		b = a.assembleJP(tokens)
	case "CALL":
		b = a.assembleCALL(tokens)
	case "SE":
		b = a.assembleSE(tokens)
	case "SNE":
		b = a.assembleSNE(tokens)
	case "SKP":
		b = a.assembleKey(tokens, 0x9E)
	case "SKNP":
		b = a.assembleKey(tokens, 0xA1)
	case "OR":
		b = a.assembleALU(tokens, 0x01)
	case "AND":
		b = a.assembleALU(tokens, 0x02)
	case "XOR":
		b = a.assembleALU(tokens, 0x03)
	case "SUB":
		b = a.assembleALU(tokens, 0x05)
	case "SUBN":
		b = a.assembleALU(tokens, 0x07)
	case "SHR":
		b = a.assembleShift(tokens, 0x06)
	case "SHL":
		b = a.assembleShift(tokens, 0x0E)
	case "ADD":
		b = a.assembleADD(tokens)
	case "RND":
		b = a.assembleRND(tokens)
	case "DRW":
		b = a.assembleDRW(tokens)
	case "LD":
		b = a.assembleLD(tokens)
	case "BYTE":
		b = a.assembleBYTE(tokens)
	case "WORD":
		b = a.assembleWORD(tokens)
	case "ALIGN":
		b = a.assembleALIGN(tokens)
	case "PAD":
		b = a.assemblePAD(tokens)
	default:
		panic("illegal instruction")
	}

	a.ROM = append(a.ROM, b...)
}

/// Assemble a single operand, expanding label references. An unknown label
/// is assumed to be a forward reference to a literal. It assembles as zero
/// and the encoder using it records where to patch it.
///
func (a *Assembly) assembleOperand(t token) token {
	if t.typ == TOKEN_REF {
		label := t.val.(string)
		if v, exists := a.Labels[label]; exists {
			t = v
		} else {
			t = token{typ: TOKEN_LIT, val: 0, ref: label}
		}
	}

	return t
}

/// Record an unresolved reference at an offset into the ROM.
///
func (a *Assembly) reference(t token, at, bits int) {
	if t.ref != "" {
		a.Unresolved[at] = Reference{Label: t.ref, Bits: bits}
	}
}

/// Literal value of an operand that must be known immediately.
///
func literal(t token) int {
	if t.ref != "" {
		panic(fmt.Errorf("forward reference not allowed: %s", t.ref))
	}

	return t.val.(int)
}

/// Match the desired tokens with a list of tokens. Expand defines and labels.
///
func (a *Assembly) assembleOperands(tokens []token, m ...tokenType) ([]token, bool) {
	ops := make([]token, 0, 3)

	// the number of desired tokens should match
	if len(tokens) != len(m) {
		return nil, false
	}

	// expand and compare the token types
	for i, typ := range m {
		t := tokens[i]

		// only expand labels where a literal or register may appear
		if typ == TOKEN_LIT || typ == TOKEN_V {
			t = a.assembleOperand(t)
		}

		// compare token types
		if t.typ != typ {
			return nil, false
		}

		// append the operand
		ops = append(ops, t)
	}

	return ops, true
}

/// Assemble an instruction that takes no operands.
///
func (a *Assembly) assembleImplied(tokens []token, msb, lsb byte) []byte {
	if len(tokens) == 0 {
		return []byte{msb, lsb}
	}

	panic("illegal instruction")
}

/// Assemble an instruction with a 12-bit address operand.
///
func (a *Assembly) encodeAddress(w byte, t token) []byte {
	address := t.val.(int)
	if address < 0 || address >= MemorySize {
		panic("illegal address")
	}

	a.reference(t, len(a.ROM), 12)

	return []byte{w<<4 | byte(address>>8&0xF), byte(address & 0xFF)}
}

/// Assemble an instruction with a register and byte operand.
///
func (a *Assembly) encodeByte(w byte, x int, t token) []byte {
	b := t.val.(int)
	if b < -0x80 || b > 0xFF {
		panic("illegal byte")
	}

	a.reference(t, len(a.ROM)+1, 8)

	return []byte{w<<4 | byte(x), byte(b)}
}

/// Assemble an instruction with two register operands.
///
func encodeXY(w byte, x, y int, n byte) []byte {
	return []byte{w<<4 | byte(x), byte(y<<4) | n}
}

/// Assemble a JP instruction.
///
func (a *Assembly) assembleJP(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_LIT); ok {
		return a.encodeAddress(0x1, ops[0])
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_LIT); ok {
		if ops[0].val.(int) == 0 {
			return a.encodeAddress(0xB, ops[1])
		}
	}

	panic("illegal instruction")
}

/// Assemble a CALL instruction.
///
func (a *Assembly) assembleCALL(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_LIT); ok {
		return a.encodeAddress(0x2, ops[0])
	}

	panic("illegal instruction")
}

/// Assemble a SE instruction.
///
func (a *Assembly) assembleSE(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_LIT); ok {
		return a.encodeByte(0x3, ops[0].val.(int), ops[1])
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_V); ok {
		return encodeXY(0x5, ops[0].val.(int), ops[1].val.(int), 0x0)
	}

	panic("illegal instruction")
}

/// Assemble a SNE instruction.
///
func (a *Assembly) assembleSNE(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_LIT); ok {
		return a.encodeByte(0x4, ops[0].val.(int), ops[1])
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_V); ok {
		return encodeXY(0x9, ops[0].val.(int), ops[1].val.(int), 0x0)
	}

	panic("illegal instruction")
}

/// Assemble a SKP or SKNP instruction.
///
func (a *Assembly) assembleKey(tokens []token, lsb byte) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_V); ok {
		return []byte{0xE0 | byte(ops[0].val.(int)), lsb}
	}

	panic("illegal instruction")
}

/// Assemble a register to register ALU instruction.
///
func (a *Assembly) assembleALU(tokens []token, n byte) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_V); ok {
		return encodeXY(0x8, ops[0].val.(int), ops[1].val.(int), n)
	}

	panic("illegal instruction")
}

/// Assemble a SHR or SHL instruction. With a single operand the register
/// is shifted in place.
///
func (a *Assembly) assembleShift(tokens []token, n byte) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_V); ok {
		x := ops[0].val.(int)

		return encodeXY(0x8, x, x, n)
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_V); ok {
		return encodeXY(0x8, ops[0].val.(int), ops[1].val.(int), n)
	}

	panic("illegal instruction")
}

/// Assemble an ADD instruction.
///
func (a *Assembly) assembleADD(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_LIT); ok {
		return a.encodeByte(0x7, ops[0].val.(int), ops[1])
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_V); ok {
		return encodeXY(0x8, ops[0].val.(int), ops[1].val.(int), 0x4)
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_I, TOKEN_V); ok {
		return []byte{0xF0 | byte(ops[1].val.(int)), 0x1E}
	}

	panic("illegal instruction")
}

/// Assemble a RND instruction.
///
func (a *Assembly) assembleRND(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_LIT); ok {
		return a.encodeByte(0xC, ops[0].val.(int), ops[1])
	}

	panic("illegal instruction")
}

/// Assemble a DRW instruction.
///
func (a *Assembly) assembleDRW(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_V, TOKEN_LIT); ok {
		n := literal(ops[2])

		if n >= 0 && n < 0x10 {
			return encodeXY(0xD, ops[0].val.(int), ops[1].val.(int), byte(n))
		}
	}

	panic("illegal instruction")
}

/// Assemble a LD instruction.
///
func (a *Assembly) assembleLD(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_LIT); ok {
		return a.encodeByte(0x6, ops[0].val.(int), ops[1])
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_V); ok {
		return encodeXY(0x8, ops[0].val.(int), ops[1].val.(int), 0x0)
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_I, TOKEN_LIT); ok {
		return a.encodeAddress(0xA, ops[1])
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_DT); ok {
		return []byte{0xF0 | byte(ops[0].val.(int)), 0x07}
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_K); ok {
		return []byte{0xF0 | byte(ops[0].val.(int)), 0x0A}
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_DT, TOKEN_V); ok {
		return []byte{0xF0 | byte(ops[1].val.(int)), 0x15}
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_ST, TOKEN_V); ok {
		return []byte{0xF0 | byte(ops[1].val.(int)), 0x18}
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_F, TOKEN_V); ok {
		return []byte{0xF0 | byte(ops[1].val.(int)), 0x29}
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_B, TOKEN_V); ok {
		return []byte{0xF0 | byte(ops[1].val.(int)), 0x33}
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_ADDRESS, TOKEN_V); ok {
		return []byte{0xF0 | byte(ops[1].val.(int)), 0x55}
	}

	if ops, ok := a.assembleOperands(tokens, TOKEN_V, TOKEN_ADDRESS); ok {
		return []byte{0xF0 | byte(ops[0].val.(int)), 0x65}
	}

	panic("illegal instruction")
}

/// Assemble a BYTE instruction.
///
func (a *Assembly) assembleBYTE(tokens []token) []byte {
	b := make([]byte, 0, len(tokens))

	for _, t := range tokens {
		op := a.assembleOperand(t)

		switch op.typ {
		case TOKEN_LIT:
			if op.val.(int) < -0x80 || op.val.(int) > 0xFF {
				panic("invalid byte")
			}

			a.reference(op, len(a.ROM)+len(b), 8)

			b = append(b, byte(op.val.(int)))
		case TOKEN_TEXT:
			b = append(b, op.val.(string)...)
		default:
			panic("invalid byte")
		}
	}

	return b
}

/// Assemble a WORD instruction.
///
func (a *Assembly) assembleWORD(tokens []token) []byte {
	b := make([]byte, 0, len(tokens)*2)

	for _, t := range tokens {
		op := a.assembleOperand(t)

		if op.typ != TOKEN_LIT || op.val.(int) < 0 || op.val.(int) > 0xFFFF {
			panic("invalid word")
		}

		a.reference(op, len(a.ROM)+len(b), 16)

		msb := op.val.(int) >> 8 & 0xFF
		lsb := op.val.(int) & 0xFF

		// store msb first
		b = append(b, byte(msb), byte(lsb))
	}

	return b
}

/// Assemble an ALIGN instruction.
///
func (a *Assembly) assembleALIGN(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_LIT); ok {
		n := literal(ops[0])

		if n > 0 && n&(n-1) == 0 {
			offset := len(a.ROM) & (n - 1)

			// already aligned
			if offset == 0 {
				return nil
			}

			// reserve pad bytes to meet alignment
			return make([]byte, n-offset)
		}
	}

	panic("illegal alignment")
}

/// Assemble a PAD instruction.
///
func (a *Assembly) assemblePAD(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, TOKEN_LIT); ok {
		n := literal(ops[0])

		if n >= 0 && n <= MemorySize-len(a.ROM) {
			return make([]byte, n)
		}
	}

	panic("illegal size")
}
