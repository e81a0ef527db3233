package bytecode

import "encoding/binary"

// DebugInfo stores source location for error reporting, one entry per
// instruction start (not per byte, unlike the teacher's per-byte table).
type DebugInfo struct {
	Line   int
	Column int
}

// Chunk is one compiled function's instruction stream plus its constant
// pool (spec.md §4.H). Constants may be any literal the lexer produces:
// rational.Q, cplx.C, string, or nested chunks are never stored here
// directly (functions are addressed by name through the registry).
type Chunk struct {
	Code      []byte
	Constants []interface{}
	Debug     map[int]DebugInfo // keyed by the instruction's starting byte offset
	NumLocals int
}

func NewChunk() *Chunk {
	return &Chunk{Debug: make(map[int]DebugInfo)}
}

func (c *Chunk) mark(pos, line, col int) {
	c.Debug[pos] = DebugInfo{Line: line, Column: col}
}

// Emit writes a bare opcode with no operand (DUP, POP, RETURN, ...).
func (c *Chunk) Emit(op OpCode, line, col int) int {
	pos := len(c.Code)
	c.Code = append(c.Code, byte(op))
	c.mark(pos, line, col)
	return pos
}

// EmitU16 writes an opcode followed by a 16-bit big-endian operand
// (constant/local/global slot, MAKE_LIST count, ...). Debug info is
// recorded once per instruction, keyed by the opcode's own position, not
// per byte.
func (c *Chunk) EmitU16(op OpCode, operand uint16, line, col int) int {
	pos := len(c.Code)
	c.Code = append(c.Code, byte(op))
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], operand)
	c.Code = append(c.Code, buf[:]...)
	c.mark(pos, line, col)
	return pos
}

// EmitU8 writes an opcode followed by a single byte operand (OP's ArithOp
// selector, INDEX/SET_INDEX dimension counts, MAKE_MATRIX's ndims).
func (c *Chunk) EmitU8(op OpCode, operand byte, line, col int) int {
	pos := len(c.Code)
	c.Code = append(c.Code, byte(op), operand)
	c.mark(pos, line, col)
	return pos
}

// EmitU16U8 writes an opcode, a 16-bit operand, and a trailing byte (CALL
// name+argc, CALL_BUILTIN id+argc).
func (c *Chunk) EmitU16U8(op OpCode, u16 uint16, u8 byte, line, col int) int {
	pos := len(c.Code)
	c.Code = append(c.Code, byte(op))
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], u16)
	c.Code = append(c.Code, buf[:]...)
	c.Code = append(c.Code, u8)
	c.mark(pos, line, col)
	return pos
}

// EmitI16 writes an opcode followed by a signed 16-bit relative offset
// (BRANCH, BRANCH_IF, TRY); the offset is patched later via PatchI16.
func (c *Chunk) EmitI16(op OpCode, offset int16, line, col int) int {
	return c.EmitU16(op, uint16(offset), line, col)
}

// PatchI16 rewrites the operand written at pos+1 (pos is the opcode's own
// index, as returned by EmitI16) once the jump target is known.
func (c *Chunk) PatchI16(pos int, offset int16) {
	binary.BigEndian.PutUint16(c.Code[pos+1:pos+3], uint16(offset))
}

func (c *Chunk) ReadU16(pos int) uint16 {
	return binary.BigEndian.Uint16(c.Code[pos : pos+2])
}

func (c *Chunk) ReadI16(pos int) int16 {
	return int16(c.ReadU16(pos))
}

// AddConstant interns val, returning its index. Equal rational/string
// constants are not deduplicated; the compiler only calls this once per
// literal occurrence, matching the teacher's own AddConstant.
func (c *Chunk) AddConstant(val interface{}) int {
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1
}

func (c *Chunk) DebugAt(pc int) DebugInfo {
	return c.Debug[pc]
}

// Len reports the current write position, used by the compiler for
// relative-offset math during label/jump fixups.
func (c *Chunk) Len() int { return len(c.Code) }
