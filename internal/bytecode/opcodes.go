// Package bytecode defines the linear instruction stream of spec.md §4.H:
// one opcode per compiled statement/expression node, 16-bit operands
// (constant/local/global slots, jump offsets) rather than the teacher's
// single byte, since calculator programs routinely need more than 256
// constants or locals once bignum literals and nested scopes are in play.
package bytecode

// OpCode is a single instruction tag.
type OpCode byte

const (
	// PushConst pushes Chunk.Constants[operand] (spec.md §4.H PUSH_CONST).
	PushConst OpCode = iota
	// LoadLocal/StoreLocal address the current frame's parameter+local slots.
	LoadLocal
	StoreLocal
	// LoadGlobal/StoreGlobal address the environment's global symbol table;
	// the operand indexes a constant holding the name.
	LoadGlobal
	StoreGlobal
	// Call invokes the named compiled function; operand1 is the name
	// constant index, operand2 (a following byte) is argument count.
	Call
	// CallBuiltin invokes a native builtin by id; operand2 is argument count.
	CallBuiltin
	// Index/SetIndex implement the container protocol's index(container,
	// key, set?); the following byte gives the number of key dimensions
	// (Matrix n-dimensional indexing).
	Index
	SetIndex
	// Append/Delete round out the container protocol (§4.E item 2).
	Append
	Delete
	// Op dispatches an arithmetic/comparison/unary operator through
	// internal/value's BinOp/UnOp; operand selects which ArithOp.
	Op
	// Branch/BranchIf are signed 16-bit relative jumps from the instruction
	// following the operand.
	Branch
	BranchIf
	Return
	Dup
	Pop
	// MakeList pops operand values and builds a List.
	MakeList
	// MakeMatrix pops 2*ndims bound values (all lows, then all highs) then
	// one element value per cell of that box, building a Matrix (ndims
	// given by operand).
	MakeMatrix
	// NewObj instantiates operand (a type-name constant index) with zeroed
	// fields; GetField/SetField address fields by positional slot.
	NewObj
	GetField
	SetField
	// Try pushes a handler: on a faulting Op/Index/Call the VM jumps by
	// operand (a signed 16-bit offset from the instruction following it,
	// as for Branch) with the error value on the stack; ENDTRY pops
	// the innermost handler on normal exit from the protected region.
	Try
	EndTry
	// IsErr/ErrNo/NewError/RaiseError implement spec.md §4.I's first-class
	// error opcodes (ISERR, ERRNO, NEWERROR, ERROR).
	IsErr
	ErrNo
	NewError
	RaiseError
	// Halt ends the current frame; the compiler emits it only as the main
	// chunk's final instruction (stoponerror aborts through the VM's
	// checkFault, not through this opcode).
	Halt
)

// ArithOp indexes into value.Op for the generic Op opcode, keeping the
// bytecode stream's per-instruction operand a single byte regardless of
// how many operators the value layer defines.
type ArithOp byte

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
	ArithIDiv
	ArithMod
	ArithPow
	ArithEq
	ArithNe
	ArithLt
	ArithLe
	ArithGt
	ArithGe
	ArithBAnd
	ArithBOr
	ArithBXor
	ArithShl
	ArithShr
	ArithNeg
	ArithBNot
	ArithAbs
	ArithInv
	ArithSquare
	ArithConj
)
