package compiler

import (
	"calc/internal/bytecode"
	"calc/internal/lexer"
	"calc/internal/parser"
)

var binaryArith = map[string]bytecode.ArithOp{
	"+": bytecode.ArithAdd, "-": bytecode.ArithSub, "*": bytecode.ArithMul,
	"/": bytecode.ArithDiv, "//": bytecode.ArithIDiv, "%": bytecode.ArithMod,
	"**": bytecode.ArithPow, "==": bytecode.ArithEq, "!=": bytecode.ArithNe,
	"<": bytecode.ArithLt, "<=": bytecode.ArithLe, ">": bytecode.ArithGt,
	">=": bytecode.ArithGe, "&": bytecode.ArithBAnd, "|": bytecode.ArithBOr,
	"^": bytecode.ArithBXor, "<<": bytecode.ArithShl, ">>": bytecode.ArithShr,
}

var unaryArith = map[string]bytecode.ArithOp{
	"-": bytecode.ArithNeg, "~": bytecode.ArithBNot,
}

// compileExpr lowers an expression so that, after it runs, exactly one
// value sits on top of the VM stack.
func (c *compiler) compileExpr(e parser.Expr) {
	e.Accept(c)
}

func (c *compiler) VisitNumberLit(n *parser.NumberLit) interface{} {
	lit, ok := lexer.ParseNumber(n.Lexeme)
	if !ok {
		c.fail("invalid numeric literal %q", n.Lexeme)
		return nil
	}
	idx := c.chunk.AddConstant(lit)
	c.chunk.EmitU16(bytecode.PushConst, uint16(idx), 0, 0)
	return nil
}

func (c *compiler) VisitStringLit(s *parser.StringLit) interface{} {
	idx := c.chunk.AddConstant(s.Value)
	c.chunk.EmitU16(bytecode.PushConst, uint16(idx), 0, 0)
	return nil
}

func (c *compiler) VisitNullLit(n *parser.NullLit) interface{} {
	idx := c.chunk.AddConstant(nil)
	c.chunk.EmitU16(bytecode.PushConst, uint16(idx), 0, 0)
	return nil
}

func (c *compiler) VisitIdent(i *parser.Ident) interface{} {
	if !c.isGlobal {
		if slot, ok := c.locals[i.Name]; ok {
			c.chunk.EmitU16(bytecode.LoadLocal, uint16(slot), 0, 0)
			return nil
		}
	}
	idx := c.chunk.AddConstant(i.Name)
	c.chunk.EmitU16(bytecode.LoadGlobal, uint16(idx), 0, 0)
	return nil
}

func (c *compiler) VisitBinary(b *parser.Binary) interface{} {
	c.compileExpr(b.Left)
	c.compileExpr(b.Right)
	arith, ok := binaryArith[b.Op]
	if !ok {
		c.fail("unknown binary operator %q", b.Op)
		return nil
	}
	c.chunk.EmitU8(bytecode.Op, byte(arith), 0, 0)
	return nil
}

// VisitLogical compiles && and || with short-circuit branches rather than
// the generic Op opcode (neither side's value layer truthiness check can
// run unconditionally). Result follows the common "last evaluated operand"
// convention: `a && b` is a if a is falsy, else b; `a || b` is a if a is
// truthy, else b. BranchIf pops its condition and jumps only when truthy.
func (c *compiler) VisitLogical(l *parser.Logical) interface{} {
	c.compileExpr(l.Left)
	c.chunk.Emit(bytecode.Dup, 0, 0)
	takeRight := c.chunk.EmitI16(bytecode.BranchIf, 0, 0)

	if l.Op == "&&" {
		// Left falsy and BranchIf didn't fire: keep Left, skip Right.
		skipRight := c.chunk.EmitI16(bytecode.Branch, 0, 0)
		c.patchTo(takeRight, c.chunk.Len())
		c.chunk.Emit(bytecode.Pop, 0, 0)
		c.compileExpr(l.Right)
		c.patchTo(skipRight, c.chunk.Len())
		return nil
	}

	// ||: Left truthy, BranchIf jumps straight past the falsy path below,
	// keeping Left on the stack as the result.
	c.chunk.Emit(bytecode.Pop, 0, 0)
	c.compileExpr(l.Right)
	c.patchTo(takeRight, c.chunk.Len())
	return nil
}

func (c *compiler) VisitUnary(u *parser.Unary) interface{} {
	c.compileExpr(u.Operand)
	arith, ok := unaryArith[u.Op]
	if !ok {
		c.fail("unknown unary operator %q", u.Op)
		return nil
	}
	c.chunk.EmitU8(bytecode.Op, byte(arith), 0, 0)
	return nil
}

func (c *compiler) VisitAssign(a *parser.Assign) interface{} {
	c.compileExpr(a.Value)
	c.chunk.Emit(bytecode.Dup, 0, 0)
	c.storeName(a.Name)
	return nil
}

func (c *compiler) VisitCall(call *parser.Call) interface{} {
	for _, arg := range call.Args {
		c.compileExpr(arg)
	}
	idx := c.chunk.AddConstant(call.Callee)
	c.chunk.EmitU16U8(bytecode.Call, uint16(idx), byte(len(call.Args)), 0, 0)
	return nil
}

func (c *compiler) VisitIndex(ix *parser.Index) interface{} {
	c.compileExpr(ix.Object)
	for _, k := range ix.Indices {
		c.compileExpr(k)
	}
	c.chunk.EmitU8(bytecode.Index, byte(len(ix.Indices)), 0, 0)
	return nil
}

func (c *compiler) VisitListLit(l *parser.ListLit) interface{} {
	for _, el := range l.Elements {
		c.compileExpr(el)
	}
	c.chunk.EmitU16(bytecode.MakeList, uint16(len(l.Elements)), 0, 0)
	return nil
}

func (c *compiler) VisitFieldGet(f *parser.FieldGet) interface{} {
	c.compileExpr(f.Object)
	idx := c.chunk.AddConstant(f.Field)
	c.chunk.EmitU16(bytecode.GetField, uint16(idx), 0, 0)
	return nil
}

func (c *compiler) VisitNewObj(n *parser.NewObj) interface{} {
	idx := c.chunk.AddConstant(n.TypeName)
	c.chunk.EmitU16(bytecode.NewObj, uint16(idx), 0, 0)
	return nil
}

// storeName emits the pop-and-store half of an assignment: StoreLocal when
// name resolves to a slot in a function body, StoreGlobal otherwise.
func (c *compiler) storeName(name string) {
	if !c.isGlobal {
		if slot, ok := c.locals[name]; ok {
			c.chunk.EmitU16(bytecode.StoreLocal, uint16(slot), 0, 0)
			return
		}
	}
	idx := c.chunk.AddConstant(name)
	c.chunk.EmitU16(bytecode.StoreGlobal, uint16(idx), 0, 0)
}

func (c *compiler) patchTo(pos, target int) {
	c.chunk.PatchI16(pos, relOffset(pos, target))
}
