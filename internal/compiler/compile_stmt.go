package compiler

import (
	"calc/internal/bytecode"
	"calc/internal/parser"
)

func (c *compiler) compileStmt(s parser.Stmt) {
	s.Accept(c)
}

func (c *compiler) VisitExprStmt(s *parser.ExprStmt) interface{} {
	c.compileExpr(s.Expr)
	if c.isGlobal {
		// Bare top-level expressions become the REPL's "last value"
		// convention rather than being discarded.
		idx := c.chunk.AddConstant("ans")
		c.chunk.EmitU16(bytecode.StoreGlobal, uint16(idx), 0, 0)
		return nil
	}
	c.chunk.Emit(bytecode.Pop, 0, 0)
	return nil
}

func (c *compiler) VisitAssignStmt(s *parser.AssignStmt) interface{} {
	c.compileExpr(s.Value)
	c.storeName(s.Name)
	return nil
}

func (c *compiler) VisitIndexAssignStmt(s *parser.IndexAssignStmt) interface{} {
	c.compileExpr(s.Object)
	for _, k := range s.Indices {
		c.compileExpr(k)
	}
	c.compileExpr(s.Value)
	c.chunk.EmitU8(bytecode.SetIndex, byte(len(s.Indices)), 0, 0)
	return nil
}

func (c *compiler) VisitFieldAssignStmt(s *parser.FieldAssignStmt) interface{} {
	c.compileExpr(s.Object)
	c.compileExpr(s.Value)
	idx := c.chunk.AddConstant(s.Field)
	c.chunk.EmitU16(bytecode.SetField, uint16(idx), 0, 0)
	return nil
}

func (c *compiler) VisitIfStmt(s *parser.IfStmt) interface{} {
	c.compileExpr(s.Cond)
	thenBranch := c.chunk.EmitI16(bytecode.BranchIf, 0, 0)
	// Falsy fallthrough: Else body, then skip over Then.
	c.compileBlock(s.Else)
	end := c.chunk.EmitI16(bytecode.Branch, 0, 0)
	c.patchTo(thenBranch, c.chunk.Len())
	c.compileBlock(s.Then)
	c.patchTo(end, c.chunk.Len())
	return nil
}

func (c *compiler) pushLoop() *loopCtx {
	lc := &loopCtx{contTarget: -1}
	c.loops = append(c.loops, lc)
	return lc
}

func (c *compiler) pushSwitch() *loopCtx {
	lc := &loopCtx{contTarget: -1, isSwitch: true}
	c.loops = append(c.loops, lc)
	return lc
}

func (c *compiler) popLoop(continueTarget, endTarget int) {
	lc := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	for _, pos := range lc.breaks {
		c.patchTo(pos, endTarget)
	}
	for _, pos := range lc.continues {
		c.patchTo(pos, continueTarget)
	}
}

// emitBackJump emits an unconditional Branch to a target already known
// (a backward edge), computing its offset directly instead of through
// the patch-later path used for forward jumps.
func (c *compiler) emitBackJump(target int) {
	pos := c.chunk.Len()
	c.chunk.EmitI16(bytecode.Branch, relOffset(pos, target), 0, 0)
}

func (c *compiler) VisitWhileStmt(s *parser.WhileStmt) interface{} {
	c.pushLoop()
	top := c.chunk.Len()
	c.compileExpr(s.Cond)
	enterBody := c.chunk.EmitI16(bytecode.BranchIf, 0, 0)
	exitJump := c.chunk.EmitI16(bytecode.Branch, 0, 0)
	c.patchTo(enterBody, c.chunk.Len())
	c.compileBlock(s.Body)
	c.emitBackJump(top)
	end := c.chunk.Len()
	c.patchTo(exitJump, end)
	c.popLoop(top, end)
	return nil
}

func (c *compiler) VisitDoWhileStmt(s *parser.DoWhileStmt) interface{} {
	c.pushLoop()
	top := c.chunk.Len()
	c.compileBlock(s.Body)
	contTarget := c.chunk.Len()
	c.compileExpr(s.Cond)
	pos := c.chunk.Len()
	c.chunk.EmitI16(bytecode.BranchIf, relOffset(pos, top), 0, 0)
	end := c.chunk.Len()
	c.popLoop(contTarget, end)
	return nil
}

func (c *compiler) VisitForStmt(s *parser.ForStmt) interface{} {
	if s.Init != nil {
		c.compileStmt(s.Init)
	}
	c.pushLoop()
	top := c.chunk.Len()
	var exitJump int
	hasCond := s.Cond != nil
	if hasCond {
		c.compileExpr(s.Cond)
		enterBody := c.chunk.EmitI16(bytecode.BranchIf, 0, 0)
		exitJump = c.chunk.EmitI16(bytecode.Branch, 0, 0)
		c.patchTo(enterBody, c.chunk.Len())
	}
	c.compileBlock(s.Body)
	contTarget := c.chunk.Len()
	if s.Post != nil {
		c.compileStmt(s.Post)
	}
	c.emitBackJump(top)
	end := c.chunk.Len()
	if hasCond {
		c.patchTo(exitJump, end)
	}
	c.popLoop(contTarget, end)
	return nil
}

func (c *compiler) VisitSwitchStmt(s *parser.SwitchStmt) interface{} {
	c.pushSwitch() // break targets the end; continue passes through to an enclosing loop
	var ends []int
	for _, cs := range s.Cases {
		c.compileExpr(s.Subject)
		c.compileExpr(cs.Value)
		c.chunk.EmitU8(bytecode.Op, byte(bytecode.ArithEq), 0, 0)
		next := c.chunk.EmitI16(bytecode.BranchIf, 0, 0)
		skip := c.chunk.EmitI16(bytecode.Branch, 0, 0)
		c.patchTo(next, c.chunk.Len())
		c.compileBlock(cs.Body)
		end := c.chunk.EmitI16(bytecode.Branch, 0, 0)
		ends = append(ends, end)
		c.patchTo(skip, c.chunk.Len())
	}
	c.compileBlock(s.Default)
	target := c.chunk.Len()
	for _, e := range ends {
		c.patchTo(e, target)
	}
	c.popLoop(target, target)
	return nil
}

func (c *compiler) VisitBreakStmt(s *parser.BreakStmt) interface{} {
	if len(c.loops) == 0 {
		c.fail("break outside loop")
		return nil
	}
	lc := c.loops[len(c.loops)-1]
	pos := c.chunk.EmitI16(bytecode.Branch, 0, 0)
	lc.breaks = append(lc.breaks, pos)
	return nil
}

func (c *compiler) VisitContinueStmt(s *parser.ContinueStmt) interface{} {
	var lc *loopCtx
	for i := len(c.loops) - 1; i >= 0; i-- {
		if !c.loops[i].isSwitch {
			lc = c.loops[i]
			break
		}
	}
	if lc == nil {
		c.fail("continue outside loop")
		return nil
	}
	pos := c.chunk.EmitI16(bytecode.Branch, 0, 0)
	lc.continues = append(lc.continues, pos)
	return nil
}

func (c *compiler) VisitGotoStmt(s *parser.GotoStmt) interface{} {
	pos := c.chunk.EmitI16(bytecode.Branch, 0, 0)
	c.gotos = append(c.gotos, pendingGoto{pos: pos, label: s.Label})
	return nil
}

func (c *compiler) VisitLabelStmt(s *parser.LabelStmt) interface{} {
	c.labels[s.Name] = c.chunk.Len()
	return nil
}

func (c *compiler) VisitReturnStmt(s *parser.ReturnStmt) interface{} {
	if s.Value != nil {
		c.compileExpr(s.Value)
	} else {
		idx := c.chunk.AddConstant(nil)
		c.chunk.EmitU16(bytecode.PushConst, uint16(idx), 0, 0)
	}
	c.chunk.Emit(bytecode.Return, 0, 0)
	return nil
}

// VisitFuncDecl only fires for a nested declaration found inside another
// function's body; Compile's top-level loop handles the common case of
// top-level function declarations directly, since each needs its own
// fresh compiler/locals table.
func (c *compiler) VisitFuncDecl(s *parser.FuncDecl) interface{} {
	c.fail("function declarations are only supported at top level")
	return nil
}

func (c *compiler) VisitObjDecl(s *parser.ObjDecl) interface{} {
	c.fail("obj declarations are only supported at top level")
	return nil
}

func (c *compiler) VisitTryStmt(s *parser.TryStmt) interface{} {
	handler := c.chunk.EmitI16(bytecode.Try, 0, 0)
	c.compileBlock(s.Try)
	c.chunk.Emit(bytecode.EndTry, 0, 0)
	skipCatch := c.chunk.EmitI16(bytecode.Branch, 0, 0)
	c.patchTo(handler, c.chunk.Len())
	c.storeName(s.CatchVar)
	c.compileBlock(s.Catch)
	c.patchTo(skipCatch, c.chunk.Len())
	return nil
}
