// internal/compiler/compiler.go
//
// Compiler lowers a parsed program into bytecode.Chunks: one chunk per
// declared function plus a "main" chunk for top-level statements, per
// spec.md §4.H. Labels and forward jumps (BRANCH/BRANCH_IF/TRY, GOTO) are
// patched in a second pass, matching the teacher's own WriteOp-then-patch
// compiler shape, generalized to this opcode set's 16-bit operands.
package compiler

import (
	"fmt"

	"calc/internal/bytecode"
	"calc/internal/parser"
)

// FuncUnit is one compiled function: its chunk and its parameter names (in
// frame-slot order). The chunk's NumLocals counts the parameters plus every
// local name the function assigns to, discovered by a pre-pass over its
// body (spec.md has no local-variable declaration syntax, so locals are
// inferred: every name assigned anywhere inside a function body becomes a
// local slot, even where it is read before its first assignment, mirroring
// a typical scripting language's function-local-by-default scoping).
type FuncUnit struct {
	Name       string
	Chunk      *bytecode.Chunk
	ParamNames []string
}

// ObjUnit is one `obj T { fields }` declaration collected for
// internal/engine to register with internal/object.Registry.
type ObjUnit struct {
	Name   string
	Fields []string
}

// Program is everything compiler.Compile produces from a parsed source
// file: the top-level (REPL/script) chunk, every declared function, and
// every declared object type.
type Program struct {
	Main  *FuncUnit
	Funcs map[string]*FuncUnit
	Objs  []ObjUnit
}

type loopCtx struct {
	breaks     []int // pending BRANCH positions to patch to loop-end
	continues  []int // pending BRANCH positions to patch to loop-continue point
	contTarget int    // always -1: continues are patched to popLoop's continueTarget argument
	isSwitch   bool   // true for a switch frame: break targets it, continue skips past it
}

type pendingGoto struct {
	pos   int
	label string
}

// compiler compiles exactly one function (or the top-level chunk) at a
// time; Compile constructs one per FuncDecl plus one for main.
type compiler struct {
	chunk    *bytecode.Chunk
	locals   map[string]int
	isGlobal bool // true for the top-level chunk, where assignment means global

	loops  []*loopCtx
	labels map[string]int
	gotos  []pendingGoto

	err error
}

// Compile walks a flat statement list (as parser.Parser.ParseProgram
// returns) and produces a Program.
func Compile(stmts []parser.Stmt) (*Program, error) {
	prog := &Program{Funcs: make(map[string]*FuncUnit)}

	var topLevel []parser.Stmt
	for _, s := range stmts {
		switch n := s.(type) {
		case *parser.FuncDecl:
			fc := newFunctionCompiler(n.Params, n.Body)
			fc.compileBlock(n.Body)
			nullIdx := fc.chunk.AddConstant(nil)
			fc.chunk.EmitU16(bytecode.PushConst, uint16(nullIdx), 0, 0)
			fc.chunk.Emit(bytecode.Return, 0, 0)
			fc.resolveGotos()
			if fc.err != nil {
				return nil, fc.err
			}
			fc.chunk.NumLocals = len(fc.locals)
			prog.Funcs[n.Name] = &FuncUnit{Name: n.Name, Chunk: fc.chunk, ParamNames: n.Params}
		case *parser.ObjDecl:
			prog.Objs = append(prog.Objs, ObjUnit{Name: n.Name, Fields: n.Fields})
		default:
			topLevel = append(topLevel, s)
		}
	}

	mc := newTopLevelCompiler()
	mc.compileBlock(topLevel)
	mc.chunk.Emit(bytecode.Halt, 0, 0)
	mc.resolveGotos()
	if mc.err != nil {
		return nil, mc.err
	}
	prog.Main = &FuncUnit{Name: "", Chunk: mc.chunk}
	return prog, nil
}

func newTopLevelCompiler() *compiler {
	return &compiler{chunk: bytecode.NewChunk(), isGlobal: true, labels: map[string]int{}}
}

func newFunctionCompiler(params []string, body []parser.Stmt) *compiler {
	c := &compiler{chunk: bytecode.NewChunk(), locals: map[string]int{}, labels: map[string]int{}}
	for _, p := range params {
		c.slotFor(p)
	}
	for _, name := range collectLocals(body) {
		c.slotFor(name)
	}
	return c
}

func (c *compiler) slotFor(name string) int {
	if i, ok := c.locals[name]; ok {
		return i
	}
	i := len(c.locals)
	c.locals[name] = i
	return i
}

func (c *compiler) fail(format string, args ...interface{}) {
	if c.err == nil {
		c.err = fmt.Errorf(format, args...)
	}
}

func (c *compiler) resolveGotos() {
	for _, g := range c.gotos {
		target, ok := c.labels[g.label]
		if !ok {
			c.fail("undefined label %q", g.label)
			continue
		}
		c.chunk.PatchI16(g.pos, relOffset(g.pos, target))
	}
}

// relOffset computes the signed 16-bit offset a BRANCH/BRANCH_IF/TRY at
// instrPos (3 bytes: op + u16) uses to reach target, measured from the
// byte immediately following the instruction.
func relOffset(instrPos, target int) int16 {
	return int16(target - (instrPos + 3))
}

func (c *compiler) compileBlock(stmts []parser.Stmt) {
	for _, s := range stmts {
		c.compileStmt(s)
	}
}
