package compiler

import (
	"testing"

	"calc/internal/lexer"
	"calc/internal/parser"
)

func compile(t *testing.T, src string) *Program {
	t.Helper()
	toks := lexer.NewScanner(src).ScanTokens()
	stmts, err := parser.New(toks).ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := Compile(stmts)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return prog
}

func TestCompileAssignStoresGlobal(t *testing.T) {
	prog := compile(t, "x = 1 + 2\n")
	if prog.Main.Chunk.Len() == 0 {
		t.Fatal("expected non-empty main chunk")
	}
	foundName := false
	for _, c := range prog.Main.Chunk.Constants {
		if s, ok := c.(string); ok && s == "x" {
			foundName = true
		}
	}
	if !foundName {
		t.Fatal("expected constant pool to contain global name \"x\"")
	}
}

func TestCompileBareExpressionBecomesAns(t *testing.T) {
	prog := compile(t, "1 + 1\n")
	foundAns := false
	for _, c := range prog.Main.Chunk.Constants {
		if s, ok := c.(string); ok && s == "ans" {
			foundAns = true
		}
	}
	if !foundAns {
		t.Fatal("expected bare top-level expression to store into \"ans\"")
	}
}

func TestCompileFunctionDeclUsesLocalSlots(t *testing.T) {
	prog := compile(t, "add(a, b) { c = a + b\n return c }\n")
	fu, ok := prog.Funcs["add"]
	if !ok {
		t.Fatal("expected function \"add\" in Funcs")
	}
	if fu.Chunk.NumLocals != 3 {
		t.Fatalf("expected 3 locals (a, b, c), got %d", fu.Chunk.NumLocals)
	}
}

func TestCompileObjDeclCollected(t *testing.T) {
	prog := compile(t, "obj Point { x, y }\n")
	if len(prog.Objs) != 1 || prog.Objs[0].Name != "Point" {
		t.Fatalf("expected one ObjUnit named Point, got %#v", prog.Objs)
	}
}

func TestCompileGotoForwardReference(t *testing.T) {
	prog := compile(t, "x = 1\ngoto skip\nx = 2\nskip: x = 3\n")
	if prog == nil {
		t.Fatal("expected program to compile with a forward goto/label")
	}
}

func TestCompileUndefinedLabelErrors(t *testing.T) {
	toks := lexer.NewScanner("goto nowhere\n").ScanTokens()
	stmts, err := parser.New(toks).ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := Compile(stmts); err == nil {
		t.Fatal("expected an error for an undefined goto label")
	}
}

func TestCompileLoopBreakContinue(t *testing.T) {
	prog := compile(t, "i = 0\nwhile (i < 10) { if (i == 5) { break } i = i + 1 }\n")
	if prog.Main.Chunk.Len() == 0 {
		t.Fatal("expected non-empty chunk for a while loop with break")
	}
}

func TestCompileTryCatchBindsCatchVar(t *testing.T) {
	prog := compile(t, "try { x = 1 / 0 } catch (e) { y = e }\n")
	foundCatchVar := false
	for _, c := range prog.Main.Chunk.Constants {
		if s, ok := c.(string); ok && s == "e" {
			foundCatchVar = true
		}
	}
	if !foundCatchVar {
		t.Fatal("expected catch variable name in constant pool")
	}
}
