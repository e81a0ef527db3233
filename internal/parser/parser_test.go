package parser

import (
	"testing"

	"calc/internal/lexer"
)

func parse(t *testing.T, src string) []Stmt {
	t.Helper()
	toks := lexer.NewScanner(src).ScanTokens()
	stmts, err := New(toks).ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return stmts
}

func TestParseArithmeticPrecedence(t *testing.T) {
	stmts := parse(t, "x = 1 + 2 * 3 ** 2\n")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	a, ok := stmts[0].(*AssignStmt)
	if !ok {
		t.Fatalf("expected AssignStmt, got %T", stmts[0])
	}
	top, ok := a.Value.(*Binary)
	if !ok || top.Op != "+" {
		t.Fatalf("expected top-level +, got %#v", a.Value)
	}
	rhs, ok := top.Right.(*Binary)
	if !ok || rhs.Op != "*" {
		t.Fatalf("expected * on the right of +, got %#v", top.Right)
	}
	pow, ok := rhs.Right.(*Binary)
	if !ok || pow.Op != "**" {
		t.Fatalf("expected ** nested under *, got %#v", rhs.Right)
	}
}

func TestParseIfObjTryFunc(t *testing.T) {
	t.Run("if/else", func(t *testing.T) {
		stmts := parse(t, "if (x < 1) { y = 1 } else { y = 2 }")
		if _, ok := stmts[0].(*IfStmt); !ok {
			t.Fatalf("expected IfStmt, got %T", stmts[0])
		}
	})
	t.Run("obj decl and construction", func(t *testing.T) {
		stmts := parse(t, "obj Point { x, y }\np = Point{}\n")
		if _, ok := stmts[0].(*ObjDecl); !ok {
			t.Fatalf("expected ObjDecl, got %T", stmts[0])
		}
		assign, ok := stmts[1].(*AssignStmt)
		if !ok {
			t.Fatalf("expected AssignStmt, got %T", stmts[1])
		}
		if _, ok := assign.Value.(*NewObj); !ok {
			t.Fatalf("expected NewObj, got %#v", assign.Value)
		}
	})
	t.Run("try/catch", func(t *testing.T) {
		stmts := parse(t, "try { x = 1/0 } catch (e) { y = e }")
		if _, ok := stmts[0].(*TryStmt); !ok {
			t.Fatalf("expected TryStmt, got %T", stmts[0])
		}
	})
	t.Run("function declaration", func(t *testing.T) {
		stmts := parse(t, "add(a, b) { return a + b }")
		fd, ok := stmts[0].(*FuncDecl)
		if !ok {
			t.Fatalf("expected FuncDecl, got %T", stmts[0])
		}
		if fd.Name != "add" || len(fd.Params) != 2 {
			t.Fatalf("unexpected FuncDecl: %#v", fd)
		}
	})
}

func TestParseIndexAndField(t *testing.T) {
	stmts := parse(t, "a[1,2] = p.x\n")
	s, ok := stmts[0].(*IndexAssignStmt)
	if !ok {
		t.Fatalf("expected IndexAssignStmt, got %T", stmts[0])
	}
	if len(s.Indices) != 2 {
		t.Fatalf("expected 2 indices, got %d", len(s.Indices))
	}
	if _, ok := s.Value.(*FieldGet); !ok {
		t.Fatalf("expected FieldGet value, got %#v", s.Value)
	}
}
