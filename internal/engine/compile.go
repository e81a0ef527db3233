package engine

import (
	"calc/internal/compiler"
	"calc/internal/lexer"
	"calc/internal/parser"
)

func compile(src string) (*compiler.Program, error) {
	toks := lexer.NewScanner(src).ScanTokens()
	stmts, err := parser.New(toks).ParseProgram()
	if err != nil {
		return nil, err
	}
	return compiler.Compile(stmts)
}
