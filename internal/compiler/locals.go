package compiler

import "calc/internal/parser"

// collectLocals walks a function body (without descending into a nested
// FuncDecl, since this language has no closures) and gathers every name
// assigned anywhere inside it, so the compiler can assign a stable slot
// before compiling a single instruction (a name read before its first
// textual assignment - e.g. a forward reference inside a loop - must
// still resolve to the same local slot).
func collectLocals(body []parser.Stmt) []string {
	var names []string
	seen := map[string]bool{}
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	var walkStmts func([]parser.Stmt)
	walkStmts = func(stmts []parser.Stmt) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *parser.AssignStmt:
				add(n.Name)
			case *parser.IfStmt:
				walkStmts(n.Then)
				walkStmts(n.Else)
			case *parser.WhileStmt:
				walkStmts(n.Body)
			case *parser.DoWhileStmt:
				walkStmts(n.Body)
			case *parser.ForStmt:
				if a, ok := n.Init.(*parser.AssignStmt); ok {
					add(a.Name)
				}
				if a, ok := n.Post.(*parser.AssignStmt); ok {
					add(a.Name)
				}
				walkStmts(n.Body)
			case *parser.SwitchStmt:
				for _, cs := range n.Cases {
					walkStmts(cs.Body)
				}
				walkStmts(n.Default)
			case *parser.TryStmt:
				add(n.CatchVar)
				walkStmts(n.Try)
				walkStmts(n.Catch)
			}
		}
	}
	walkStmts(body)
	return names
}
