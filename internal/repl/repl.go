// Package repl implements the interactive read-compile-run loop spec.md
// §6 describes: one persistent engine.Engine reads and executes
// statements line by line (or block by block once a TRY/WHILE/FUNC
// opens a pending block), printing `ans` after every bare expression.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"calc/internal/engine"
	"calc/internal/value"
)

// Options controls the REPL's surface behavior, one field per relevant
// spec.md §6 CLI flag.
type Options struct {
	Pipe        bool // -p: no prompt, no tty line editing
	Quiet       bool // -d: suppress the leading banner
	ContinueErr bool // -c: continue after errors instead of aborting the loop
	NoStartup   bool // -q: do not execute startup resource files
}

// Start runs the REPL against eng until stdin closes or "exit" is typed.
func Start(eng *engine.Engine, opts Options, startupPaths []string) int {
	if !opts.NoStartup {
		if err := eng.LoadStartup(startupPaths); err != nil {
			fmt.Fprintf(os.Stderr, "calc: startup error: %v\n", err)
		}
	}

	if !opts.Quiet {
		fmt.Println("calc | arbitrary-precision calculator — type 'exit' to quit")
	}

	interactive := !opts.Pipe && isatty.IsTerminal(os.Stdin.Fd())
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pending strings.Builder
	for {
		if interactive {
			if pending.Len() == 0 {
				fmt.Print(eng.Cfg.Prompt)
			} else {
				fmt.Print(eng.Cfg.More)
			}
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if pending.Len() == 0 && strings.TrimSpace(line) == "exit" {
			break
		}
		pending.WriteString(line)
		pending.WriteByte('\n')

		if !balanced(pending.String()) {
			continue
		}
		src := pending.String()
		pending.Reset()

		result, err := eng.Run(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "calc: %v\n", err)
			if !opts.ContinueErr {
				return 1
			}
			continue
		}
		if result.Kind != value.KindNull {
			fmt.Println(value.Print(result, value.ModeNormal, eng.Cfg))
		}
	}
	return 0
}

// RunSource runs one batch of source non-interactively (the `-e` path),
// printing the result the way a bare expression would print at the REPL.
func RunSource(eng *engine.Engine, src string, w io.Writer) error {
	result, err := eng.Run(src)
	if err != nil {
		return err
	}
	if result.Kind != value.KindNull {
		fmt.Fprintln(w, value.Print(result, value.ModeNormal, eng.Cfg))
	}
	return nil
}

// balanced reports whether src has no unclosed `{`/`(` and no unterminated
// string literal (strings may span lines) so the REPL knows
// whether to keep reading continuation lines before handing a block to
// the compiler (which otherwise reports an unhelpful unexpected-EOF).
func balanced(src string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inString:
			if c == '"' && (i == 0 || src[i-1] != '\\') {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{' || c == '(':
			depth++
		case c == '}' || c == ')':
			depth--
		}
	}
	return depth <= 0 && !inString
}
