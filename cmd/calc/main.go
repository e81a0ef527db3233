// cmd/calc/main.go
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"calc/internal/config"
	"calc/internal/engine"
	"calc/internal/repl"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts repl.Options
	var (
		exprMode   bool
		stringMode bool
		unbuffered bool
		stayAlive  bool
		showVer    bool
		showHelp   bool
		fileMode   = -1
		custom     bool
	)

	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			break
		}
		switch a {
		case "-e":
			exprMode = true
		case "-q":
			opts.NoStartup = true
		case "-d":
			opts.Quiet = true
		case "-p":
			opts.Pipe = true
		case "-i":
			stayAlive = true
		case "-c":
			opts.ContinueErr = true
		case "-s":
			stringMode = true
		case "-u":
			unbuffered = true
		case "-v":
			showVer = true
		case "-h":
			showHelp = true
		case "-C":
			custom = true
		case "-m":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "calc: -m requires a mode argument")
				return 1
			}
			n, err := strconv.Atoi(args[i])
			if err != nil || n < 0 || n > 7 {
				fmt.Fprintln(os.Stderr, "calc: -m expects a mode in 0..7")
				return 1
			}
			fileMode = n
		default:
			fmt.Fprintf(os.Stderr, "calc: unknown flag %q\n", a)
			return 1
		}
	}
	rest := args[i:]

	if showVer {
		printVersion()
		return 0
	}
	if showHelp {
		printHelp()
		return 0
	}

	cfg := config.Default()
	cfg.CustomBuiltins = custom
	if fileMode >= 0 {
		cfg.FileAccessMode = fileMode
	}
	// -u: os.Stdout writes are already unbuffered (no bufio.Writer wraps
	// them anywhere in this module); the flag is accepted for parity with
	// spec.md §6 and otherwise changes nothing.
	_ = unbuffered

	eng := engine.New(cfg)
	startupPaths := startupFiles()

	switch {
	case exprMode:
		src := strings.Join(rest, " ")
		if stringMode {
			src = "ans = " + strconv.Quote(src) + "\n"
		}
		if !opts.NoStartup {
			if err := eng.LoadStartup(startupPaths); err != nil {
				fmt.Fprintf(os.Stderr, "calc: startup error: %v\n", err)
			}
			opts.NoStartup = true // already loaded; don't reload when falling into the REPL below
		}
		if err := repl.RunSource(eng, src, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "calc: %v\n", err)
			if !stayAlive {
				return 1
			}
		}
		if !stayAlive {
			return 0
		}
		return repl.Start(eng, opts, startupPaths)

	case len(rest) > 0:
		data, err := os.ReadFile(rest[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "calc: %v\n", err)
			return 1
		}
		if !opts.NoStartup {
			if err := eng.LoadStartup(startupPaths); err != nil {
				fmt.Fprintf(os.Stderr, "calc: startup error: %v\n", err)
			}
		}
		if err := repl.RunSource(eng, string(data), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "calc: %v\n", err)
			return 1
		}
		return 0

	default:
		return repl.Start(eng, opts, startupPaths)
	}
}

// startupFiles implements spec.md §6's "a path list for resource files,
// a startup file list" environment variables, following the naming the
// original calc(1) utility this module's spec is modeled on uses.
func startupFiles() []string {
	var paths []string
	if rc := os.Getenv("CALCRC"); rc != "" {
		paths = append(paths, strings.Split(rc, ":")...)
	}
	home, err := os.UserHomeDir()
	if err == nil {
		paths = append(paths, home+"/.calcrc")
	}
	return paths
}

func printVersion() {
	fmt.Printf("calc version %s\n", version)
}

func printHelp() {
	text := `calc - arbitrary-precision calculator

USAGE:
  calc [flags] [file]
  calc -e [flags] expression...

FLAGS:
  -e            Read expressions from argv rather than stdin
  -q            Do not execute startup resource files
  -d            Suppress the leading banner
  -p            Pipe mode: no prompt, no tty line editing
  -i            Stay interactive after -e expression
  -c            Continue after errors at the REPL
  -s            Treat remaining args as strings, not expressions
  -u            Unbuffered stdout/stdin
  -v            Print version and exit
  -h            Print help and exit
  -C            Permit custom (native-extension) builtins
  -m mode       File-access mode bits (0..7) limiting file ops

ENVIRONMENT:
  CALCRC        Colon-separated list of startup resource files
  CALCPAGER, PAGER  Pager command used to display this help text
`
	if isatty.IsTerminal(os.Stdout.Fd()) {
		if pager := pagerCommand(); pager != "" {
			cmd := exec.Command("sh", "-c", pager)
			cmd.Stdin = strings.NewReader(text)
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if cmd.Run() == nil {
				return
			}
		}
	}
	fmt.Print(text)
}

func pagerCommand() string {
	if p := os.Getenv("CALCPAGER"); p != "" {
		return p
	}
	return os.Getenv("PAGER")
}
