package engine

import (
	"fmt"
	"os"

	"github.com/kr/pretty"

	"calc/internal/bytecode"
	"calc/internal/vm"
)

// traceHook implements vm.DebugHook, the teacher's DebugHook interface
// kept verbatim at the VM layer (see internal/vm's ledger entry). It is
// installed only when the configuration's `calc_debug` bitmask is
// nonzero. Instruction, call and return points are written as one plain
// Fprintf line each; OnError renders the error with kr/pretty — the
// struct-dumping library the teacher's go.mod already carried but never
// imported, given its first real job here.
type traceHook struct {
	mask int
}

const (
	traceInstr = 1 << iota
	traceCall
	traceReturn
	traceError
)

func (h *traceHook) OnInstruction(m *vm.VM, ip int, debug bytecode.DebugInfo) bool {
	if h.mask&traceInstr != 0 {
		fmt.Fprintf(os.Stderr, "trace: ip=%d line=%d col=%d\n", ip, debug.Line, debug.Column)
	}
	return true
}

func (h *traceHook) OnCall(m *vm.VM, function string, debug bytecode.DebugInfo) {
	if h.mask&traceCall != 0 {
		fmt.Fprintf(os.Stderr, "trace: call %s at line=%d\n", function, debug.Line)
	}
}

func (h *traceHook) OnReturn(m *vm.VM, debug bytecode.DebugInfo) {
	if h.mask&traceReturn != 0 {
		fmt.Fprintf(os.Stderr, "trace: return at line=%d\n", debug.Line)
	}
}

func (h *traceHook) OnError(m *vm.VM, err error, debug bytecode.DebugInfo) {
	if h.mask&traceError != 0 {
		fmt.Fprintf(os.Stderr, "trace: error at line=%d: %s\n", debug.Line, pretty.Sprint(err))
	}
}
