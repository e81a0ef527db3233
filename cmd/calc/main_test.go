package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain registers this binary's own run() under the name "calc" so
// the txtar scripts under testdata/script can `exec calc ...` without a
// separate `go build` step, the way go-internal/testscript's own docs
// recommend for single-binary CLI modules.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"calc": calcMain,
	}))
}

func calcMain() int {
	return run(os.Args[1:])
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
