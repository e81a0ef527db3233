package engine

import "os"

// LoadStartup runs each path in order as an ordinary script through this
// Engine, implementing SPEC_FULL.md §3's minimal resource-file loading:
// a `.calcrc`-equivalent list of startup files, read before the REPL's
// first prompt. A missing file is skipped rather than treated as fatal
// (a startup list commonly names optional per-user files); any other
// read or compile/runtime error aborts the remaining list.
func (e *Engine) LoadStartup(paths []string) error {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := e.Run(string(data)); err != nil {
			return err
		}
	}
	return nil
}
