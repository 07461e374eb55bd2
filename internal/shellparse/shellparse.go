// Package shellparse inspects shell commands structurally. Parsing is
// best-effort: a command the parser rejects yields no result, never an error.
package shellparse

import (
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Programs returns the names of the programs a command invokes, in order of
// appearance and without duplicates. Leading variable assignments are skipped
// and paths are reduced to their base name, so "FOO=1 /usr/bin/psql -c ..."
// yields "psql". Words that are not plain literals are ignored.
func Programs(command string) []string {
	if strings.TrimSpace(command) == "" {
		return nil
	}

	f, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return nil
	}

	var programs []string
	seen := make(map[string]bool)
	syntax.Walk(f, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		name := call.Args[0].Lit()
		if name == "" {
			return true
		}
		name = filepath.Base(name)
		if !seen[name] {
			seen[name] = true
			programs = append(programs, name)
		}
		return true
	})
	return programs
}
