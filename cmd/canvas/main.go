package main

import (
	"os"
	"strings"

	"github.com/Ngyama/idea-canvas/internal/cli"
)

func isTaskID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "task-") && len(s) > len("task-")
}

// rewriteDirectTaskLookupArgs makes `canvas <task-id>` work like
// `canvas task show <task-id>`. Cobra treats the first non-flag token as a
// subcommand, so argv is rewritten before parsing. Persistent flags may come
// first, so this looks for the first positional token, not argv[1].
func rewriteDirectTaskLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--board":     true,
		"--format":    true,
		"--log-level": true,
	}
	boolFlags := map[string]bool{
		"--pretty":  true,
		"--restore": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "task", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isTaskID(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}
		if isTaskID(a) {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectTaskLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
