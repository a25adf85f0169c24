package main

import (
	"net/url"
	"os"
	"strings"

	"feedview/internal/cli"
)

// postRef extracts a post id from a bare 24-hex object id or a post URL
// (".../posts/<id>").
func postRef(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if isObjectID(s) {
		return s, true
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "posts" && isObjectID(parts[i+1]) {
			return parts[i+1], true
		}
	}
	return "", false
}

func isObjectID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func rewriteDirectThreadArgs(argv []string) []string {
	// Convenience: `feedview <post-id|post-url>` works like `feedview thread <post-id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv
	// before parsing. Persistent flags may come first.
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config":    true,
		"--format":    true,
		"--log-level": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	rewrite := func(i int, id string) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "thread", id)
		out = append(out, argv[i+1:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) {
				if id, ok := postRef(argv[i+1]); ok {
					return rewrite(i+1, id)
				}
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

		// First positional token.
		if id, ok := postRef(a); ok {
			return rewrite(i, id)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectThreadArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
