package executor

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/VoxDroid/waex/internal/command"
)

var paramRe = regexp.MustCompile(`{{\s*([a-zA-Z0-9_.-]+)\s*}}`)

// findParams returns a unique list of parameter names referenced in s in order of appearance.
func findParams(s string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range paramRe.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// ApplyParams replaces parameter placeholders in s using values from params.
// If a parameter is missing, an error is returned listing missing keys.
func ApplyParams(s string, params map[string]string) (string, error) {
	missing := map[string]bool{}
	result := paramRe.ReplaceAllStringFunc(s, func(match string) string {
		sub := paramRe.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		if v, ok := params[sub[1]]; ok {
			return v
		}
		missing[sub[1]] = true
		return match
	})
	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return result, fmt.Errorf("missing parameters: %s", strings.Join(keys, ", "))
	}
	return result, nil
}

// pathParams are the placeholders available to command args:
// {{file}} as reported by the watcher, {{abs}}, {{dir}}, {{base}},
// {{name}} (base without extension) and {{ext}}.
func pathParams(file, abs string) map[string]string {
	base := filepath.Base(abs)
	ext := filepath.Ext(base)
	return map[string]string{
		"file": file,
		"abs":  abs,
		"dir":  filepath.Dir(abs),
		"base": base,
		"name": strings.TrimSuffix(base, ext),
		"ext":  ext,
	}
}

// CheckParams reports the first spec whose args reference a placeholder
// no changed file can supply.
func CheckParams(specs []command.Spec) error {
	known := pathParams("", "")
	for i, s := range specs {
		var unknown []string
		for _, a := range s.Args {
			for _, name := range findParams(a) {
				if _, ok := known[name]; !ok {
					unknown = append(unknown, name)
				}
			}
		}
		if len(unknown) > 0 {
			return &command.ConfigError{Position: i, Field: "args", Reason: "unknown placeholders: " + strings.Join(unknown, ", ")}
		}
	}
	return nil
}
