package executor

import (
	"regexp"
	"strings"
)

var (
	awaitRe     = regexp.MustCompile(`(^|[^\w.])await\s`)
	asyncCtrlRe = regexp.MustCompile(`(^|[^\w.])async\s+(for|with)\b`)
	defRe       = regexp.MustCompile(`^(async\s+def|def|class)\b`)
	stringRe    = regexp.MustCompile(`([A-Za-z]{0,2})("""(?s).*?"""|'''(?s).*?'''|"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*')`)
)

// stripStrings blanks string literals so quoted keywords cannot trip the
// detector. f-strings are kept: their brace interpolations are real
// expressions and may legitimately await.
func stripStrings(code string) string {
	return stringRe.ReplaceAllStringFunc(code, func(m string) string {
		prefix := stringRe.FindStringSubmatch(m)[1]
		if strings.ContainsAny(prefix, "fF") {
			return m
		}
		return prefix + `""`
	})
}

// NeedsAsync reports whether a code block requires suspension-aware
// execution: it contains await, async iteration, async comprehension or an
// async context manager at the top level of the block. Definitions
// (functions, classes) do not count, since their bodies only suspend when
// called, so a block that wraps its own scheduler (asyncio.run) stays
// synchronous. Purely a static pre-check; false positives would only cost
// the per-block runner overhead, false negatives a SyntaxError, so the
// check mirrors the interpreter's top-level grammar as closely as a
// scanner can.
func NeedsAsync(code string) bool {
	code = stripStrings(code)

	depth := 0
	inDef := false
	var logical strings.Builder
	check := func() bool {
		text := logical.String()
		logical.Reset()
		if defRe.MatchString(strings.TrimSpace(text)) {
			return false
		}
		return awaitRe.MatchString(text) || asyncCtrlRe.MatchString(text)
	}

	for _, line := range strings.Split(code, "\n") {
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		indented := line[0] == ' ' || line[0] == '\t'

		if depth == 0 && !indented {
			// A new top-level logical line begins: judge the previous one.
			if logical.Len() > 0 && check() {
				return true
			}
			inDef = defRe.MatchString(strings.TrimSpace(line))
		}
		if depth == 0 && indented && inDef {
			// Inside a definition body; suspension there is fine.
			logical.Reset()
			continue
		}

		logical.WriteString(line)
		logical.WriteString("\n")
		depth += strings.Count(line, "(") + strings.Count(line, "[") + strings.Count(line, "{")
		depth -= strings.Count(line, ")") + strings.Count(line, "]") + strings.Count(line, "}")
		if depth < 0 {
			depth = 0
		}
	}
	return logical.Len() > 0 && check()
}
