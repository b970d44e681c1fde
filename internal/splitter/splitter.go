// Package splitter parses an annotated example script into its title
// header and an ordered sequence of code and text blocks.
package splitter

import (
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// Options control the marker conventions used when splitting.
type Options struct {
	// CommentPrefix is the single-character comment marker for the script
	// language. Default "#".
	CommentPrefix string
	// MarkerThreshold is the minimum run length of CommentPrefix characters
	// for a line to act as a block separator. Default 20.
	MarkerThreshold int
	// DirectiveNamespace is the prefix of per-file option comments,
	// `# <namespace>_<option> = <value>`. Default "gallery".
	DirectiveNamespace string
	// RemoveDirectives strips directive comments from the produced blocks.
	RemoveDirectives bool
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.CommentPrefix == "" {
		out.CommentPrefix = "#"
	}
	if out.MarkerThreshold == 0 {
		out.MarkerThreshold = 20
	}
	if out.DirectiveNamespace == "" {
		out.DirectiveNamespace = "gallery"
	}
	return out
}

// Result is the outcome of splitting one script.
type Result struct {
	Title      string
	Intro      string
	HeaderText string
	Blocks     []gallery.Block
	Directives map[string]string
}

var docstringStart = regexp.MustCompile(`^[rRuU]{0,2}("""|''')`)

// Split parses raw script text. The file argument is used for error
// reporting only.
func Split(file string, src []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	header, bodyStart, err := readHeader(file, lines)
	if err != nil {
		return nil, err
	}

	title, intro, err := ExtractTitleIntro(header)
	if err != nil {
		return nil, &gallery.ParseError{File: file, Line: 1, Msg: err.Error()}
	}

	res := &Result{
		Title:      title,
		Intro:      intro,
		HeaderText: header,
		Directives: map[string]string{},
	}
	res.Blocks = splitBody(lines, bodyStart, opts, res.Directives)
	return res, nil
}

// readHeader locates the leading documentation header and returns its
// contents plus the index of the first body line. Anything before the
// header (shebang, coding cookie, license comments, blank lines) is
// discarded and never executed.
func readHeader(file string, lines []string) (string, int, error) {
	i := 0
	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		break
	}
	if i == len(lines) {
		return "", 0, &gallery.ParseError{File: file, Line: 1, Msg: "no documentation header found"}
	}

	m := docstringStart.FindStringSubmatch(strings.TrimSpace(lines[i]))
	if m == nil {
		return "", 0, &gallery.ParseError{File: file, Line: i + 1,
			Msg: "script must start with a triple-quoted documentation header"}
	}
	delim := m[1]

	first := strings.TrimSpace(lines[i])
	rest := first[strings.Index(first, delim)+len(delim):]
	if end := strings.Index(rest, delim); end >= 0 {
		// One-line header.
		return rest[:end], i + 1, nil
	}

	var sb strings.Builder
	if rest != "" {
		sb.WriteString(rest)
		sb.WriteString("\n")
	}
	for j := i + 1; j < len(lines); j++ {
		if idx := strings.Index(lines[j], delim); idx >= 0 {
			sb.WriteString(lines[j][:idx])
			return sb.String(), j + 1, nil
		}
		sb.WriteString(lines[j])
		sb.WriteString("\n")
	}
	return "", 0, &gallery.ParseError{File: file, Line: i + 1, Msg: "unterminated documentation header"}
}

// splitBody walks the lines after the header. The default block kind is
// code; a separator line (a long run of the comment prefix, or the
// explicit `# %%` token) flips to text, and the text block runs while
// lines keep the comment prefix.
func splitBody(lines []string, start int, opts Options, directives map[string]string) []gallery.Block {
	var blocks []gallery.Block

	directiveRe := regexp.MustCompile(`^` + regexp.QuoteMeta(opts.CommentPrefix) +
		`\s*` + regexp.QuoteMeta(opts.DirectiveNamespace) + `_([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.+?)\s*$`)
	separatorRe := regexp.MustCompile(`^` + regexp.QuoteMeta(opts.CommentPrefix) +
		`{` + strconv.Itoa(opts.MarkerThreshold) + `,}\s*$`)
	markerRe := regexp.MustCompile(`^` + regexp.QuoteMeta(opts.CommentPrefix) + `\s*%%\s?(.*)$`)

	var code []string
	codeLine := start + 1
	var txt []string
	txtLine := 0
	inText := false

	flushCode := func() {
		content := strings.Join(code, "\n")
		if strings.TrimSpace(content) != "" {
			blocks = append(blocks, gallery.Block{Kind: gallery.BlockCode, Content: content + "\n", Line: codeLine})
		}
		code = nil
	}
	flushText := func() {
		content := strings.Join(txt, "\n")
		if strings.TrimSpace(content) != "" {
			blocks = append(blocks, gallery.Block{Kind: gallery.BlockText, Content: content + "\n", Line: txtLine})
		}
		txt = nil
		inText = false
	}

	for i := start; i < len(lines); i++ {
		line := lines[i]
		if m := directiveRe.FindStringSubmatch(line); m != nil {
			directives[m[1]] = m[2]
			if opts.RemoveDirectives {
				continue
			}
		}

		if !inText {
			if separatorRe.MatchString(line) {
				flushCode()
				inText = true
				txtLine = i + 1
				continue
			}
			if m := markerRe.FindStringSubmatch(line); m != nil {
				flushCode()
				inText = true
				txtLine = i + 1
				if strings.TrimSpace(m[1]) != "" {
					txt = append(txt, strings.TrimSpace(m[1]))
				}
				continue
			}
			code = append(code, line)
			continue
		}

		// Inside a text block: comment lines continue it, anything else
		// resumes code.
		if strings.HasPrefix(line, opts.CommentPrefix) {
			txt = append(txt, stripCommentPrefix(line, opts.CommentPrefix))
			continue
		}
		flushText()
		codeLine = i + 1
		code = append(code, line)
	}
	if inText {
		flushText()
	} else {
		flushCode()
	}
	return blocks
}

func stripCommentPrefix(line, prefix string) string {
	line = strings.TrimPrefix(line, prefix)
	return strings.TrimPrefix(line, " ")
}
