package splitter

import (
	"errors"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExtractTitleIntro parses a header's markdown and returns the first
// heading as the title and the first paragraph as the intro snippet. A
// header without a heading is rejected: the title is needed for page
// names, tooltips and cross-reference links.
func ExtractTitleIntro(header string) (title, intro string, err error) {
	src := []byte(header)
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch n.(type) {
		case *gmast.Heading:
			if title == "" {
				title = nodeText(n, src)
			}
		case *gmast.Paragraph:
			if title != "" && intro == "" {
				intro = nodeText(n, src)
				return gmast.WalkStop, nil
			}
		}
		return gmast.WalkContinue, nil
	})

	if title == "" {
		return "", "", errors.New("documentation header has no markdown title heading")
	}
	return title, collapseWhitespace(intro), nil
}

// FirstSentence shortens an intro for thumbnail tooltips, cutting at a
// word boundary around maxLen characters.
func FirstSentence(intro string, maxLen int) string {
	intro = collapseWhitespace(intro)
	if len(intro) <= maxLen {
		return intro
	}
	cut := intro[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

func nodeText(n gmast.Node, src []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := c.(*gmast.Text); ok {
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteString(" ")
			}
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
