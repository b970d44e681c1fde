package gallery

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func scriptWithCode(name, code, title string) *Script {
	return &Script{
		SrcFile: "/examples/" + name,
		Title:   title,
		Blocks:  []Block{{Kind: BlockCode, Content: code}},
	}
}

func stems(scripts []*Script) []string {
	out := make([]string, len(scripts))
	for i, s := range scripts {
		out[i] = s.Stem()
	}
	return out
}

func TestParseOrderSuggestsClosestName(t *testing.T) {
	_, err := ParseOrder("code_lines")
	require.Error(t, err)
	require.Contains(t, err.Error(), `did you mean "code-lines"`)

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
}

func TestSortScriptsByCodeLines(t *testing.T) {
	scripts := []*Script{
		scriptWithCode("plot_big.py", "a = 1\nb = 2\nc = 3\n", "Big"),
		scriptWithCode("plot_small.py", "a = 1\n", "Small"),
		scriptWithCode("plot_mid.py", "a = 1\nb = 2\n", "Mid"),
	}
	require.NoError(t, SortScripts(scripts, OrderCodeLines, nil))
	require.Equal(t, []string{"plot_small", "plot_mid", "plot_big"}, stems(scripts))
}

func TestSortScriptsExplicit(t *testing.T) {
	scripts := []*Script{
		scriptWithCode("plot_a.py", "", "A"),
		scriptWithCode("plot_b.py", "", "B"),
	}
	explicit := []string{"plot_b.py", "plot_a.py"}
	require.NoError(t, SortScripts(scripts, OrderExplicit, explicit))
	require.Equal(t, []string{"plot_b", "plot_a"}, stems(scripts))
}

func TestSortScriptsExplicitMissingFileNamesIt(t *testing.T) {
	scripts := []*Script{
		scriptWithCode("plot_a.py", "", "A"),
		scriptWithCode("plot_unlisted.py", "", "U"),
	}
	err := SortScripts(scripts, OrderExplicit, []string{"plot_a.py"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "plot_unlisted.py")
	require.True(t, strings.Contains(err.Error(), "not listed"))
}

func TestSortScriptsByTitle(t *testing.T) {
	scripts := []*Script{
		scriptWithCode("plot_z.py", "", "Alpha"),
		scriptWithCode("plot_a.py", "", "Zulu"),
	}
	require.NoError(t, SortScripts(scripts, OrderTitle, nil))
	require.Equal(t, []string{"plot_z", "plot_a"}, stems(scripts))
}

func TestSortSubgalleriesRejectsCodeLines(t *testing.T) {
	subs := []*Gallery{{SrcDir: "/examples/a"}, {SrcDir: "/examples/b"}}
	require.Error(t, SortSubgalleries(subs, OrderCodeLines, nil))
}

func TestCodeLineCount(t *testing.T) {
	s := &Script{Blocks: []Block{
		{Kind: BlockCode, Content: "a = 1\nb = 2\n"},
		{Kind: BlockText, Content: "prose\nprose\n"},
		{Kind: BlockCode, Content: "c = 3"},
	}}
	require.Equal(t, 3, s.CodeLineCount())
}
