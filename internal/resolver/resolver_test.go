package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

func codeBlocks(code ...string) []gallery.Block {
	blocks := make([]gallery.Block, len(code))
	for i, c := range code {
		blocks[i] = gallery.Block{Kind: gallery.BlockCode, Content: c}
	}
	return blocks
}

func TestIdentifyResolvesAliasedImports(t *testing.T) {
	r := &Resolver{}
	got := r.Identify(codeBlocks(
		"import numpy as np\n",
		"x = np.linspace(0, 1, 10)\ny = np.random.rand(10)\n",
	))
	require.Equal(t, "numpy.linspace", got["np.linspace"])
	require.Equal(t, "numpy.random.rand", got["np.random.rand"])
}

func TestIdentifyResolvesFromImports(t *testing.T) {
	r := &Resolver{}
	got := r.Identify(codeBlocks(
		"from matplotlib import pyplot as plt\n" +
			"from sklearn.linear_model import LinearRegression, Ridge\n" +
			"plt.plot([1])\nm = LinearRegression.fit\nr = Ridge.alpha\n",
	))
	require.Equal(t, "matplotlib.pyplot.plot", got["plt.plot"])
	require.Equal(t, "sklearn.linear_model.LinearRegression.fit", got["LinearRegression.fit"])
	require.Equal(t, "sklearn.linear_model.Ridge.alpha", got["Ridge.alpha"])
}

func TestIdentifyPrefersHintsOverImports(t *testing.T) {
	// est was imported from one place but actually bound to another type at
	// runtime; the runtime hint wins.
	r := &Resolver{Hints: map[string]string{"est": "sklearn.ensemble.RandomForestClassifier"}}
	got := r.Identify(codeBlocks(
		"import myproject as est\n",
		"est.predict(X)\n",
	))
	require.Equal(t, "sklearn.ensemble.RandomForestClassifier.predict", got["est.predict"])
}

func TestIdentifyPrefersLongestDottedPrefix(t *testing.T) {
	r := &Resolver{Hints: map[string]string{
		"np":        "numpy",
		"np.random": "numpy.random.mtrand",
	}}
	got := r.Identify(codeBlocks("np.random.rand(3)\n"))
	require.Equal(t, "numpy.random.mtrand.rand", got["np.random.rand"])
}

func TestIdentifyDocModuleFilter(t *testing.T) {
	r := &Resolver{DocModules: []string{"sklearn"}}
	got := r.Identify(codeBlocks(
		"import numpy as np\nimport sklearn.datasets\n",
		"np.zeros(1)\nsklearn.datasets.load_iris()\n",
	))
	require.NotContains(t, got, "np.zeros")
	require.Equal(t, "sklearn.datasets.load_iris", got["sklearn.datasets.load_iris"])
}

func TestIdentifyIgnoresCommentsAndUnresolvable(t *testing.T) {
	r := &Resolver{}
	got := r.Identify(codeBlocks(
		"x = 1  # see os.path.join for details\nsomething.undefined(x)\n",
	))
	require.NotContains(t, got, "os.path.join")
	require.NotContains(t, got, "something.undefined")
}

func TestIdentifySkipsTextBlocks(t *testing.T) {
	r := &Resolver{}
	got := r.Identify([]gallery.Block{
		{Kind: gallery.BlockText, Content: "import numpy as np mentioned in prose, np.zeros too\n"},
	})
	require.Empty(t, got)
}
