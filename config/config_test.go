package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/eventcluster/config"
	"github.com/katalvlaran/eventcluster/linkage"
	"github.com/katalvlaran/eventcluster/similarity"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	p := config.Default()
	require.NoError(t, p.Validate())
	assert.Equal(t, similarity.Pearson, p.Distance.Type)
	assert.Equal(t, linkage.Average, p.Linkage.Method)
	assert.Equal(t, linkage.Distance, p.Linkage.Criterion)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, `
distance:
  type: dtw
  params:
    dtw:
      parallel: false
linkage:
  method: ward
  criterion: maxclust
  cutoff: 3
  cut:
    min_cluster_size: 0.1
modules:
  enabled: true
  bounds: [0.9, 1]
classifier:
  name: KNeighborsClassifier
  hyper:
    n_neighbors: 3
    weights: distance
`)
	p, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, similarity.DTW, p.Distance.Type)
	assert.False(t, p.Distance.Params.DTW.Parallel)
	assert.True(t, p.Distance.Params.DTW.ReturnSimilarity, "untouched keys keep their default")
	assert.Equal(t, linkage.Ward, p.Linkage.Method)
	assert.Equal(t, linkage.Euclidean, p.Linkage.Metric)
	assert.Equal(t, 3.0, p.Linkage.Cutoff)
	assert.Equal(t, 0.1, p.Linkage.Cut.MinClusterSize)
	assert.Equal(t, 2, p.Linkage.Cut.Depth)
	assert.True(t, p.Modules.Enabled)
	assert.Equal(t, 0.9, p.Modules.Bounds[0])
	assert.Equal(t, 3, p.Classifier.Hyper["n_neighbors"])

	o := p.GetOptions()
	assert.Equal(t, linkage.MaxClust, o.Criterion)
	assert.Equal(t, similarity.DTW, o.DistanceType)
	assert.Equal(t, linkage.Ward, p.TwoStepOptions().StepTwo.Method)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, "linkage: [not, a, map]"))
	assert.Error(t, err)

	tests := map[string]string{
		"distance type": "distance:\n  type: cosine\n",
		"method":        "linkage:\n  method: upgma\n",
		"metric":        "linkage:\n  metric: manhattan\n",
		"criterion":     "linkage:\n  criterion: elbow\n",
		"bounds":        "modules:\n  bounds: [1, 0.5]\n",
		"classifier":    "classifier:\n  name: SVC\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, body))
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	p, err := config.LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), p)

	p, err = config.LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), p)
}

func TestSave_RoundTrip(t *testing.T) {
	p := config.Default()
	p.Linkage.Method = linkage.Complete
	p.TwoStep.Enabled = true
	p.CacheDir = "/tmp/eventclust"

	path := filepath.Join(t.TempDir(), "nested", "pipeline.yaml")
	require.NoError(t, p.Save(path))

	back, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}
