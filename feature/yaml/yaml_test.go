package yaml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	featureyaml "github.com/AlessandroCarella/treescope/feature/yaml"
)

const descriptorYML = `
numeric:
  age:
    index: 0
    min: 17
    max: 90
categorical:
  sex:
    index: 1
    distinct_values: [male, female]
  children:
    index: 2
    distinct_values: [0, 1, 2]
`

func TestReadDescriptor(t *testing.T) {
	d, err := featureyaml.ReadDescriptor([]byte(descriptorYML))
	require.NoError(t, err)
	assert.Equal(t, 0, d.Numeric["age"].Index)
	assert.Len(t, d.Categorical["sex"].DistinctValues, 2)
	// Numeric category values are normalized to strings.
	assert.Equal(t, "0", string(d.Categorical["children"].DistinctValues[0]))
}

func TestReadDescriptorEmpty(t *testing.T) {
	_, err := featureyaml.ReadDescriptor([]byte("{}"))
	assert.Error(t, err)
}

func TestReadDescriptorFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descriptor.yml")
	require.NoError(t, os.WriteFile(path, []byte(descriptorYML), 0644))
	d, err := featureyaml.ReadDescriptorFromFile(path)
	require.NoError(t, err)
	assert.Contains(t, d.EncodedNames(), "sex_male")

	_, err = featureyaml.ReadDescriptorFromFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
