package feature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AlessandroCarella/treescope/feature"
)

func TestDecodeName(t *testing.T) {
	dec := feature.NewDecoder(adultDescriptor())

	name, value, ok := dec.DecodeName("age")
	assert.True(t, ok)
	assert.Equal(t, "age", name)
	assert.Empty(t, value)

	name, value, ok = dec.DecodeName("sex_male")
	assert.True(t, ok)
	assert.Equal(t, "sex", name)
	assert.Equal(t, "male", value)

	// Unknown names come back verbatim so labels degrade instead of
	// blocking rendering.
	name, value, ok = dec.DecodeName("pca_component_1")
	assert.False(t, ok)
	assert.Equal(t, "pca_component_1", name)
	assert.Empty(t, value)
}

func TestDescribeSplit(t *testing.T) {
	dec := feature.NewDecoder(adultDescriptor())

	assert.Equal(t, "age ≤ 30.5", dec.DescribeSplit("age", 30.5, true))
	assert.Equal(t, "age > 30.5", dec.DescribeSplit("age", 30.5, false))
	assert.Equal(t, "sex ≠ male", dec.DescribeSplit("sex_male", 0.5, true))
	assert.Equal(t, "sex = male", dec.DescribeSplit("sex_male", 0.5, false))
	assert.Equal(t, "unknown_feat ≤ 1", dec.DescribeSplit("unknown_feat", 1, true))
}

func TestDecodeInstance(t *testing.T) {
	dec := feature.NewDecoder(adultDescriptor())
	original := dec.DecodeInstance(feature.Instance{
		"age":                39,
		"hours-per-week":     40,
		"sex_male":           1,
		"sex_female":         0,
		"workclass_private":  0,
		"workclass_gov":      0,
		"workclass_self-emp": 0,
	})
	assert.Equal(t, 39.0, original["age"])
	assert.Equal(t, 40.0, original["hours-per-week"])
	assert.Equal(t, "male", original["sex"])
	// All workclass indicators are zero, so no value can be claimed.
	_, present := original["workclass"]
	assert.False(t, present)
}
