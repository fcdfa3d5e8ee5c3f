package feature

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

/*
Instance represents a data point to be explained, as the trained
model sees it: a mapping from encoded feature name to numeric value.
One-hot indicator columns of categorical features appear as separate
0/1-valued entries named after the original feature and the category
value.
*/
type Instance map[string]float64

/*
Value takes an encoded feature name and returns the instance's value
for it and a boolean indicating whether the instance defines a value
for that feature at all.
*/
func (i Instance) Value(name string) (float64, bool) {
	v, ok := i[name]
	return v, ok
}

// Clone returns a copy of the instance that can be mutated
// without affecting the original.
func (i Instance) Clone() Instance {
	if i == nil {
		return nil
	}
	c := make(Instance, len(i))
	for k, v := range i {
		c[k] = v
	}
	return c
}

/*
Value-typed payload fields (categorical values, class labels) may
arrive from the explanation producer either as JSON strings or as
bare numbers, depending on how the dataset encodes its target.
Value normalizes both to a string.
*/
type Value string

// UnmarshalJSON accepts a JSON string or number and stores its
// string form.
func (v *Value) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = Value(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Value(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// UnmarshalYAML applies the same normalization to descriptor files.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*v = Value(fmt.Sprintf("%v", raw))
	return nil
}

/*
NumericFeature describes a continuous property of the dataset: its
position among the original features and the value range observed
when the descriptor was built.
*/
type NumericFeature struct {
	Index int     `json:"index" yaml:"index"`
	Min   float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max   float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

/*
CategoricalFeature describes a discrete property of the dataset: its
position among the original features and the set of values it can
take. The distinct values determine the one-hot columns the feature
expands to after encoding.
*/
type CategoricalFeature struct {
	Index          int     `json:"index" yaml:"index"`
	DistinctValues []Value `json:"distinct_values" yaml:"distinct_values"`
}

/*
Descriptor describes the features of a dataset, split into numeric
and categorical ones, the way the explanation producer reports them.
It is the source of truth for translating between original and
encoded feature names.
*/
type Descriptor struct {
	Numeric     map[string]NumericFeature     `json:"numeric" yaml:"numeric"`
	Categorical map[string]CategoricalFeature `json:"categorical" yaml:"categorical"`
}

/*
Mapping carries the feature-name translation info attached to an
explanation payload. It is consumed only for display purposes, never
by path tracing.
*/
type Mapping struct {
	OriginalFeatureNames []string   `json:"originalFeatureNames"`
	EncodedFeatureNames  []string   `json:"encodedFeatureNames"`
	DatasetDescriptor    Descriptor `json:"datasetDescriptor"`
}

/*
OriginalNames returns the original (pre-encoding) feature names of
the descriptor ordered by their dataset index.
*/
func (d Descriptor) OriginalNames() []string {
	type indexed struct {
		index int
		name  string
	}
	var all []indexed
	for name, nf := range d.Numeric {
		all = append(all, indexed{nf.Index, name})
	}
	for name, cf := range d.Categorical {
		all = append(all, indexed{cf.Index, name})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].index < all[j].index })
	names := make([]string, len(all))
	for i, f := range all {
		names[i] = f.name
	}
	return names
}

/*
EncodedNames returns the feature names as seen by the trained model:
numeric features keep their original names ordered by index, then
categorical features ordered by index expand to one name_value column
per distinct value, with values sorted alphabetically to match the
encoder's column order.
*/
func (d Descriptor) EncodedNames() []string {
	var names []string
	names = append(names, sortedByIndex(d.Numeric, func(nf NumericFeature) int { return nf.Index })...)
	for _, name := range sortedByIndex(d.Categorical, func(cf CategoricalFeature) int { return cf.Index }) {
		values := make([]string, len(d.Categorical[name].DistinctValues))
		for i, v := range d.Categorical[name].DistinctValues {
			values[i] = string(v)
		}
		sort.Strings(values)
		for _, v := range values {
			names = append(names, name+"_"+v)
		}
	}
	return names
}

func sortedByIndex[T any](m map[string]T, index func(T) int) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return index(m[names[i]]) < index(m[names[j]])
	})
	return names
}
