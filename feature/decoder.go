package feature

import (
	"fmt"
	"strconv"
)

/*
Decoder translates encoded feature names and split thresholds back
into the original, human-readable feature names and values. It is
used for node labels and tooltips only; path tracing always operates
on encoded names.

Decoding is best-effort: an encoded name the decoder cannot map is
reported verbatim instead of failing, so a stale or incomplete
descriptor degrades labels without blocking highlighting.
*/
type Decoder struct {
	descriptor Descriptor
	// encoded one-hot column name -> (original name, category value)
	categories map[string]category
}

type category struct {
	feature string
	value   string
}

/*
NewDecoder takes a dataset descriptor and returns a Decoder that can
translate the encoded names the descriptor expands to.
*/
func NewDecoder(d Descriptor) *Decoder {
	categories := make(map[string]category)
	for name, cf := range d.Categorical {
		for _, v := range cf.DistinctValues {
			categories[name+"_"+string(v)] = category{feature: name, value: string(v)}
		}
	}
	return &Decoder{descriptor: d, categories: categories}
}

/*
DecodeName takes an encoded feature name and returns the original
feature name, the category value when the encoded name is a one-hot
indicator column (empty string otherwise), and a boolean indicating
whether the name could be mapped at all. Unknown names are returned
verbatim with false.
*/
func (d *Decoder) DecodeName(encoded string) (string, string, bool) {
	if _, ok := d.descriptor.Numeric[encoded]; ok {
		return encoded, "", true
	}
	if c, ok := d.categories[encoded]; ok {
		return c.feature, c.value, true
	}
	return encoded, "", false
}

/*
DescribeSplit takes the encoded feature name and threshold of a split
node and a boolean indicating which branch is described (true for the
left, value <= threshold branch) and returns a human-readable
condition. One-hot indicator splits render as equality tests on the
original categorical feature; numeric splits render as threshold
comparisons. Unknown encoded names fall back to the raw name and
threshold.
*/
func (d *Decoder) DescribeSplit(encoded string, threshold float64, left bool) string {
	name, value, ok := d.DecodeName(encoded)
	if ok && value != "" {
		// Indicator columns only take values 0 and 1, so the branch
		// fully determines category membership.
		if left {
			return fmt.Sprintf("%s ≠ %s", name, value)
		}
		return fmt.Sprintf("%s = %s", name, value)
	}
	t := strconv.FormatFloat(threshold, 'g', -1, 64)
	if left {
		return fmt.Sprintf("%s ≤ %s", name, t)
	}
	return fmt.Sprintf("%s > %s", name, t)
}

/*
DecodeInstance takes an encoded instance and returns its original
representation: numeric features keep their values, and each
categorical feature maps to the value of its highest-valued indicator
column. Categorical features with no indicator set are omitted.
*/
func (d *Decoder) DecodeInstance(inst Instance) map[string]any {
	original := make(map[string]any)
	for name := range d.descriptor.Numeric {
		if v, ok := inst.Value(name); ok {
			original[name] = v
		}
	}
	best := make(map[string]float64)
	for encoded, v := range inst {
		c, ok := d.categories[encoded]
		if !ok {
			continue
		}
		if prev, seen := best[c.feature]; !seen || v > prev {
			best[c.feature] = v
			original[c.feature] = c.value
		}
	}
	for feature, v := range best {
		if v <= 0 {
			delete(original, feature)
		}
	}
	return original
}

/*
EncodedValueLabel takes an encoded feature name and a value and
returns a display string for it: indicator columns render as the
category value when set, numeric features as the bare number.
*/
func (d *Decoder) EncodedValueLabel(encoded string, v float64) string {
	if c, ok := d.categories[encoded]; ok {
		if v > 0 {
			return fmt.Sprintf("%s = %s", c.feature, c.value)
		}
		return fmt.Sprintf("%s ≠ %s", c.feature, c.value)
	}
	return fmt.Sprintf("%s = %s", encoded, strconv.FormatFloat(v, 'g', -1, 64))
}
