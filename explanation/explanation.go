package explanation

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/AlessandroCarella/treescope/feature"
	"github.com/AlessandroCarella/treescope/tree"
)

/*
Explanation is the precomputed payload produced for one explained
instance: the surrogate decision tree as a raw node array, the 2D
scatter-plot projection of the instance's neighborhood, the encoded
and human-readable forms of the instance, the class labels, and the
feature-mapping information needed to decode encoded feature names.

The JSON field names match the payload emitted by the explanation
backend, so a payload can be ingested without translation.
*/
type Explanation struct {
	TreeNodes        []tree.Node      `json:"decisionTreeVisualizationData"`
	ScatterPlot      ScatterPlotData  `json:"scatterPlotVisualizationData"`
	EncodedInstance  feature.Instance `json:"encodedInstance"`
	OriginalInstance map[string]any   `json:"originalInstance,omitempty"`
	UniqueClasses    []feature.Value  `json:"uniqueClasses,omitempty"`
	FeatureMapping   feature.Mapping  `json:"featureMappingInfo"`
}

/*
ScatterPlotData holds the dimensionality-reduced neighborhood of the
explained instance. TransformedData carries the 2D projected points,
OriginalData the same points in encoded feature space (used to decide
whether a point satisfies a tree split), and Targets the class label
per point. Rows of TransformedData, OriginalData and Targets are
aligned by index.
*/
type ScatterPlotData struct {
	TransformedData  [][]float64        `json:"transformedData"`
	OriginalData     []feature.Instance `json:"originalData"`
	Targets          []feature.Value    `json:"targets"`
	DecisionBoundary *DecisionBoundary  `json:"decisionBoundary,omitempty"`
	XAxisLabel       string             `json:"xAxisLabel,omitempty"`
	YAxisLabel       string             `json:"yAxisLabel,omitempty"`
	Method           string             `json:"method,omitempty"`
}

/*
DecisionBoundary describes the classifier's decision regions in the
projected 2D space as polygons with one class label each.
*/
type DecisionBoundary struct {
	Regions       [][][]float64   `json:"regions"`
	RegionClasses []feature.Value `json:"regionClasses"`
	XRange        []float64       `json:"xRange,omitempty"`
	YRange        []float64       `json:"yRange,omitempty"`
}

/*
Read takes an io.Reader and decodes an explanation payload from the
JSON it provides. It returns an error if the JSON cannot be decoded
or the payload fails validation.
*/
func Read(r io.Reader) (*Explanation, error) {
	e := &Explanation{}
	if err := json.NewDecoder(r).Decode(e); err != nil {
		return nil, fmt.Errorf("decoding explanation payload: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

/*
Write takes an io.Writer and serializes the explanation payload as
JSON onto it. It returns an error if the payload cannot be encoded
or written.
*/
func (e *Explanation) Write(w io.Writer) error {
	if err := json.NewEncoder(w).Encode(e); err != nil {
		return fmt.Errorf("encoding explanation payload: %w", err)
	}
	return nil
}

/*
Validate checks the parts of the payload the coordination core
depends on: the node array must form a valid tree and the
scatter-plot point arrays must be aligned. It returns an error
describing the first problem found.
*/
func (e *Explanation) Validate() error {
	if _, err := tree.New(e.TreeNodes); err != nil {
		return fmt.Errorf("invalid explanation tree: %w", err)
	}
	sp := e.ScatterPlot
	if len(sp.OriginalData) != len(sp.TransformedData) {
		return fmt.Errorf("scatter plot data misaligned: %d original rows, %d transformed rows", len(sp.OriginalData), len(sp.TransformedData))
	}
	if len(sp.Targets) != 0 && len(sp.Targets) != len(sp.OriginalData) {
		return fmt.Errorf("scatter plot data misaligned: %d original rows, %d targets", len(sp.OriginalData), len(sp.Targets))
	}
	return nil
}
