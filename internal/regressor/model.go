// Package regressor holds the random-forest regression model used for
// solar-irradiance prediction.
//
// A Forest is immutable once loaded and safe for concurrent Predict calls.
// Trees are stored as flat parallel arrays indexed by node id, the layout
// scikit-learn uses for its fitted estimators, so an exported model maps
// onto a Forest without restructuring.
package regressor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Leaf marks a node without children
const Leaf = -1

var (
	// ErrShape is returned when an input vector does not match the model width
	ErrShape = errors.New("input shape mismatch")
	// ErrInvalidModel is returned when a decoded artifact is not a usable forest
	ErrInvalidModel = errors.New("invalid model")
)

// Predictor produces outputs for a fixed-width input vector
type Predictor interface {
	Predict(features []float64) ([]float64, error)
}

// Tree is a single fitted regression tree.
// Node i splits on Feature[i] at Threshold[i]; inputs <= Threshold go left.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// Forest averages the outputs of its trees
type Forest struct {
	NFeatures int    `json:"n_features"`
	Trees     []Tree `json:"trees"`
}

// Predict runs every tree on features and returns their mean as the single output.
func (f *Forest) Predict(features []float64) ([]float64, error) {
	if len(features) != f.NFeatures {
		return nil, fmt.Errorf("%w: model expects %d features, got %d", ErrShape, f.NFeatures, len(features))
	}

	outputs := make([]float64, len(f.Trees))
	for i := range f.Trees {
		outputs[i] = f.Trees[i].predict(features)
	}
	return []float64{floats.Sum(outputs) / float64(len(outputs))}, nil
}

func (t *Tree) predict(x []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != Leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// Validate checks that every tree is well formed for NFeatures inputs.
// Children must have a higher index than their parent, which rules out cycles.
func (f *Forest) Validate() error {
	if f.NFeatures <= 0 {
		return fmt.Errorf("%w: n_features must be positive, got %d", ErrInvalidModel, f.NFeatures)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("%w: no trees", ErrInvalidModel)
	}

	for ti := range f.Trees {
		if err := f.Trees[ti].validate(f.NFeatures); err != nil {
			return fmt.Errorf("%w: tree %d: %v", ErrInvalidModel, ti, err)
		}
	}
	return nil
}

func (t *Tree) validate(nFeatures int) error {
	n := len(t.Value)
	if n == 0 {
		return errors.New("no nodes")
	}
	if len(t.ChildrenLeft) != n || len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n {
		return errors.New("node arrays differ in length")
	}

	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == Leaf || right == Leaf {
			if left != right {
				return fmt.Errorf("node %d has a single child", i)
			}
			continue
		}
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has out of range children %d, %d", i, left, right)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d", i, t.Feature[i])
		}
	}
	return nil
}

// Depth returns the length of the longest root-to-leaf path
func (t *Tree) Depth() int {
	depth := make([]int, len(t.Value))
	max := 0
	for i := range t.Value {
		if t.ChildrenLeft[i] == Leaf {
			if depth[i] > max {
				max = depth[i]
			}
			continue
		}
		depth[t.ChildrenLeft[i]] = depth[i] + 1
		depth[t.ChildrenRight[i]] = depth[i] + 1
	}
	return max
}
