package classify

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/eventcluster/events"
)

// Labels is a target vector in one of its accepted forms.
type Labels interface {
	resolve(evs *events.Events) ([]float64, error)
}

// Values is a numeric target vector.
type Values []float64

func (v Values) resolve(*events.Events) ([]float64, error) {
	return append([]float64(nil), v...), nil
}

// Ints is an integer label vector.
type Ints []int

func (v Ints) resolve(*events.Events) ([]float64, error) {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out, nil
}

// Bools is a binary label vector; true becomes 1.
type Bools []bool

func (v Bools) resolve(*events.Events) ([]float64, error) {
	out := make([]float64, len(v))
	for i, x := range v {
		if x {
			out[i] = 1
		}
	}
	return out, nil
}

// Column reads labels from an events column. Categorical columns go
// through Encoder, or through a fresh encoder over the column's values.
type Column struct {
	Name    string
	Encoder *LabelEncoder
}

func (c Column) resolve(evs *events.Events) ([]float64, error) {
	if evs == nil {
		return nil, fmt.Errorf("%w: column %q needs events", ErrInvalidInput, c.Name)
	}
	vals, err := evs.Column(c.Name)
	if err != nil {
		return nil, err
	}
	categorical := false
	for _, v := range vals {
		if v.IsStr {
			categorical = true
			break
		}
	}
	out := make([]float64, len(vals))
	if !categorical && c.Encoder == nil {
		for i, v := range vals {
			out[i] = v.Num
		}
		return out, nil
	}

	enc := c.Encoder
	if enc == nil {
		strs := make([]string, len(vals))
		for i, v := range vals {
			strs[i] = v.String()
		}
		enc = NewLabelEncoder(strs)
	}
	for i, v := range vals {
		code, err := enc.Encode(v.String())
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}

// LabelEncoder maps category names to consecutive codes 0..k-1 in sorted
// name order.
type LabelEncoder struct {
	Classes []string `msgpack:"classes" yaml:"classes"`
}

// NewLabelEncoder collects the distinct values, sorted.
func NewLabelEncoder(values []string) *LabelEncoder {
	seen := map[string]bool{}
	var classes []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			classes = append(classes, v)
		}
	}
	sort.Strings(classes)
	return &LabelEncoder{Classes: classes}
}

// Encode returns the code of name.
func (e *LabelEncoder) Encode(name string) (float64, error) {
	i := sort.SearchStrings(e.Classes, name)
	if i == len(e.Classes) || e.Classes[i] != name {
		return 0, fmt.Errorf("%w: label %q not in %v", ErrInvalidInput, name, e.Classes)
	}
	return float64(i), nil
}

// Decode returns the name of code.
func (e *LabelEncoder) Decode(code float64) (string, error) {
	i := int(code)
	if float64(i) != code || i < 0 || i >= len(e.Classes) {
		return "", fmt.Errorf("%w: code %v", ErrInvalidInput, code)
	}
	return e.Classes[i], nil
}
