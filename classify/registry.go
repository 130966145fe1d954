package classify

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Model is a fitted (or fittable) estimator. Labels and targets travel as
// float64; classifiers predict one of the labels seen during Fit.
type Model interface {
	Fit(X *mat.Dense, y []float64) error
	Predict(X *mat.Dense) ([]float64, error)
}

// Hyper holds constructor hyperparameters by their conventional names
// (n_estimators, max_depth, alpha, ...).
type Hyper map[string]any

// Constructor builds an unfitted model; it rejects unknown keys and
// values of the wrong type.
type Constructor func(h Hyper) (Model, error)

type family struct {
	name   string
	models map[string]Constructor
}

// families is searched in this order by TrainClassifier.
var families = []family{
	{"cluster", map[string]Constructor{
		"KMeans": newKMeans,
	}},
	{"ensemble", map[string]Constructor{
		"RandomForestClassifier": newRandomForest(true),
		"RandomForestRegressor":  newRandomForest(false),
	}},
	{"gaussian_process", map[string]Constructor{
		"GaussianProcessClassifier": newGaussianProcessClassifier,
		"GaussianProcessRegressor":  newGaussianProcessRegressor,
	}},
	{"linear_model", map[string]Constructor{
		"LinearRegression":   newLinearRegression,
		"LogisticRegression": newLogisticRegression,
		"Perceptron":         newPerceptron,
		"Ridge":              newRidge,
	}},
	{"neighbors", map[string]Constructor{
		"KNeighborsClassifier": newKNeighbors(true),
		"KNeighborsRegressor":  newKNeighbors(false),
		"NearestCentroid":      newNearestCentroid,
	}},
	{"neural_network", map[string]Constructor{
		"MLPClassifier": newMLP(true),
		"MLPRegressor":  newMLP(false),
	}},
	{"tree", map[string]Constructor{
		"DecisionTreeClassifier": newDecisionTree(true),
		"DecisionTreeRegressor":  newDecisionTree(false),
	}},
}

// Families lists the model families in search order.
func Families() []string {
	out := make([]string, len(families))
	for i, f := range families {
		out[i] = f.name
	}
	return out
}

// AvailableModels lists every model name, family by family in search
// order, sorted within each family.
func AvailableModels() []string {
	var out []string
	for _, f := range families {
		names := make([]string, 0, len(f.models))
		for n := range f.models {
			names = append(names, n)
		}
		sort.Strings(names)
		out = append(out, names...)
	}
	return out
}

// Construct builds the named model. Every family offering the name is
// tried in order; the first that accepts the hyperparameters wins.
func Construct(name string, h Hyper) (Model, error) {
	found := false
	var errs []error
	for _, f := range families {
		ctor, ok := f.models[name]
		if !ok {
			continue
		}
		found = true
		m, err := ctor(h)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			continue
		}
		return m, nil
	}
	if !found {
		return nil, &UnknownClassifierError{Name: name, Families: Families()}
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrNoClassifier, name, errors.Join(errs...))
}

// hyperReader pulls typed values out of a Hyper and remembers what it saw.
type hyperReader struct {
	h    Hyper
	used map[string]bool
	err  error
}

func newHyperReader(h Hyper) *hyperReader {
	return &hyperReader{h: h, used: map[string]bool{}}
}

func (r *hyperReader) lookup(key string) (any, bool) {
	r.used[key] = true
	v, ok := r.h[key]
	return v, ok
}

func (r *hyperReader) fail(key string, v any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s=%v (%T)", ErrBadHyperparameter, key, v, v)
	}
}

func (r *hyperReader) float(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	}
	r.fail(key, v)
	return def
}

func (r *hyperReader) int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		if x == math.Trunc(x) {
			return int(x)
		}
	}
	r.fail(key, v)
	return def
}

func (r *hyperReader) string(key, def string, allowed ...string) string {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	s, isStr := v.(string)
	if !isStr {
		r.fail(key, v)
		return def
	}
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	r.fail(key, v)
	return def
}

func (r *hyperReader) bool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	b, isBool := v.(bool)
	if !isBool {
		r.fail(key, v)
		return def
	}
	return b
}

func (r *hyperReader) ints(key string, def []int) []int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case []int:
		return append([]int(nil), x...)
	case int:
		return []int{x}
	case []any:
		out := make([]int, len(x))
		for i, e := range x {
			n, isInt := e.(int)
			if !isInt {
				r.fail(key, v)
				return def
			}
			out[i] = n
		}
		return out
	}
	r.fail(key, v)
	return def
}

// done reports the first bad value or any key that was never read.
func (r *hyperReader) done() error {
	if r.err != nil {
		return r.err
	}
	var unknown []string
	for k := range r.h {
		if !r.used[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %v", ErrUnknownHyperparameter, unknown)
	}
	return nil
}
