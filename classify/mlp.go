package classify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/eventcluster/internal/rng"
)

// MLP is a feed-forward network with ReLU hidden layers trained by
// full-batch Adam. Classifiers end in a softmax over the classes seen in
// Fit (cross-entropy loss), regressors in one linear unit (squared loss).
type MLP struct {
	Classifier       bool        `msgpack:"classifier"`
	HiddenLayerSizes []int       `msgpack:"hidden_layer_sizes"`
	MaxIter          int         `msgpack:"max_iter"`
	LearningRate     float64     `msgpack:"learning_rate_init"`
	Alpha            float64     `msgpack:"alpha"` // L2 penalty
	Seed             int64       `msgpack:"seed"`
	Classes          []float64   `msgpack:"classes"`
	Sizes            []int       `msgpack:"sizes"`   // input, hidden..., output widths
	Weights          [][]float64 `msgpack:"weights"` // row-major Sizes[l]×Sizes[l+1]
	Biases           [][]float64 `msgpack:"biases"`
}

func newMLP(classifier bool) Constructor {
	return func(h Hyper) (Model, error) {
		r := newHyperReader(h)
		m := &MLP{
			Classifier:       classifier,
			HiddenLayerSizes: r.ints("hidden_layer_sizes", []int{100}),
			MaxIter:          r.int("max_iter", 200),
			LearningRate:     r.float("learning_rate_init", 0.001),
			Alpha:            r.float("alpha", 1e-4),
			Seed:             int64(r.int("random_state", 0)),
		}
		if err := r.done(); err != nil {
			return nil, err
		}
		for _, s := range m.HiddenLayerSizes {
			if s < 1 {
				return nil, fmt.Errorf("%w: hidden layer of %d units", ErrBadHyperparameter, s)
			}
		}
		if m.MaxIter < 1 || m.LearningRate <= 0 || m.Alpha < 0 {
			return nil, fmt.Errorf("%w: max_iter %d, learning_rate_init %v, alpha %v",
				ErrBadHyperparameter, m.MaxIter, m.LearningRate, m.Alpha)
		}
		return m, nil
	}
}

func (m *MLP) layer(l int) (*mat.Dense, []float64) {
	return mat.NewDense(m.Sizes[l], m.Sizes[l+1], m.Weights[l]), m.Biases[l]
}

// forward returns the activations of every layer, X included.
func (m *MLP) forward(X *mat.Dense) []*mat.Dense {
	acts := []*mat.Dense{X}
	last := len(m.Weights) - 1
	for l := range m.Weights {
		W, b := m.layer(l)
		var Z mat.Dense
		Z.Mul(acts[l], W)
		Z.Apply(func(_, j int, v float64) float64 { return v + b[j] }, &Z)
		switch {
		case l < last:
			Z.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, &Z)
		case m.Classifier:
			r, _ := Z.Dims()
			for i := 0; i < r; i++ {
				softmax(Z.RawRowView(i))
			}
		}
		acts = append(acts, &Z)
	}
	return acts
}

// Fit trains the network for MaxIter full-batch epochs.
func (m *MLP) Fit(X *mat.Dense, y []float64) error {
	x, err := trainingRows(X, y)
	if err != nil {
		return err
	}
	n := len(x)
	Xd := fromRows(x)

	var Y *mat.Dense
	out := 1
	if m.Classifier {
		m.Classes = uniqueSorted(y)
		out = len(m.Classes)
		class := classIndex(m.Classes)
		Y = mat.NewDense(n, out, nil)
		for i, v := range y {
			Y.Set(i, class[v], 1)
		}
	} else {
		Y = mat.NewDense(n, 1, append([]float64(nil), y...))
	}

	m.Sizes = append(append([]int{len(x[0])}, m.HiddenLayerSizes...), out)
	m.initWeights()

	params := make([][]float64, 0, 2*len(m.Weights))
	for l := range m.Weights {
		params = append(params, m.Weights[l], m.Biases[l])
	}
	opt := newAdam(params, m.LearningRate)
	grads := make([][]float64, len(params))

	for it := 0; it < m.MaxIter; it++ {
		acts := m.forward(Xd)
		var delta mat.Dense
		delta.Sub(acts[len(acts)-1], Y)
		delta.Scale(1/float64(n), &delta)

		for l := len(m.Weights) - 1; l >= 0; l-- {
			W, _ := m.layer(l)
			var gW mat.Dense
			gW.Mul(acts[l].T(), &delta)
			gW.Add(&gW, scaled(m.Alpha/float64(n), W))
			grads[2*l] = flatten(&gW)

			r, c := delta.Dims()
			gb := make([]float64, c)
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					gb[j] += delta.At(i, j)
				}
			}
			grads[2*l+1] = gb

			if l > 0 {
				var prev mat.Dense
				prev.Mul(&delta, W.T())
				a := acts[l]
				prev.Apply(func(i, j int, v float64) float64 {
					if a.At(i, j) <= 0 {
						return 0
					}
					return v
				}, &prev)
				delta = prev
			}
		}
		opt.step(grads)
	}
	return nil
}

func (m *MLP) initWeights() {
	r := rng.New(m.Seed)
	layers := len(m.Sizes) - 1
	m.Weights = make([][]float64, layers)
	m.Biases = make([][]float64, layers)
	for l := 0; l < layers; l++ {
		in, out := m.Sizes[l], m.Sizes[l+1]
		bound := math.Sqrt(6 / float64(in+out))
		w := make([]float64, in*out)
		for i := range w {
			w[i] = (2*r.Float64() - 1) * bound
		}
		b := make([]float64, out)
		for i := range b {
			b[i] = (2*r.Float64() - 1) * bound
		}
		m.Weights[l], m.Biases[l] = w, b
	}
}

// Predict returns the most probable class or the regression output.
func (m *MLP) Predict(X *mat.Dense) ([]float64, error) {
	width := 0
	if len(m.Sizes) > 0 {
		width = m.Sizes[0]
	}
	x, err := predictRows(X, width)
	if err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, nil
	}
	acts := m.forward(fromRows(x))
	last := acts[len(acts)-1]
	out := make([]float64, len(x))
	for i := range out {
		if m.Classifier {
			out[i] = m.Classes[argmax(last.RawRowView(i))]
		} else {
			out[i] = last.At(i, 0)
		}
	}
	return out, nil
}

func scaled(f float64, a mat.Matrix) *mat.Dense {
	var s mat.Dense
	s.Scale(f, a)
	return &s
}

func flatten(a *mat.Dense) []float64 {
	r, c := a.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, a.RawRowView(i)...)
	}
	return out
}

// adam updates parameter slices in place.
type adam struct {
	params [][]float64
	m, v   [][]float64
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int
}

func newAdam(params [][]float64, lr float64) *adam {
	a := &adam{params: params, lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-8}
	a.m = make([][]float64, len(params))
	a.v = make([][]float64, len(params))
	for i, p := range params {
		a.m[i] = make([]float64, len(p))
		a.v[i] = make([]float64, len(p))
	}
	return a
}

func (a *adam) step(grads [][]float64) {
	a.t++
	lr := a.lr * math.Sqrt(1-math.Pow(a.beta2, float64(a.t))) / (1 - math.Pow(a.beta1, float64(a.t)))
	for i, p := range a.params {
		g := grads[i]
		for k := range p {
			a.m[i][k] = a.beta1*a.m[i][k] + (1-a.beta1)*g[k]
			a.v[i][k] = a.beta2*a.v[i][k] + (1-a.beta2)*g[k]*g[k]
			p[k] -= lr * a.m[i][k] / (math.Sqrt(a.v[i][k]) + a.eps)
		}
	}
}
