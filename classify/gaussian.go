package classify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// GaussianProcessRegressor is a zero-mean Gaussian process with an RBF
// kernel; Predict returns the posterior mean.
type GaussianProcessRegressor struct {
	LengthScale float64     `msgpack:"length_scale"`
	Alpha       float64     `msgpack:"alpha"` // added to the kernel diagonal
	X           [][]float64 `msgpack:"x"`
	Weights     []float64   `msgpack:"weights"`
}

func newGaussianProcessRegressor(h Hyper) (Model, error) {
	r := newHyperReader(h)
	g := &GaussianProcessRegressor{
		LengthScale: r.float("length_scale", 1),
		Alpha:       r.float("alpha", 1e-10),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	if g.LengthScale <= 0 || g.Alpha < 0 {
		return nil, fmt.Errorf("%w: length_scale %v, alpha %v", ErrBadHyperparameter, g.LengthScale, g.Alpha)
	}
	return g, nil
}

func (g *GaussianProcessRegressor) kernel(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return math.Exp(-d * d / (2 * g.LengthScale * g.LengthScale))
}

// Fit solves (K + alpha·I) w = y with a Cholesky factorization.
func (g *GaussianProcessRegressor) Fit(X *mat.Dense, y []float64) error {
	x, err := trainingRows(X, y)
	if err != nil {
		return err
	}
	return g.fitRows(x, y)
}

func (g *GaussianProcessRegressor) fitRows(x [][]float64, y []float64) error {
	n := len(x)
	K := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		K.SetSym(i, i, 1+g.Alpha)
		for j := i + 1; j < n; j++ {
			K.SetSym(i, j, g.kernel(x[i], x[j]))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(K); !ok {
		return fmt.Errorf("%w: kernel matrix is not positive definite, raise alpha", ErrInvalidInput)
	}
	w := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(w, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return fmt.Errorf("classify: gaussian process solve: %w", err)
	}
	g.X = x
	g.Weights = w.RawVector().Data
	return nil
}

// Predict returns the posterior mean at every row.
func (g *GaussianProcessRegressor) Predict(X *mat.Dense) ([]float64, error) {
	width := 0
	if len(g.X) > 0 {
		width = len(g.X[0])
	}
	x, err := predictRows(X, width)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	k := make([]float64, len(g.X))
	for i, row := range x {
		for j, xj := range g.X {
			k[j] = g.kernel(row, xj)
		}
		out[i] = floats.Dot(k, g.Weights)
	}
	return out, nil
}

// GaussianProcessClassifier regresses a ±1 indicator per class (one
// versus rest) and predicts the class with the largest posterior mean.
type GaussianProcessClassifier struct {
	LengthScale float64                     `msgpack:"length_scale"`
	Alpha       float64                     `msgpack:"alpha"`
	Classes     []float64                   `msgpack:"classes"`
	Experts     []*GaussianProcessRegressor `msgpack:"experts"`
}

func newGaussianProcessClassifier(h Hyper) (Model, error) {
	m, err := newGaussianProcessRegressor(h)
	if err != nil {
		return nil, err
	}
	g := m.(*GaussianProcessRegressor)
	return &GaussianProcessClassifier{LengthScale: g.LengthScale, Alpha: g.Alpha}, nil
}

// Fit trains one regressor per class.
func (c *GaussianProcessClassifier) Fit(X *mat.Dense, y []float64) error {
	x, err := trainingRows(X, y)
	if err != nil {
		return err
	}
	c.Classes = uniqueSorted(y)
	c.Experts = make([]*GaussianProcessRegressor, len(c.Classes))
	target := make([]float64, len(y))
	for k, cls := range c.Classes {
		for i, v := range y {
			target[i] = -1
			if v == cls {
				target[i] = 1
			}
		}
		e := &GaussianProcessRegressor{LengthScale: c.LengthScale, Alpha: c.Alpha}
		if err := e.fitRows(x, target); err != nil {
			return err
		}
		c.Experts[k] = e
	}
	return nil
}

// Predict returns the class whose expert scores highest.
func (c *GaussianProcessClassifier) Predict(X *mat.Dense) ([]float64, error) {
	if len(c.Experts) == 0 {
		return nil, fmt.Errorf("%w: model is not fitted", ErrInvalidState)
	}
	scores := make([][]float64, len(c.Experts))
	for k, e := range c.Experts {
		s, err := e.Predict(X)
		if err != nil {
			return nil, err
		}
		scores[k] = s
	}
	out := make([]float64, len(scores[0]))
	row := make([]float64, len(scores))
	for i := range out {
		for k := range scores {
			row[k] = scores[k][i]
		}
		out[i] = c.Classes[argmax(row)]
	}
	return out, nil
}
