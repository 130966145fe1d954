package classify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LinearRegression is ordinary least squares solved by QR.
type LinearRegression struct {
	FitIntercept bool      `msgpack:"fit_intercept"`
	Coef         []float64 `msgpack:"coef"`
	Intercept    float64   `msgpack:"intercept"`
}

func newLinearRegression(h Hyper) (Model, error) {
	r := newHyperReader(h)
	m := &LinearRegression{FitIntercept: r.bool("fit_intercept", true)}
	if err := r.done(); err != nil {
		return nil, err
	}
	return m, nil
}

// Fit solves min ||Xw + b - y||².
func (m *LinearRegression) Fit(X *mat.Dense, y []float64) error {
	Xc, yc, xMean, yMean, err := centered(X, y, m.FitIntercept)
	if err != nil {
		return err
	}
	var w mat.VecDense
	if err := w.SolveVec(Xc, mat.NewVecDense(len(yc), yc)); err != nil {
		return fmt.Errorf("classify: least squares: %w", err)
	}
	m.Coef = w.RawVector().Data
	m.Intercept = yMean - floats.Dot(xMean, m.Coef)
	return nil
}

// Predict returns Xw + b.
func (m *LinearRegression) Predict(X *mat.Dense) ([]float64, error) {
	return linearPredict(X, m.Coef, m.Intercept)
}

// Ridge is least squares with an L2 penalty alpha on the coefficients.
type Ridge struct {
	Alpha        float64   `msgpack:"alpha"`
	FitIntercept bool      `msgpack:"fit_intercept"`
	Coef         []float64 `msgpack:"coef"`
	Intercept    float64   `msgpack:"intercept"`
}

func newRidge(h Hyper) (Model, error) {
	r := newHyperReader(h)
	m := &Ridge{Alpha: r.float("alpha", 1), FitIntercept: r.bool("fit_intercept", true)}
	if err := r.done(); err != nil {
		return nil, err
	}
	if m.Alpha < 0 {
		return nil, fmt.Errorf("%w: alpha %v", ErrBadHyperparameter, m.Alpha)
	}
	return m, nil
}

// Fit solves (XᵀX + alpha·I) w = Xᵀy on centered data.
func (m *Ridge) Fit(X *mat.Dense, y []float64) error {
	Xc, yc, xMean, yMean, err := centered(X, y, m.FitIntercept)
	if err != nil {
		return err
	}
	_, d := Xc.Dims()
	A := mat.NewSymDense(d, nil)
	A.SymOuterK(1, Xc.T())
	for i := 0; i < d; i++ {
		A.SetSym(i, i, A.At(i, i)+m.Alpha)
	}
	var b mat.VecDense
	b.MulVec(Xc.T(), mat.NewVecDense(len(yc), yc))

	var w mat.VecDense
	var chol mat.Cholesky
	if chol.Factorize(A) {
		err = chol.SolveVecTo(&w, &b)
	} else {
		err = w.SolveVec(A, &b)
	}
	if err != nil {
		return fmt.Errorf("classify: ridge solve: %w", err)
	}
	m.Coef = w.RawVector().Data
	m.Intercept = yMean - floats.Dot(xMean, m.Coef)
	return nil
}

// Predict returns Xw + b.
func (m *Ridge) Predict(X *mat.Dense) ([]float64, error) {
	return linearPredict(X, m.Coef, m.Intercept)
}

// centered subtracts the column means of X and the mean of y when
// intercept is set; otherwise the means are zero.
func centered(X *mat.Dense, y []float64, intercept bool) (*mat.Dense, []float64, []float64, float64, error) {
	x, err := trainingRows(X, y)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	d := len(x[0])
	xMean := make([]float64, d)
	yMean := 0.0
	if intercept {
		col := make([]float64, len(x))
		for j := 0; j < d; j++ {
			for i := range x {
				col[i] = x[i][j]
			}
			xMean[j] = stat.Mean(col, nil)
		}
		yMean = stat.Mean(y, nil)
	}
	Xc := mat.NewDense(len(x), d, nil)
	yc := make([]float64, len(y))
	for i, row := range x {
		for j, v := range row {
			Xc.Set(i, j, v-xMean[j])
		}
		yc[i] = y[i] - yMean
	}
	return Xc, yc, xMean, yMean, nil
}

func linearPredict(X *mat.Dense, coef []float64, intercept float64) ([]float64, error) {
	x, err := predictRows(X, len(coef))
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = floats.Dot(row, coef) + intercept
	}
	return out, nil
}

// LogisticRegression is multinomial logistic regression with an L2
// penalty of strength 1/C, fitted by full-batch gradient descent.
type LogisticRegression struct {
	C            float64     `msgpack:"c"`
	MaxIter      int         `msgpack:"max_iter"`
	LearningRate float64     `msgpack:"learning_rate"`
	Classes      []float64   `msgpack:"classes"`
	W            [][]float64 `msgpack:"w"` // one row per class
	B            []float64   `msgpack:"b"`
}

func newLogisticRegression(h Hyper) (Model, error) {
	r := newHyperReader(h)
	m := &LogisticRegression{
		C:            r.float("C", 1),
		MaxIter:      r.int("max_iter", 1000),
		LearningRate: r.float("learning_rate", 0.1),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	if m.C <= 0 || m.MaxIter < 1 || m.LearningRate <= 0 {
		return nil, fmt.Errorf("%w: C %v, max_iter %d, learning_rate %v", ErrBadHyperparameter, m.C, m.MaxIter, m.LearningRate)
	}
	return m, nil
}

// Fit minimizes the mean cross-entropy plus ||W||²/(2·C·n).
func (m *LogisticRegression) Fit(X *mat.Dense, y []float64) error {
	x, err := trainingRows(X, y)
	if err != nil {
		return err
	}
	n, d := len(x), len(x[0])
	m.Classes = uniqueSorted(y)
	k := len(m.Classes)
	class := classIndex(m.Classes)

	m.W = make([][]float64, k)
	for c := range m.W {
		m.W[c] = make([]float64, d)
	}
	m.B = make([]float64, k)
	gradW := make([][]float64, k)
	for c := range gradW {
		gradW[c] = make([]float64, d)
	}
	gradB := make([]float64, k)
	p := make([]float64, k)
	penalty := 1 / (m.C * float64(n))

	for it := 0; it < m.MaxIter; it++ {
		for c := range gradW {
			floats.Scale(0, gradW[c])
		}
		floats.Scale(0, gradB)
		for i, row := range x {
			m.probabilities(row, p)
			p[class[y[i]]]--
			for c := range p {
				floats.AddScaled(gradW[c], p[c]/float64(n), row)
				gradB[c] += p[c] / float64(n)
			}
		}
		for c := range m.W {
			floats.AddScaled(gradW[c], penalty, m.W[c])
			floats.AddScaled(m.W[c], -m.LearningRate, gradW[c])
			m.B[c] -= m.LearningRate * gradB[c]
		}
	}
	return nil
}

// probabilities writes the softmax of the class scores of row into p.
func (m *LogisticRegression) probabilities(row, p []float64) {
	for c := range p {
		p[c] = floats.Dot(m.W[c], row) + m.B[c]
	}
	softmax(p)
}

// Predict returns the most probable class.
func (m *LogisticRegression) Predict(X *mat.Dense) ([]float64, error) {
	width := 0
	if len(m.W) > 0 {
		width = len(m.W[0])
	}
	x, err := predictRows(X, width)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	p := make([]float64, len(m.Classes))
	for i, row := range x {
		m.probabilities(row, p)
		out[i] = m.Classes[argmax(p)]
	}
	return out, nil
}

func softmax(v []float64) {
	mx := floats.Max(v)
	for i := range v {
		v[i] = math.Exp(v[i] - mx)
	}
	floats.Scale(1/floats.Sum(v), v)
}

func classIndex(classes []float64) map[float64]int {
	idx := make(map[float64]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	return idx
}

// Perceptron is a one-versus-rest perceptron; samples are visited in
// order and training stops after an epoch without mistakes.
type Perceptron struct {
	MaxIter int         `msgpack:"max_iter"`
	Eta0    float64     `msgpack:"eta0"`
	Classes []float64   `msgpack:"classes"`
	W       [][]float64 `msgpack:"w"`
	B       []float64   `msgpack:"b"`
}

func newPerceptron(h Hyper) (Model, error) {
	r := newHyperReader(h)
	m := &Perceptron{MaxIter: r.int("max_iter", 1000), Eta0: r.float("eta0", 1)}
	if err := r.done(); err != nil {
		return nil, err
	}
	if m.MaxIter < 1 || m.Eta0 <= 0 {
		return nil, fmt.Errorf("%w: max_iter %d, eta0 %v", ErrBadHyperparameter, m.MaxIter, m.Eta0)
	}
	return m, nil
}

// Fit runs perceptron epochs for every class.
func (m *Perceptron) Fit(X *mat.Dense, y []float64) error {
	x, err := trainingRows(X, y)
	if err != nil {
		return err
	}
	m.Classes = uniqueSorted(y)
	m.W = make([][]float64, len(m.Classes))
	m.B = make([]float64, len(m.Classes))
	for c, cls := range m.Classes {
		w := make([]float64, len(x[0]))
		var b float64
		for epoch := 0; epoch < m.MaxIter; epoch++ {
			mistakes := 0
			for i, row := range x {
				t := -1.0
				if y[i] == cls {
					t = 1
				}
				if t*(floats.Dot(w, row)+b) <= 0 {
					floats.AddScaled(w, m.Eta0*t, row)
					b += m.Eta0 * t
					mistakes++
				}
			}
			if mistakes == 0 {
				break
			}
		}
		m.W[c], m.B[c] = w, b
	}
	return nil
}

// Predict returns the class with the largest decision value.
func (m *Perceptron) Predict(X *mat.Dense) ([]float64, error) {
	width := 0
	if len(m.W) > 0 {
		width = len(m.W[0])
	}
	x, err := predictRows(X, width)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	s := make([]float64, len(m.Classes))
	for i, row := range x {
		for c := range s {
			s[c] = floats.Dot(m.W[c], row) + m.B[c]
		}
		out[i] = m.Classes[argmax(s)]
	}
	return out, nil
}
