package dtw

import (
	"math"

	"github.com/katalvlaran/eventcluster/internal/rng"
)

// DBAOptions configures DTW Barycenter Averaging.
//
//   - InitialSamples: candidates considered for the seed average; 0 picks
//     all series when fewer than 11, else int(InitFraction·len).
//   - InitFraction:   fraction used when InitialSamples is 0 (default 0.1).
//   - MaxIterations:  refinement rounds (default 100).
//   - Threshold:      stop once no sample of the average moves more than this.
//   - Penalty, Psi:   forwarded to the alignment.
//   - Seed:           candidate sampling seed (0 ⇒ default stream).
type DBAOptions struct {
	InitialSamples int
	InitFraction   float64
	MaxIterations  int
	Threshold      float64
	Penalty        float64
	Psi            int
	Seed           int64
}

// DefaultDBAOptions returns the standard barycenter settings.
func DefaultDBAOptions() DBAOptions {
	return DBAOptions{InitFraction: 0.1, MaxIterations: 100, Threshold: 1e-5}
}

// DBAResult is the barycenter of a set of series.
type DBAResult struct {
	Barycenter []float64
	Iterations int
	Converged  bool
}

// DBA computes the DTW barycenter of sequences.
//
// Steps:
//  1. Seed: draw InitialSamples candidates; the one with the lowest summed
//     DTW distance to every sequence is the initial average.
//  2. Repeat: align every sequence to the average, replace each average
//     sample by the mean of the samples warped onto it.
//  3. Stop after MaxIterations or once the largest change is below Threshold.
//
// A single sequence is its own barycenter (zero iterations).
func DBA(sequences [][]float64, opts DBAOptions) (DBAResult, error) {
	if len(sequences) == 0 {
		return DBAResult{}, ErrEmptyInput
	}
	for _, s := range sequences {
		if len(s) == 0 {
			return DBAResult{}, ErrEmptyInput
		}
	}
	if opts.MaxIterations < 0 || opts.Threshold < 0 || opts.Psi < 0 || opts.Penalty < 0 {
		return DBAResult{}, ErrBadInput
	}
	if len(sequences) == 1 {
		return DBAResult{Barycenter: append([]float64(nil), sequences[0]...), Converged: true}, nil
	}

	align := Options{
		Window:       -1,
		SlopePenalty: opts.Penalty,
		Psi:          opts.Psi,
		ReturnPath:   true,
		MemoryMode:   FullMatrix,
		Metric:       Euclidean,
	}

	avg, err := seedAverage(sequences, opts, align)
	if err != nil {
		return DBAResult{}, err
	}

	res := DBAResult{}
	for it := 0; it < opts.MaxIterations; it++ {
		next, err := dbaStep(sequences, avg, align)
		if err != nil {
			return DBAResult{}, err
		}
		res.Iterations = it + 1
		shift := maxShift(avg, next)
		avg = next
		if shift <= opts.Threshold {
			res.Converged = true
			break
		}
	}
	res.Barycenter = avg

	return res, nil
}

// seedAverage picks the medoid of a random candidate subset.
func seedAverage(sequences [][]float64, opts DBAOptions, align Options) ([]float64, error) {
	n := len(sequences)
	k := opts.InitialSamples
	if k <= 0 {
		frac := opts.InitFraction
		if frac <= 0 {
			frac = 0.1
		}
		k = n
		if n >= 11 {
			k = int(frac * float64(n))
		}
	}
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	candidates, err := rng.Choice(rng.Range(n), k, rng.New(opts.Seed))
	if err != nil {
		return nil, err
	}
	align.ReturnPath = false
	align.MemoryMode = TwoRows

	best, bestDist := candidates[0], math.Inf(1)
	for _, c := range candidates {
		var sum float64
		for j := range sequences {
			if j == c {
				continue
			}
			d, _, err := DTW(sequences[c], sequences[j], &align)
			if err != nil {
				return nil, err
			}
			sum += d
		}
		if sum < bestDist {
			best, bestDist = c, sum
		}
	}

	return append([]float64(nil), sequences[best]...), nil
}

// dbaStep performs one averaging round.
func dbaStep(sequences [][]float64, avg []float64, align Options) ([]float64, error) {
	sum := make([]float64, len(avg))
	cnt := make([]int, len(avg))
	for _, s := range sequences {
		_, path, err := DTW(avg, s, &align)
		if err != nil {
			return nil, err
		}
		for _, c := range path {
			sum[c.I] += s[c.J]
			cnt[c.I]++
		}
	}

	next := make([]float64, len(avg))
	for i := range next {
		if cnt[i] == 0 {
			next[i] = avg[i]
			continue
		}
		next[i] = sum[i] / float64(cnt[i])
	}

	return next, nil
}

func maxShift(a, b []float64) float64 {
	var m float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > m {
			m = d
		}
	}
	return m
}
