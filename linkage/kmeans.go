package linkage

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/eventcluster/classify"
	"github.com/katalvlaran/eventcluster/events"
)

// KMeansLookup partitions the rows of embedding (one per event, in row
// order) into k clusters and returns the event id → cluster table. It is
// the flat alternative to GetBarycenters when a fixed cluster count is
// wanted instead of a cutoff.
func (l *Linker) KMeansLookup(evs *events.Events, embedding *mat.Dense, k int, seed int64, def int) (*events.LookupTable, error) {
	if evs == nil || evs.Len() == 0 || embedding == nil || embedding.IsEmpty() {
		return nil, fmt.Errorf("%w: no events", ErrInvalidInput)
	}
	if r, _ := embedding.Dims(); r != evs.Len() {
		return nil, fmt.Errorf("%w: embedding has %d rows for %d events", ErrInvalidInput, r, evs.Len())
	}

	m, err := classify.Construct("KMeans", classify.Hyper{"n_clusters": k, "random_state": int(seed)})
	if err != nil {
		return nil, err
	}
	if err := m.Fit(embedding, nil); err != nil {
		return nil, err
	}
	pred, err := m.Predict(embedding)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(pred))
	for i, p := range pred {
		labels[i] = int(p)
	}
	l.logger.Infow("k-means labelled events", "events", evs.Len(), "clusters", k)

	return evs.CreateLookupTable(labels, def)
}
