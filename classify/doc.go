// Package classify trains and evaluates models that predict event labels
// from an embedding.
//
// A Discriminator walks a small state machine:
//
//	Unsplit → Split → Trained → Evaluated
//
// SplitDataset cuts the embedding by position (never at random) so that
// temporal order survives, optionally normalizes it and optionally
// balances each side to its minority class. TrainClassifier looks the
// model name up in a fixed registry of families (cluster, ensemble,
// gaussian_process, linear_model, neighbors, neural_network, tree) and
// builds it from a hyperparameter map; a family that rejects the
// hyperparameters is skipped and the next one tried. Evaluate reports
// confusion matrices and scores for both sides of the split.
//
// Every model is a plain struct with exported fields, so fitted models can
// be persisted with SaveModel and restored with LoadModel.
package classify
