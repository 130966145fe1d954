// Package config loads and saves the YAML parameter bundle of a clustering
// pipeline run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/eventcluster/classify"
	"github.com/katalvlaran/eventcluster/events"
	"github.com/katalvlaran/eventcluster/linkage"
	"github.com/katalvlaran/eventcluster/modules"
	"github.com/katalvlaran/eventcluster/similarity"
)

// ErrInvalid indicates a configuration value outside its allowed set.
var ErrInvalid = errors.New("config: invalid value")

// Pipeline is the complete parameter set of one run.
type Pipeline struct {
	CacheDir   string           `yaml:"cache_dir"`
	Distance   DistanceConfig   `yaml:"distance"`
	Linkage    LinkageConfig    `yaml:"linkage"`
	TwoStep    TwoStepConfig    `yaml:"two_step"`
	Modules    ModulesConfig    `yaml:"modules"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// DistanceConfig selects the correlation metric.
type DistanceConfig struct {
	Type   similarity.Type   `yaml:"type"`
	Params similarity.Params `yaml:"params"`
}

// LinkageConfig drives GetBarycenters.
type LinkageConfig struct {
	Method         linkage.Method            `yaml:"method"`
	Metric         linkage.Metric            `yaml:"metric"`
	Criterion      linkage.Criterion         `yaml:"criterion"`
	Cutoff         float64                   `yaml:"cutoff"`
	DefaultCluster int                       `yaml:"default_cluster"`
	Cut            linkage.CutOptions        `yaml:"cut"`
	Barycenter     linkage.BarycenterOptions `yaml:"barycenter"`
}

// TwoStepConfig enables per-group clustering followed by a pooled stage.
type TwoStepConfig struct {
	Enabled          bool    `yaml:"enabled"`
	GroupColumn      string  `yaml:"group_column"`
	StepOneThreshold float64 `yaml:"step_one_threshold"`
	StepTwoThreshold float64 `yaml:"step_two_threshold"`
}

// ModulesConfig enables the similarity graph and its modules.
type ModulesConfig struct {
	Enabled            bool                         `yaml:"enabled"`
	Bounds             modules.Bounds               `yaml:"bounds,flow"`
	ExcludeCrossModule bool                         `yaml:"exclude_cross_module"`
	Similarity         similarity.SimilarityOptions `yaml:"similarity"`
}

// ClassifierConfig names a model and how to train and score it.
type ClassifierConfig struct {
	Name     string                   `yaml:"name"`
	Hyper    classify.Hyper           `yaml:"hyper,omitempty"`
	Split    classify.SplitOptions    `yaml:"split"`
	Evaluate classify.EvaluateOptions `yaml:"evaluate"`
}

// Default returns the package defaults of every stage.
func Default() *Pipeline {
	get := linkage.DefaultGetOptions()
	two := linkage.DefaultTwoStepOptions()

	return &Pipeline{
		Distance: DistanceConfig{
			Type:   get.DistanceType,
			Params: get.DistanceParams,
		},
		Linkage: LinkageConfig{
			Method:         get.Method,
			Metric:         get.Metric,
			Criterion:      get.Criterion,
			Cutoff:         2,
			DefaultCluster: events.DefaultCluster,
			Cut:            get.Cut,
			Barycenter:     get.Barycenter,
		},
		TwoStep: TwoStepConfig{
			GroupColumn:      two.GroupColumn,
			StepOneThreshold: two.StepOneThreshold,
			StepTwoThreshold: two.StepTwoThreshold,
		},
		Modules: ModulesConfig{
			Bounds:     modules.DefaultBounds(),
			Similarity: similarity.SimilarityOptions{Method: similarity.Exponential},
		},
		Classifier: ClassifierConfig{
			Name:     "RandomForestClassifier",
			Split:    classify.DefaultSplitOptions(),
			Evaluate: classify.DefaultEvaluateOptions(),
		},
	}
}

// Load reads path over the defaults, so omitted keys keep their default.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// LoadOrDefault loads path, or returns the defaults when path is empty or
// missing.
func LoadOrDefault(path string) (*Pipeline, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(path)
}

// Save writes the configuration to path, creating its directory.
func (p *Pipeline) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the enumerated values.
func (p *Pipeline) Validate() error {
	if !slices.Contains(similarity.Types(), p.Distance.Type) {
		return fmt.Errorf("%w: distance type %q, choose one of %v", ErrInvalid, p.Distance.Type, similarity.Types())
	}
	if !slices.Contains(linkage.Methods(), p.Linkage.Method) {
		return fmt.Errorf("%w: linkage method %q, choose one of %v", ErrInvalid, p.Linkage.Method, linkage.Methods())
	}
	if p.Linkage.Metric != linkage.Euclidean && p.Linkage.Metric != linkage.Precomputed {
		return fmt.Errorf("%w: linkage metric %q", ErrInvalid, p.Linkage.Metric)
	}
	if err := p.Linkage.Criterion.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if b := p.Modules.Bounds; b[0] > b[1] {
		return fmt.Errorf("%w: module bounds %v are reversed", ErrInvalid, b)
	}
	if p.Classifier.Name != "" && !slices.Contains(classify.AvailableModels(), p.Classifier.Name) {
		return fmt.Errorf("%w: classifier %q", ErrInvalid, p.Classifier.Name)
	}

	return nil
}

// GetOptions returns the GetBarycenters options of the run.
func (p *Pipeline) GetOptions() linkage.GetOptions {
	o := linkage.DefaultGetOptions()
	o.Criterion = p.Linkage.Criterion
	o.DefaultCluster = p.Linkage.DefaultCluster
	o.DistanceType = p.Distance.Type
	o.DistanceParams = p.Distance.Params
	o.Method = p.Linkage.Method
	o.Metric = p.Linkage.Metric
	o.Cut = p.Linkage.Cut
	o.Barycenter = p.Linkage.Barycenter

	return o
}

// TwoStepOptions returns the TwoStep options of the run; both stages share
// the linkage settings.
func (p *Pipeline) TwoStepOptions() linkage.TwoStepOptions {
	o := linkage.DefaultTwoStepOptions()
	o.GroupColumn = p.TwoStep.GroupColumn
	o.StepOneThreshold = p.TwoStep.StepOneThreshold
	o.StepTwoThreshold = p.TwoStep.StepTwoThreshold
	o.StepOne = p.GetOptions()
	o.StepTwo = p.GetOptions()
	o.DefaultCluster = p.Linkage.DefaultCluster

	return o
}
