package scenegen

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config Recognized pipeline options. Zero values are filled with defaults
// by applyDefaults; LoadConfig validates the final struct.
type Config struct {
	// Seed drives all randomness of the run.
	Seed uint64 `yaml:"seed"`
	// Workers is the parallelism of record/zone/household stages
	// (0 = sequential). Output never depends on it.
	Workers int `yaml:"workers" validate:"gte=0"`

	// MatchRadiusByKind is the conflation search radius (meters) per record
	// kind tag (collision, transit_stop, poi).
	MatchRadiusByKind map[string]float64 `yaml:"match_radius_by_kind" validate:"dive,gt=0"`
	// AmbiguityTieBand is the relative score gap below the best candidate
	// that still counts as a tie.
	AmbiguityTieBand float64 `yaml:"ambiguity_tie_band" validate:"gte=0,lt=1"`
	// MinConfidence is the minimum candidate score for a match.
	MinConfidence float64 `yaml:"min_confidence" validate:"gte=0"`

	// QualitySkipThreshold is the max tolerable skip rate per adapter.
	QualitySkipThreshold float64 `yaml:"quality_skip_threshold" validate:"gte=0,lte=1"`

	// DestinationRadius is the travel-plausible search radius (meters) for
	// trip destinations.
	DestinationRadius float64 `yaml:"destination_search_radius" validate:"gte=0"`
	// ReachabilityCheck drops trips whose destination is not reachable from
	// the origin over the edge graph.
	ReachabilityCheck bool `yaml:"reachability_check"`

	ScenarioName string `yaml:"scenario_name"`

	// TimeOfDay overrides departure-time mixtures per purpose tag.
	TimeOfDay map[string]TimeOfDayDistribution `yaml:"time_of_day" validate:"dive,dive"`
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.MatchRadiusByKind == nil {
		cfg.MatchRadiusByKind = map[string]float64{}
	}
	defaults := map[string]float64{
		"collision":    25.0,
		"transit_stop": 50.0,
		"poi":          100.0,
	}
	for kind, radius := range defaults {
		if _, ok := cfg.MatchRadiusByKind[kind]; !ok {
			cfg.MatchRadiusByKind[kind] = radius
		}
	}
	if cfg.AmbiguityTieBand == 0 {
		cfg.AmbiguityTieBand = 0.05
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = 1e-4
	}
	if cfg.QualitySkipThreshold == 0 {
		cfg.QualitySkipThreshold = 0.1
	}
	if cfg.DestinationRadius == 0 {
		cfg.DestinationRadius = 5000.0
	}
	if cfg.ScenarioName == "" {
		cfg.ScenarioName = "scenario"
	}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read config")
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "Can't decode config")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	for kind := range cfg.MatchRadiusByKind {
		if _, ok := recordKindByTag[kind]; !ok {
			return errors.Errorf("invalid config: unknown record kind '%s'", kind)
		}
	}
	for purpose := range cfg.TimeOfDay {
		if _, ok := purposeByTag[purpose]; !ok {
			return errors.Errorf("invalid config: unknown trip purpose '%s'", purpose)
		}
	}
	return nil
}

func (cfg *Config) radiusByKind() map[RecordKind]float64 {
	radii := make(map[RecordKind]float64)
	for tag, radius := range cfg.MatchRadiusByKind {
		radii[recordKindByTag[tag]] = radius
	}
	return radii
}

var purposeByTag = map[string]TripPurpose{
	"work":    PURPOSE_WORK,
	"school":  PURPOSE_SCHOOL,
	"shop":    PURPOSE_SHOP,
	"leisure": PURPOSE_LEISURE,
	"home":    PURPOSE_HOME,
}

func (cfg *Config) timeOfDay() map[TripPurpose]TimeOfDayDistribution {
	distributions := make(map[TripPurpose]TimeOfDayDistribution)
	for purpose, distribution := range defaultTimeOfDay {
		distributions[purpose] = distribution
	}
	for tag, distribution := range cfg.TimeOfDay {
		distributions[purposeByTag[tag]] = distribution
	}
	return distributions
}
