package scenegen

import (
	"math/rand"
)

// TimeWindow One gaussian component of a departure-time distribution.
type TimeWindow struct {
	MeanHour   float64 `yaml:"mean_hour" json:"mean_hour" validate:"gte=0,lte=24"`
	StddevHour float64 `yaml:"stddev_hour" json:"stddev_hour" validate:"gte=0"`
	Weight     float64 `yaml:"weight" json:"weight" validate:"gt=0"`
}

// TimeOfDayDistribution Mixture of gaussian windows a departure time is
// drawn from.
type TimeOfDayDistribution []TimeWindow

var defaultTimeOfDay = map[TripPurpose]TimeOfDayDistribution{
	PURPOSE_WORK: {
		{MeanHour: 8.0, StddevHour: 1.0, Weight: 0.8},
		{MeanHour: 14.0, StddevHour: 1.5, Weight: 0.2},
	},
	PURPOSE_SCHOOL: {
		{MeanHour: 8.0, StddevHour: 0.5, Weight: 1.0},
	},
	PURPOSE_SHOP: {
		{MeanHour: 11.0, StddevHour: 2.0, Weight: 0.5},
		{MeanHour: 17.0, StddevHour: 1.5, Weight: 0.5},
	},
	PURPOSE_LEISURE: {
		{MeanHour: 18.0, StddevHour: 2.0, Weight: 1.0},
	},
	PURPOSE_HOME: {
		{MeanHour: 17.5, StddevHour: 1.5, Weight: 1.0},
	},
}

// DrawSeconds draws a departure time in seconds after midnight, clamped to
// the day.
func (distribution TimeOfDayDistribution) DrawSeconds(r *rand.Rand) int {
	if len(distribution) == 0 {
		return 0
	}
	weights := make([]float64, len(distribution))
	for i := range distribution {
		weights[i] = distribution[i].Weight
	}
	window := distribution[weightedIndex(r, weights)]
	hour := window.MeanHour + r.NormFloat64()*window.StddevHour
	seconds := int(hour * 3600)
	if seconds < 0 {
		seconds = 0
	}
	if seconds > 86399 {
		seconds = 86399
	}
	return seconds
}
