package workouts

import (
	"fmt"
)

// Metric selects which workout quantity a goal or challenge accumulates.
type Metric int

const (
	MetricCount Metric = iota
	MetricDuration
	MetricCalories
)

var metricNames = map[Metric]string{
	MetricCount:    "count",
	MetricDuration: "duration",
	MetricCalories: "calories",
}

func ParseMetric(s string) (Metric, error) {
	for m, name := range metricNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric: %q", s)
}

func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

// Amount is what a single workout contributes to the metric.
func (m Metric) Amount(w Workout) int {
	switch m {
	case MetricCount:
		return 1
	case MetricDuration:
		return w.Duration
	case MetricCalories:
		return w.Calories
	default:
		return 0
	}
}

func (m Metric) MarshalText() ([]byte, error) {
	name, ok := metricNames[m]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %d", int(m))
	}
	return []byte(name), nil
}

func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
