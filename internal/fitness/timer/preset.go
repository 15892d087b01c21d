package timer

import (
	"fmt"
	"time"
)

// Preset is an interval workout. Work and Rest are in seconds.
type Preset struct {
	Name   string `json:"name"`
	Work   int    `json:"work"`
	Rest   int    `json:"rest"`
	Rounds int    `json:"rounds"`
}

var presets = map[string]Preset{
	"tabata": {Name: "tabata", Work: 20, Rest: 10, Rounds: 8},
	"hiit":   {Name: "hiit", Work: 45, Rest: 15, Rounds: 10},
	"custom": {Name: "custom", Work: 30, Rest: 30, Rounds: 5},
}

func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

func PresetNames() []string {
	return []string{"tabata", "hiit", "custom"}
}

// Total is the length of the preset in seconds, there is no rest after the last round.
func (p Preset) Total() int {
	if p.Rounds <= 0 {
		return 0
	}
	return p.Work*p.Rounds + p.Rest*(p.Rounds-1)
}

func (p Preset) Duration() time.Duration {
	return time.Duration(p.Total()) * time.Second
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
