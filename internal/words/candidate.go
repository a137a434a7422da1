package words

import (
	"strconv"
	"strings"
)

// Candidate is one entry returned by the word service.
type Candidate struct {
	Word  string   `json:"word"`
	Score int      `json:"score,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Frequency reads the first "f:<number>" tag; missing or malformed tags count as 0.
func (c Candidate) Frequency() float64 {
	for _, tag := range c.Tags {
		raw, ok := strings.CutPrefix(tag, "f:")
		if !ok {
			continue
		}
		freq, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0
		}
		return freq
	}
	return 0
}

// DefaultFallbackWords is the built-in list used when nothing better is available.
func DefaultFallbackWords() []string {
	list := []string{"Adventure", "Brave", "Crystal", "Dance", "Energy"}
	for len(list) < PoolSize {
		list = append(list, "Practice")
	}
	return list
}
