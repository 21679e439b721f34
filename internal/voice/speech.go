package voice

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/laneguardian/laneguardian/internal/logger"
)

// Rules shape announcement text before synthesis: numbers are spelled
// out, names the engine mangles get replacement spellings, and
// attention words get a pause after them.
type Rules struct {
	Pronunciations map[string]string `yaml:"pronunciations"`
	Emphasis       []string          `yaml:"emphasis"`
}

// DefaultRules covers the names the stock timer tables use.
func DefaultRules() *Rules {
	return &Rules{
		Pronunciations: map[string]string{
			"Fangtooth": "Fang tooth",
			"Orb Prime": "Orb Prime",
		},
		Emphasis: []string{"warning", "alert", "danger", "important", "critical", "urgent"},
	}
}

// LoadRules reads speech shaping rules from a YAML file. A missing
// file means the built-in defaults.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info("no speech rules file, using defaults", "path", path)
		return DefaultRules(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read speech rules: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse speech rules: %w", err)
	}
	if r.Pronunciations == nil {
		r.Pronunciations = make(map[string]string)
	}

	logger.Info("speech rules loaded",
		"path", path,
		"pronunciations", len(r.Pronunciations),
		"emphasis", len(r.Emphasis))
	return &r, nil
}

var numberPattern = regexp.MustCompile(`\b\d+\b`)

// Shape rewrites a phrase for the synthesizer. Numbers first so
// pronunciation replacements can contain digits of their own.
func (r *Rules) Shape(text string) string {
	out := numberPattern.ReplaceAllStringFunc(text, spellNumber)

	names := make([]string, 0, len(r.Pronunciations))
	for name := range r.Pronunciations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = strings.ReplaceAll(out, name, r.Pronunciations[name])
	}

	return r.emphasize(out)
}

// emphasize inserts a short pause after attention words, which the
// synthesizer renders as stress on the word itself.
func (r *Rules) emphasize(text string) string {
	if len(r.Emphasis) == 0 {
		return text
	}

	marked := make(map[string]bool, len(r.Emphasis))
	for _, w := range r.Emphasis {
		marked[strings.ToLower(w)] = true
	}

	words := strings.Fields(text)
	for i, w := range words {
		if strings.ContainsAny(w[len(w)-1:], ",.!?") {
			continue
		}
		if marked[strings.ToLower(w)] {
			words[i] = w + ","
		}
	}
	return strings.Join(words, " ")
}

// spellNumber writes a value below one hundred out in words. Larger
// numbers read fine as digits.
func spellNumber(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil || n >= 100 {
		return digits
	}

	units := []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
	teens := []string{"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}
	tens := []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

	switch {
	case n < 10:
		return units[n]
	case n < 20:
		return teens[n-10]
	default:
		if unit := n % 10; unit != 0 {
			return tens[n/10] + "-" + units[unit]
		}
		return tens[n/10]
	}
}
