package verification

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultPatternSources cover pharma, gambling, get-rich-quick, SEO spam and
// crypto vocabulary. Each is compiled case-insensitively.
var defaultPatternSources = []string{
	`\b(viagra|cialis|levitra|xanax|valium|tramadol|phentermine|oxycodone)\b`,
	`\b(buy|cheap|discount)\s+(pills|meds|medication|pharmacy)\b`,
	`\bonline\s+(casino|gambling|betting|poker|slots)\b`,
	`\b(sports\s*betting|bet\s+now|free\s+spins|jackpot\s+bonus)\b`,
	`\b(make|earn)\s+\$?\d[\d,]*\s*(per|a|every)\s+(day|week|hour)\b`,
	`\b(get\s+rich\s+quick|double\s+your\s+(money|income)|work\s+from\s+home\s+opportunity)\b`,
	`\bseo\s+(services?|expert|agency|package)\b`,
	`\b(buy\s+)?backlinks?\b|\b(rank|ranking)\s+(#?1|first)\s+on\s+google\b|\bfirst\s+page\s+of\s+google\b`,
	`\b(bitcoin|cryptocurrency|crypto\s+currency|forex\s+trading|binary\s+options|nft\s+drop)\b`,
}

// DefaultPatterns compiles the built-in spam vocabulary.
func DefaultPatterns() ([]*regexp.Regexp, error) {
	return CompilePatterns(defaultPatternSources)
}

// CompilePatterns compiles each source case-insensitively.
func CompilePatterns(sources []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			return nil, fmt.Errorf("compile spam pattern %q: %w", src, err)
		}
		out = append(out, re)
	}
	return out, nil
}

type patternsFile struct {
	Patterns []string `yaml:"patterns"`
}

// LoadPatternsFile replaces the built-in list with the patterns in a YAML
// file of the form `patterns: [...]`.
func LoadPatternsFile(path string) ([]*regexp.Regexp, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns file: %w", err)
	}
	var file patternsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse patterns file: %w", err)
	}
	if len(file.Patterns) == 0 {
		return nil, fmt.Errorf("patterns file %s defines no patterns", path)
	}
	return CompilePatterns(file.Patterns)
}
