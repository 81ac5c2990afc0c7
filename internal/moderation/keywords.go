package moderation

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_keywords.yaml
var defaultKeywordsYAML []byte

// KeywordList is the YAML shape of a keyword file
type KeywordList struct {
	Categories []KeywordCategory `yaml:"categories"`
}

type KeywordCategory struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

type compiledCategory struct {
	name string
	re   *regexp.Regexp
}

// Keywords flags messages containing any listed phrase
type Keywords struct {
	categories []compiledCategory
}

// DefaultKeywords returns the built-in list
func DefaultKeywords() (*Keywords, error) {
	return ParseKeywords(defaultKeywordsYAML)
}

// LoadKeywords reads a YAML keyword file. An empty path means the built-in list.
func LoadKeywords(path string) (*Keywords, error) {
	if path == "" {
		return DefaultKeywords()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword file: %w", err)
	}
	return ParseKeywords(data)
}

// ParseKeywords compiles a YAML keyword list
func ParseKeywords(data []byte) (*Keywords, error) {
	var list KeywordList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse keyword list: %w", err)
	}

	k := &Keywords{}
	for _, cat := range list.Categories {
		var alts []string
		for _, p := range cat.Patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			alts = append(alts, phrasePattern(p))
		}
		if len(alts) == 0 {
			continue
		}
		if cat.Name == "" {
			return nil, fmt.Errorf("parse keyword list: category without a name")
		}
		re, err := regexp.Compile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
		if err != nil {
			return nil, fmt.Errorf("compile category %s: %w", cat.Name, err)
		}
		k.categories = append(k.categories, compiledCategory{name: cat.Name, re: re})
	}
	return k, nil
}

// phrasePattern quotes phrase, lets its words be separated by any whitespace
// and anchors each end to a word boundary only where that end is a word
// character, so phrases such as "$$$" or "c++" can still match.
func phrasePattern(phrase string) string {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	pattern := strings.Join(words, `\s+`)
	if isWordByte(phrase[0]) {
		pattern = `\b` + pattern
	}
	if isWordByte(phrase[len(phrase)-1]) {
		pattern += `\b`
	}
	return pattern
}

// isWordByte matches the ASCII class RE2 uses for \b
func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func (k *Keywords) Name() string {
	return "keywords"
}

// Moderate flags text matching any category. The reason names the first
// matching category and phrase.
func (k *Keywords) Moderate(_ context.Context, text string) (Verdict, error) {
	var v Verdict
	for _, cat := range k.categories {
		match := cat.re.FindString(text)
		if match == "" {
			continue
		}
		if !v.Flagged {
			v.Flagged = true
			v.Reason = fmt.Sprintf("%s: %s", cat.name, strings.Join(strings.Fields(strings.ToLower(match)), " "))
			v.Provider = k.Name()
		}
		v.Categories = append(v.Categories, cat.name)
	}
	return v, nil
}
