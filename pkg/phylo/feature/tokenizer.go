package feature

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Tokenizer normalizes raw description text and splits it into tokens.
// Word characters are letters, digits and hyphens; everything else is
// a separator. Normalization lowercases and strips diacritics so that
// "Telepräsenz" and "telepresenz" compare equal.
type Tokenizer struct {
	stopterms map[string]struct{}
}

// NewTokenizer creates a tokenizer with the given stop-term list. A nil
// list selects the built-in default.
func NewTokenizer(stopterms []string) *Tokenizer {
	if stopterms == nil {
		stopterms = DefaultStopterms()
	}
	stops := make(map[string]struct{}, len(stopterms))
	for _, w := range stopterms {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopterms: stops}
}

// Normalize lowercases the text, strips combining marks, keeps word
// characters and collapses every separator run into a single space.
// The result is the matching text: a space-joined sequence of cleaned
// words, suitable for word-boundary signal lookup.
func (t *Tokenizer) Normalize(text string) string {
	return strings.Join(t.Words(text), " ")
}

// Words splits text into cleaned, lowercased words without any
// filtering. Stop terms survive here; phrase recognition needs them.
func (t *Tokenizer) Words(text string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if w := cleanWord(current.String()); w != "" {
			words = append(words, w)
		}
		current.Reset()
	}

	for _, r := range norm.NFD.String(text) {
		if unicode.In(r, unicode.Mn) {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return words
}

// Filter drops stop terms, single-character tokens and purely numeric
// tokens. Mixed tokens like "gpt-4" or "mk3" are kept.
func (t *Tokenizer) Filter(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) <= 1 || isNumericOnly(tok) {
			continue
		}
		if _, stop := t.stopterms[tok]; stop {
			continue
		}
		kept = append(kept, tok)
	}
	return kept
}

// Tokenize is Words followed by Filter, without phrase folding.
func (t *Tokenizer) Tokenize(text string) []string {
	return t.Filter(t.Words(text))
}

// IsStopterm reports whether the token is on the stop list.
func (t *Tokenizer) IsStopterm(token string) bool {
	_, ok := t.stopterms[strings.ToLower(token)]
	return ok
}

// AddStopterm adds a word to the stop list.
func (t *Tokenizer) AddStopterm(word string) {
	t.stopterms[strings.ToLower(word)] = struct{}{}
}

// RemoveStopterm removes a word from the stop list.
func (t *Tokenizer) RemoveStopterm(word string) {
	delete(t.stopterms, strings.ToLower(word))
}

// cleanWord strips leading/trailing hyphens and collapses hyphen runs.
func cleanWord(word string) string {
	word = strings.Trim(word, "-")
	for strings.Contains(word, "--") {
		word = strings.ReplaceAll(word, "--", "-")
	}
	return word
}

// isNumericOnly returns true if the token contains only digits and
// hyphens.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}
