package feature

import (
	"strings"

	"github.com/phylobot/phylo/pkg/phylo/lexicon"
)

// Extraction is the per-record output of the extraction stage: the
// normalized matching text used for signal lookup, and the folded,
// filtered tokens that feed corpus statistics and feature vectors.
type Extraction struct {
	Text   string
	Tokens []string
}

// Extractor turns raw record text into an Extraction. The stages run
// in a fixed order: character normalization, synonym canonicalization,
// phrase folding, then stop-term filtering. Canonicalization happens
// before folding so a registry phrase written over a synonym's
// canonical form still folds.
type Extractor struct {
	tokenizer *Tokenizer
	folder    *PhraseFolder
	lexicon   *lexicon.Lexicon
}

// NewExtractor creates an extractor. folder may be nil when no
// multi-word signals exist.
func NewExtractor(tok *Tokenizer, folder *PhraseFolder) *Extractor {
	return &Extractor{tokenizer: tok, folder: folder}
}

// SetLexicon assigns a synonym lexicon. When set, variant spellings
// are rewritten to their canonical forms before matching, in both the
// text and the tokens.
func (e *Extractor) SetLexicon(lex *lexicon.Lexicon) {
	e.lexicon = lex
}

// Tokenizer exposes the underlying tokenizer.
func (e *Extractor) Tokenizer() *Tokenizer {
	return e.tokenizer
}

// Extract processes one record's analysis text.
func (e *Extractor) Extract(text string) Extraction {
	words := e.tokenizer.Words(text)
	if e.lexicon != nil {
		words = e.lexicon.Canonicalize(words)
	}
	matching := strings.Join(words, " ")
	if e.folder != nil {
		words = e.folder.Fold(words)
	}
	return Extraction{
		Text:   matching,
		Tokens: e.tokenizer.Filter(words),
	}
}

// NormalizeTerm runs a registry signal or query term through the same
// normalization pipeline as record text, so lookups compare like with
// like.
func (e *Extractor) NormalizeTerm(term string) string {
	words := e.tokenizer.Words(term)
	if e.lexicon != nil {
		words = e.lexicon.Canonicalize(words)
	}
	return strings.Join(words, " ")
}

// ContainsTerm reports whether a normalized term occurs in normalized
// matching text at word boundaries. Both sides must already be in
// Normalize form; the text is a space-joined word sequence, so a
// padded substring check is an exact word-boundary match.
func ContainsTerm(text, term string) bool {
	if term == "" || text == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+term+" ")
}
