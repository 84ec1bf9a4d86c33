// Package intent maps a normalized Greek utterance to a device command.
//
// Classification is fuzzy on purpose: the recogniser routinely clips or
// mangles the command word ("ισι" for "κλισι", "αλεσε" for "καλεσε"), so
// every comparison goes through the same edit-distance similarity the
// contact matcher uses, against a small vocabulary of canonical command
// words and known misrecognitions.
package intent

import (
	"strings"

	"github.com/t4paN/ava/internal/greek"
	"github.com/t4paN/ava/internal/match"
)

// Intent is the recognized command category.
type Intent int

const (
	// None means no known command was recognized.
	None Intent = iota
	// Call asks to dial a contact; the remainder carries the spoken name.
	Call
	// Flashlight toggles the torch.
	Flashlight
	// Radio toggles the FM radio.
	Radio
)

// String implements fmt.Stringer.
func (i Intent) String() string {
	switch i {
	case Call:
		return "call"
	case Flashlight:
		return "flashlight"
	case Radio:
		return "radio"
	default:
		return "none"
	}
}

// Vocabulary lists the trigger words per intent, in display form. New
// normalizes every entry, so vocabularies can be written (and configured)
// with accents and capitals.
type Vocabulary struct {
	Call       []string
	Flashlight []string
	Radio      []string
}

// DefaultVocabulary returns the builtin Greek trigger words, including
// misrecognitions observed often enough to be worth listing outright.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Call: []string{
			"κάλεσε", "καλέστε", "κλήση", "κλήσε",
			"τηλεφώνησε", "πάρε",
			// Common recogniser mangles.
			"άλεσε", "κάλεσαι",
		},
		Flashlight: []string{"φακός", "φακό", "φως"},
		Radio:      []string{"ράδιο", "ραδιόφωνο"},
	}
}

// stopwords are articles and fillers stripped from the remainder of a call
// command ("κάλεσε τον Δημήτρη" → "διμιτρι"). Already in normalized form.
var stopwords = map[string]bool{
	"ο": true, "ι": true, "το": true, "τον": true, "τιν": true, "τι": true,
	"του": true, "τισ": true, "στο": true, "στον": true, "στιν": true,
	"σε": true, "με": true, "μου": true,
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThreshold sets the minimum similarity for a token to count as a
// trigger word. Default: 0.6.
func WithThreshold(t float64) Option {
	return func(c *Classifier) { c.threshold = t }
}

// Classifier recognizes command intents in normalized utterances. Safe for
// concurrent use after construction.
type Classifier struct {
	call       []string
	flashlight []string
	radio      []string
	threshold  float64
}

// New builds a Classifier over vocab, normalizing every entry.
func New(vocab Vocabulary, opts ...Option) *Classifier {
	c := &Classifier{
		call:       normalizeAll(vocab.Call),
		flashlight: normalizeAll(vocab.Flashlight),
		radio:      normalizeAll(vocab.Radio),
		threshold:  0.6,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := greek.Normalize(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Classify inspects a normalized utterance and returns the recognized
// intent plus, for Call, the remainder of the utterance with the trigger
// word and filler articles removed. The remainder is empty for all other
// intents and for a call command with no name spoken.
//
// A single token is compared against the flashlight and radio vocabularies
// only; a lone unknown word is never a call. With two or more tokens the
// leading token is tried as a call trigger, then the leading two joined (the
// recogniser sometimes splits the trigger), and when neither matches the
// utterance is still treated as a call with the leading token dropped, so
// a mangled trigger reaches the name matcher instead of being discarded.
func (c *Classifier) Classify(text string) (Intent, string) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return None, ""
	}

	if len(tokens) == 1 {
		if c.matches(tokens[0], c.flashlight) {
			return Flashlight, ""
		}
		if c.matches(tokens[0], c.radio) {
			return Radio, ""
		}
		return None, ""
	}

	if c.matches(tokens[0], c.call) {
		return Call, c.remainder(tokens[1:])
	}
	if c.matches(tokens[0]+tokens[1], c.call) {
		return Call, c.remainder(tokens[2:])
	}
	return Call, c.remainder(tokens[1:])
}

func (c *Classifier) matches(tok string, vocab []string) bool {
	for _, w := range vocab {
		if match.Similarity(tok, w) >= c.threshold {
			return true
		}
	}
	return false
}

func (c *Classifier) remainder(tokens []string) string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !stopwords[t] {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}
