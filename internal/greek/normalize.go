// Package greek canonicalises Greek text into a comparable phonetic form.
//
// Modern Greek spells the /i/ sound at least five ways (η, ι, υ, ει, οι)
// and the /e/ and /o/ sounds two ways each (ε/αι, ο/ω). Offline speech
// recognition of degraded audio picks among those spellings almost at
// random, so contact names and transcriptions are both folded onto a single
// representative spelling before any comparison. The same [Normalize]
// function MUST be applied to stored contact names and to live
// transcriptions — any divergence silently breaks matching downstream.
//
// [Simplify] applies a second, more aggressive collapse of consonant
// clusters that recognisers confuse (voiced/unvoiced and aspirated pairs).
// It is used only inside similarity scoring, never for storage, because it
// destroys too much information to serve as a canonical form.
package greek

import "strings"

// Placeholder runes (private use area) used to shield two-syllable vowel
// pairs and the ου digraph from the collapsing rules.
const (
	holdAlphaIota   = '\uE000'
	holdEpsilonIota = '\uE001'
	holdOmicronIota = '\uE002'
	holdOmicronY    = '\uE003'
)

// accentFold maps accented and diaeresis-marked lowercase Greek vowels to
// their bare forms. The alphabet is fixed and small, so a direct lookup
// table is used instead of generic Unicode decomposition.
var accentFold = map[rune]rune{
	'ά': 'α',
	'έ': 'ε',
	'ή': 'η',
	'ί': 'ι',
	'ό': 'ο',
	'ύ': 'υ',
	'ώ': 'ω',
	'ϊ': 'ι',
	'ϋ': 'υ',
	'ΐ': 'ι',
	'ΰ': 'υ',
}

// Normalize maps any Greek text (contact name or recognition hypothesis) to
// its canonical comparable form. It is a pure, total function: any input
// string, including empty and non-Greek text, produces a result without
// error.
//
// The pipeline is order-sensitive:
//
//  1. Protect two-syllable vowel+iota pairs (αϊ, εϊ, οϊ, with or without
//     an acute on the iota) so they are not merged like true digraphs.
//  2. Lowercase, strip acute/diaeresis marks via a fixed table, and fold
//     final sigma to medial.
//  3. Collapse near-homophones: ει→ι, οι→ι, αι→ε, η→ι, υ→ι (except inside
//     ου), ω→ο, γγ→γκ.
//  4. Restore the protected pairs as bare vowel+ϊ, which renders them
//     stable under re-normalisation.
//  5. Replace every glyph outside the lowercase Greek letters (spaces
//     excepted) with a space, absorbing transcription artifacts.
//  6. Collapse runs of identical letters (recogniser stutter).
//  7. Trim and collapse whitespace.
func Normalize(s string) string {
	s = protectDisyllables(s)
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if bare, ok := accentFold[r]; ok {
			return bare
		}
		return r
	}, s)

	// Final sigma folds to medial so that cased spellings of the same name
	// converge (ToLower turns Σ into σ, typed names carry ς).
	s = strings.ReplaceAll(s, "ς", "σ")

	// Digraphs collapse before single letters so that e.g. οι becomes ι
	// rather than first losing its iota to another rule.
	s = strings.ReplaceAll(s, "ει", "ι")
	s = strings.ReplaceAll(s, "οι", "ι")
	s = strings.ReplaceAll(s, "αι", "ε")
	s = strings.ReplaceAll(s, "ου", string(holdOmicronY))
	s = strings.ReplaceAll(s, "η", "ι")
	s = strings.ReplaceAll(s, "υ", "ι")
	s = strings.ReplaceAll(s, string(holdOmicronY), "ου")
	s = strings.ReplaceAll(s, "ω", "ο")
	s = strings.ReplaceAll(s, "γγ", "γκ")

	// The single-letter rules can mint fresh digraphs (ευ → ει, αυ → αι),
	// so the digraph rules re-run until the string is a fixed point.
	// Without this, normalising an already-normalised string would keep
	// collapsing it further.
	for {
		prev := s
		s = strings.ReplaceAll(s, "ει", "ι")
		s = strings.ReplaceAll(s, "οι", "ι")
		s = strings.ReplaceAll(s, "αι", "ε")
		s = strings.ReplaceAll(s, "γγ", "γκ")
		if s == prev {
			break
		}
	}

	s = restoreDisyllables(s)
	s = stripForeign(s)
	s = collapseRuns(s)
	return strings.Join(strings.Fields(s), " ")
}

// protectDisyllables substitutes placeholders for vowel+iota pairs where
// the iota carries a diaeresis (ϊ or ΐ). Those pairs are read as two
// syllables (e.g. γαϊδούρι) and must survive digraph collapsing.
func protectDisyllables(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		if i+1 < len(runes) && (runes[i+1] == 'ϊ' || runes[i+1] == 'ΐ') {
			switch runes[i] {
			case 'α', 'Α', 'ά', 'Ά':
				out = append(out, holdAlphaIota)
				i++
				continue
			case 'ε', 'Ε', 'έ', 'Έ':
				out = append(out, holdEpsilonIota)
				i++
				continue
			case 'ο', 'Ο', 'ό', 'Ό':
				out = append(out, holdOmicronIota)
				i++
				continue
			}
		}
		out = append(out, runes[i])
	}
	return string(out)
}

// restoreDisyllables expands placeholders back to their literal two-letter
// forms. The diaeresis is kept so the pair is protected again on a second
// pass, keeping Normalize idempotent.
func restoreDisyllables(s string) string {
	s = strings.ReplaceAll(s, string(holdAlphaIota), "αϊ")
	s = strings.ReplaceAll(s, string(holdEpsilonIota), "εϊ")
	s = strings.ReplaceAll(s, string(holdOmicronIota), "οϊ")
	return s
}

// stripForeign replaces every rune outside the lowercase Greek letters
// (spaces excepted) with a space.
func stripForeign(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'α' && r <= 'ω' || r == 'ϊ' || r == ' ' {
			return r
		}
		return ' '
	}, s)
}

// collapseRuns reduces any run of two or more identical runes to a single
// occurrence.
func collapseRuns(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// simplifyPairs collapses residual near-homophone clusters that survive
// Normalize: prenasalised stops, affricates, and aspirated consonants that
// recognisers routinely swap for their plain counterparts. Order matters —
// two-letter clusters fold before single letters.
var simplifyPairs = []struct{ from, to string }{
	{"γκ", "κ"},
	{"μπ", "π"},
	{"ντ", "τ"},
	{"τσ", "σ"},
	{"τζ", "σ"},
	{"θ", "τ"},
	{"φ", "π"},
	{"χ", "κ"},
	{"ς", "σ"},
}

// Simplify applies the matcher's second-stage phonetic collapse to an
// already-normalized string. Like [Normalize] it is pure and total.
func Simplify(s string) string {
	for _, p := range simplifyPairs {
		s = strings.ReplaceAll(s, p.from, p.to)
	}
	return s
}
