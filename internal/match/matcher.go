// Package match scores a normalized utterance remainder against a contact
// list and decides between a confident match, an ambiguous shortlist, and no
// match at all.
//
// Scoring is a weighted blend of three comparisons: an order-sensitive
// token-by-token walk (which also tries joining adjacent spoken tokens, so a
// surname the recogniser split in two still lines up), a whole-string edit
// distance, and a flat bonus when the name starts with the first spoken
// token. The blend deliberately favours token order: "μαρια παπαδοπουλου"
// must score strictly higher against that contact than the reversed form
// does.
//
// All inputs must already be in canonical form (see the greek package); the
// matcher never normalizes.
package match

import (
	"sort"
	"strings"
)

// Decision classifies the outcome of a match attempt.
type Decision int

const (
	// DecisionNoMatch means no candidate scored above the accept threshold.
	DecisionNoMatch Decision = iota
	// DecisionMatch means a single candidate won by a clear margin.
	DecisionMatch
	// DecisionAmbiguous means the top candidates scored too close together
	// to pick one; the caller should ask the user to choose.
	DecisionAmbiguous
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case DecisionMatch:
		return "match"
	case DecisionAmbiguous:
		return "ambiguous"
	default:
		return "no_match"
	}
}

// Candidate is one entry the matcher can pick.
type Candidate struct {
	// Name is the display name, returned verbatim in results.
	Name string
	// Forms holds every normalized spelling of the candidate: the canonical
	// form first, then any variants (nicknames, alternative spellings). A
	// candidate's score is the best score over all its forms.
	Forms []string
}

// Scored pairs a candidate with its blended score.
type Scored struct {
	Candidate Candidate
	Score     float64
}

// Result is the outcome of one match attempt. Best is meaningful only when
// Decision is DecisionMatch or DecisionAmbiguous; Alternatives is populated
// only for DecisionAmbiguous and includes Best as its first entry.
type Result struct {
	Decision     Decision
	Best         Scored
	Alternatives []Scored
}

// Blend weights. Order dominates; the prefix term only breaks near-ties.
const (
	orderedWeight = 0.6
	fullWeight    = 0.3
	prefixWeight  = 0.1
)

// Option configures a Matcher.
type Option func(*Matcher)

// WithAcceptThreshold sets the minimum top score required to report anything
// other than DecisionNoMatch. Default: 0.4.
func WithAcceptThreshold(t float64) Option {
	return func(m *Matcher) { m.acceptThreshold = t }
}

// WithAmbiguityGap sets the score gap below which the top candidates are
// reported as ambiguous instead of picking the winner. Default: 0.10.
func WithAmbiguityGap(g float64) Option {
	return func(m *Matcher) { m.ambiguityGap = g }
}

// WithMaxAlternatives caps the shortlist returned on an ambiguous result.
// Default: 3.
func WithMaxAlternatives(n int) Option {
	return func(m *Matcher) { m.maxAlternatives = n }
}

// Matcher scores utterances against candidates. The zero value is not
// usable; construct with New. Safe for concurrent use.
type Matcher struct {
	acceptThreshold float64
	ambiguityGap    float64
	maxAlternatives int
}

// New returns a Matcher with default thresholds, adjusted by opts.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		acceptThreshold: 0.4,
		ambiguityGap:    0.10,
		maxAlternatives: 3,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match scores the normalized query against every candidate and applies the
// decision policy. An empty query or empty candidate list yields
// DecisionNoMatch.
func (m *Matcher) Match(query string, candidates []Candidate) Result {
	query = strings.TrimSpace(query)
	if query == "" || len(candidates) == 0 {
		return Result{Decision: DecisionNoMatch}
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		best := 0.0
		for _, form := range c.Forms {
			if s := m.Score(query, form); s > best {
				best = s
			}
		}
		scored = append(scored, Scored{Candidate: c, Score: best})
	}
	return m.Decide(scored)
}

// Decide applies the accept-threshold and ambiguity-gap policy to a set of
// scored candidates. Exposed separately so the policy can be exercised with
// synthetic scores.
func (m *Matcher) Decide(scored []Scored) Result {
	if len(scored) == 0 {
		return Result{Decision: DecisionNoMatch}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	top := scored[0]
	if top.Score < m.acceptThreshold {
		return Result{Decision: DecisionNoMatch}
	}

	if len(scored) > 1 && top.Score-scored[1].Score < m.ambiguityGap {
		alts := []Scored{top}
		for _, s := range scored[1:] {
			if len(alts) >= m.maxAlternatives {
				break
			}
			if top.Score-s.Score >= m.ambiguityGap {
				break
			}
			alts = append(alts, s)
		}
		return Result{Decision: DecisionAmbiguous, Best: top, Alternatives: alts}
	}

	return Result{Decision: DecisionMatch, Best: top}
}

// Score returns the blended similarity of a normalized query against one
// normalized name form.
func (m *Matcher) Score(query, form string) float64 {
	ordered := orderedScore(strings.Fields(query), strings.Fields(form))
	full := Similarity(query, form)
	prefix := prefixScore(query, form)
	return orderedWeight*ordered + fullWeight*full + prefixWeight*prefix
}

// orderedScore walks the spoken tokens left to right, matching each against
// the name tokens at or after the current position. At every step it also
// tries the concatenation of the current token with the next one and keeps
// whichever scores higher, so a split surname ("παπα δοπουλου") matches the
// joined form. The result is the mean over consumed groups; spoken tokens
// with no name token left to match score zero, which penalises wrong order.
func orderedScore(spoken, name []string) float64 {
	if len(spoken) == 0 || len(name) == 0 {
		return 0
	}

	var sum float64
	groups := 0
	cursor := 0
	for i := 0; i < len(spoken); {
		s1, p1 := bestFrom(spoken[i], name, cursor)
		if i+1 < len(spoken) {
			if s2, p2 := bestFrom(spoken[i]+spoken[i+1], name, cursor); s2 > s1 {
				sum += s2
				groups++
				cursor = p2 + 1
				i += 2
				continue
			}
		}
		sum += s1
		groups++
		cursor = p1 + 1
		i++
	}
	return sum / float64(groups)
}

// bestFrom returns the highest token similarity of tok against name tokens
// at index from or later, and the index where it occurred. When no tokens
// remain it returns 0 with the cursor unchanged.
func bestFrom(tok string, name []string, from int) (float64, int) {
	best, at := 0.0, from
	for j := from; j < len(name); j++ {
		if s := tokenSimilarity(tok, name[j]); s > best {
			best, at = s, j
		}
	}
	return best, at
}

// prefixScore is a flat bonus: 1 when the name, spaces removed, starts with
// the first spoken token, 0 otherwise. No partial credit.
func prefixScore(query, form string) float64 {
	first, _, _ := strings.Cut(query, " ")
	if first == "" {
		return 0
	}
	if strings.HasPrefix(strings.ReplaceAll(form, " ", ""), first) {
		return 1
	}
	return 0
}
