package match

import (
	"github.com/antzucaro/matchr"

	"github.com/t4paN/ava/internal/greek"
)

// Similarity returns an edit-distance similarity in [0, 1] between two
// normalized strings. It is the maximum of the plain Levenshtein similarity
// and the similarity after the second-stage phonetic collapse, so that
// confusions like ντ/τ or φ/π cost nothing.
func Similarity(a, b string) float64 {
	s := levSimilarity(a, b)
	if s == 1 {
		return s
	}
	if sp := levSimilarity(greek.Simplify(a), greek.Simplify(b)); sp > s {
		s = sp
	}
	return s
}

// substringBonus is added to a token similarity when the two tokens share a
// long common substring, rewarding partial recognitions like "παπα" for
// "παπαδοπουλου".
const substringBonus = 0.15

// tokenSimilarity is Similarity plus the common-substring bonus, capped at 1.
// It is used for per-token scoring only; whole-utterance comparisons use the
// plain Similarity so that the bonus cannot dominate.
func tokenSimilarity(a, b string) float64 {
	s := Similarity(a, b)
	ra, rb := []rune(a), []rune(b)
	shorter := len(ra)
	if len(rb) < shorter {
		shorter = len(rb)
	}
	if shorter > 0 && 2*longestCommonSubstring(ra, rb) >= shorter {
		s += substringBonus
	}
	if s > 1 {
		s = 1
	}
	return s
}

func levSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	if longer == 0 {
		return 1
	}
	d := matchr.Levenshtein(a, b)
	s := 1 - float64(d)/float64(longer)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// longestCommonSubstring returns the length of the longest contiguous run of
// runes shared by a and b. Standard two-row dynamic programming; inputs are
// short tokens, so the quadratic cost is irrelevant.
func longestCommonSubstring(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	best := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}
