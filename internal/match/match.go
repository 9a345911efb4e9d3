package match

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	exactBonus     int64 = 1_000_000
	prefixBonus    int64 = 100_000
	frequencyScale int64 = 100

	baseScore       int64 = 1
	boundaryBonus   int64 = 10
	contiguousBonus int64 = 5
)

// MaxTokenRunes bounds the length of a single query token. Longer tokens
// never match.
const MaxTokenRunes = 64

// Frequencies reports how often a name has been launched.
type Frequencies interface {
	Get(name string) uint32
}

// Result is one ranked candidate. MatchIndices holds absolute rune
// positions in Name and is only used for highlighting.
type Result struct {
	Name         string
	Score        int64
	MatchIndices []int
}

// Filter ranks candidates against query. An empty query keeps every
// candidate and ranks purely by frequency.
func Filter(candidates []string, query string, freq Frequencies) []Result {
	tokens := strings.Fields(query)
	caseSensitive := hasUpper(query)

	results := make([]Result, 0, len(candidates))
	if len(tokens) == 0 {
		for _, name := range candidates {
			results = append(results, Result{Name: name, Score: frequencyScore(freq, name)})
		}
		sortResults(results)
		return results
	}

	normalized := strings.Join(tokens, " ")
	pattern := strings.Join(tokens, "")
	tokenRunes := make([][]rune, len(tokens))
	for i, tok := range tokens {
		runes := []rune(tok)
		if len(runes) > MaxTokenRunes {
			return results
		}
		if !caseSensitive {
			runes = lowerRunes(runes)
		}
		tokenRunes[i] = runes
	}
	if !caseSensitive {
		normalized = string(lowerRunes([]rune(normalized)))
	}

	if !caseSensitive {
		pattern = string(lowerRunes([]rune(pattern)))
	}

	for _, name := range candidates {
		text := []rune(name)
		folded := name
		if !caseSensitive {
			// Lowered rune by rune: MatchFold's transformer breaks on runes
			// whose lower case has a different UTF-8 length.
			text = lowerRunes(text)
			folded = string(text)
		}
		if !fuzzy.Match(pattern, folded) {
			continue
		}
		score, indices, ok := matchTokens(text, tokenRunes)
		if !ok {
			continue
		}
		score += frequencyScore(freq, name)
		if folded == normalized {
			score += exactBonus
		}
		if strings.HasPrefix(folded, normalized) {
			score += prefixBonus
		}
		results = append(results, Result{Name: name, Score: score, MatchIndices: indices})
	}
	sortResults(results)
	return results
}

// matchTokens places each token as a subsequence of text, every token
// starting after the previous token's last matched rune.
func matchTokens(text []rune, tokens [][]rune) (int64, []int, bool) {
	var (
		total   int64
		indices []int
		start   int
	)
	for _, tok := range tokens {
		if len(tok) == 0 {
			continue
		}
		score, positions, ok := bestPlacement(text[start:], tok)
		if !ok {
			return 0, nil, false
		}
		total += score
		for _, p := range positions {
			indices = append(indices, start+p)
		}
		start += positions[len(positions)-1] + 1
	}
	return total, indices, true
}

// bestPlacement returns the highest scoring placement of token inside
// segment. Among equal scores the lexicographically smallest index sequence
// wins, which is the placement a left-to-right exhaustive search finds
// first. suffix[j*n+i] is the best score for token[j:] with token[j] at
// segment[i], or -1 when no placement exists.
func bestPlacement(segment, token []rune) (int64, []int, bool) {
	n, k := len(segment), len(token)
	if k == 0 {
		return 0, nil, true
	}
	if n < k {
		return 0, nil, false
	}

	suffix := make([]int64, k*n)
	for i := range suffix {
		suffix[i] = -1
	}
	for j := k - 1; j >= 0; j-- {
		row := suffix[j*n : (j+1)*n]
		// token[j] must leave room for the rest of the token.
		for i := j; i <= n-(k-j); i++ {
			if segment[i] != token[j] {
				continue
			}
			own := runeScore(segment, i)
			if j == k-1 {
				row[i] = own
				continue
			}
			best := nextBest(suffix[(j+1)*n:(j+2)*n], i)
			if best < 0 {
				continue
			}
			row[i] = own + best
		}
	}

	first := suffix[:n]
	bestStart, bestScore := -1, int64(-1)
	for i, s := range first {
		if s > bestScore {
			bestStart, bestScore = i, s
		}
	}
	if bestStart < 0 {
		return 0, nil, false
	}

	positions := make([]int, 0, k)
	positions = append(positions, bestStart)
	at := bestStart
	for j := 1; j < k; j++ {
		want := suffix[(j-1)*n+at] - runeScore(segment, at)
		row := suffix[j*n : (j+1)*n]
		for q := at + 1; q < n; q++ {
			if row[q] < 0 {
				continue
			}
			if row[q]+adjacency(at, q) == want {
				at = q
				break
			}
		}
		positions = append(positions, at)
	}
	return bestScore, positions, true
}

// nextBest is the best continuation from position i into the next token
// rune's row, including the contiguity bonus.
func nextBest(next []int64, i int) int64 {
	best := int64(-1)
	for q := i + 1; q < len(next); q++ {
		if next[q] < 0 {
			continue
		}
		if s := next[q] + adjacency(i, q); s > best {
			best = s
		}
	}
	return best
}

func adjacency(prev, pos int) int64 {
	if pos == prev+1 {
		return contiguousBonus
	}
	return 0
}

func runeScore(segment []rune, i int) int64 {
	score := baseScore
	if i == 0 || isBoundary(segment[i-1]) {
		score += boundaryBonus
	}
	return score
}

func isBoundary(r rune) bool {
	return r == ' ' || r == '-' || r == '_'
}

func frequencyScore(freq Frequencies, name string) int64 {
	if freq == nil {
		return 0
	}
	return int64(freq.Get(name)) * frequencyScale
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func lowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return lessName(results[i].Name, results[j].Name)
	})
}

// lessName orders names digits first, then lowercase, then uppercase, then
// everything else, comparing byte by byte.
func lessName(a, b string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		ca, cb := byteClass(a[i]), byteClass(b[i])
		if ca != cb {
			return ca < cb
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func byteClass(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return 0
	case b >= 'a' && b <= 'z':
		return 1
	case b >= 'A' && b <= 'Z':
		return 2
	default:
		return 3
	}
}
