package match

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"unicode"
)

type freqMap map[string]uint32

func (f freqMap) Get(name string) uint32 { return f[name] }

func names(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name
	}
	return out
}

func TestFilterEmptyCatalog(t *testing.T) {
	for _, q := range []string{"", "a", "Foo bar", "   "} {
		if got := Filter(nil, q, nil); len(got) != 0 {
			t.Fatalf("expected no results for %q, got %#v", q, got)
		}
	}
}

func TestFilterEmptyQueryRanksByFrequency(t *testing.T) {
	freq := freqMap{"vim": 2, "code": 5}
	got := Filter([]string{"vim", "code", "ls"}, "  ", freq)
	want := []string{"code", "vim", "ls"}
	if !reflect.DeepEqual(names(got), want) {
		t.Fatalf("expected %v, got %v", want, names(got))
	}
	if got[0].Score != 500 {
		t.Fatalf("expected score 500, got %d", got[0].Score)
	}
	if got[0].MatchIndices != nil {
		t.Fatalf("expected no indices in browse mode, got %v", got[0].MatchIndices)
	}
}

func TestFilterBoundaryBonus(t *testing.T) {
	got := Filter([]string{"firefox", "file-manager", "vim", "xfix"}, "fi", nil)
	want := []string{"file-manager", "firefox", "xfix"}
	if !reflect.DeepEqual(names(got), want) {
		t.Fatalf("expected %v, got %v", want, names(got))
	}
	for _, r := range got[:2] {
		if !reflect.DeepEqual(r.MatchIndices, []int{0, 1}) {
			t.Fatalf("expected indices [0 1] for %s, got %v", r.Name, r.MatchIndices)
		}
		if r.Score <= got[2].Score {
			t.Fatalf("expected %s to outrank %s", r.Name, got[2].Name)
		}
	}
	if got[2].Score != 7 {
		t.Fatalf("expected score 7 for xfix (1 + 1+5), got %d", got[2].Score)
	}
}

func TestFilterExactMatchWins(t *testing.T) {
	freq := freqMap{"git": 5}
	got := Filter([]string{"github-desktop", "git"}, "git", freq)
	if names(got)[0] != "git" {
		t.Fatalf("expected git first, got %v", names(got))
	}
	if got[0].Score <= got[1].Score {
		t.Fatalf("expected strict ordering, got %d vs %d", got[0].Score, got[1].Score)
	}
	if got[0].Score < exactBonus {
		t.Fatalf("expected exact bonus in score, got %d", got[0].Score)
	}
}

func TestFilterExactMatchBeatsFrequency(t *testing.T) {
	freq := freqMap{"gitk": 9000}
	got := Filter([]string{"gitk", "git"}, "git", freq)
	if names(got)[0] != "git" {
		t.Fatalf("expected exact match to rank first, got %v", names(got))
	}
}

func TestFilterNormalizesWhitespaceForBonuses(t *testing.T) {
	got := Filter([]string{"foo bar", "foobar"}, "  foo   bar ", nil)
	if len(got) != 2 {
		t.Fatalf("expected both candidates, got %v", names(got))
	}
	if got[0].Name != "foo bar" || got[0].Score < exactBonus {
		t.Fatalf("expected exact normalized match first, got %#v", got[0])
	}
}

func TestFilterSmartCase(t *testing.T) {
	catalog := []string{"Firefox", "firefox"}
	lower := Filter(catalog, "fire", nil)
	if len(lower) != 2 {
		t.Fatalf("expected case-insensitive match of both, got %v", names(lower))
	}
	upper := Filter(catalog, "Fire", nil)
	if len(upper) != 1 || upper[0].Name != "Firefox" {
		t.Fatalf("expected case-sensitive match of Firefox only, got %v", names(upper))
	}
}

func TestFilterTokensAreOrderedAndDisjoint(t *testing.T) {
	got := Filter([]string{"google-chrome", "chrome-google"}, "goo chr", nil)
	if len(got) != 1 || got[0].Name != "google-chrome" {
		t.Fatalf("expected only google-chrome, got %v", names(got))
	}
	want := []int{0, 1, 2, 7, 8, 9}
	if !reflect.DeepEqual(got[0].MatchIndices, want) {
		t.Fatalf("expected indices %v, got %v", want, got[0].MatchIndices)
	}

	if got := Filter([]string{"aa"}, "a a a", nil); len(got) != 0 {
		t.Fatalf("expected tokens not to share runes, got %v", names(got))
	}
}

func TestFilterSecondTokenSegmentStartsWithBoundary(t *testing.T) {
	// "b" is the first rune of the segment after "a", so it earns the
	// boundary bonus even though it follows a letter.
	got := Filter([]string{"ab"}, "a b", nil)
	if len(got) != 1 {
		t.Fatalf("expected a match")
	}
	if got[0].Score != 22 {
		t.Fatalf("expected 11 + 11, got %d", got[0].Score)
	}
}

func TestFilterUnicodeIndicesAreRunePositions(t *testing.T) {
	got := Filter([]string{"çafé-menu"}, "fm", nil)
	if len(got) != 1 {
		t.Fatalf("expected a match, got %v", names(got))
	}
	want := []int{2, 5}
	if !reflect.DeepEqual(got[0].MatchIndices, want) {
		t.Fatalf("expected %v, got %v", want, got[0].MatchIndices)
	}
}

func TestFilterFoldsRunesThatChangeEncodedLength(t *testing.T) {
	// Ⱥ lowers to a longer encoding and İ to a shorter one.
	got := Filter([]string{"Ⱥb", "vim"}, "b", nil)
	if len(got) != 1 || got[0].Name != "Ⱥb" {
		t.Fatalf("expected Ⱥb, got %v", names(got))
	}
	if !reflect.DeepEqual(got[0].MatchIndices, []int{1}) {
		t.Fatalf("expected index [1], got %v", got[0].MatchIndices)
	}

	got = Filter([]string{"İİx", strings.Repeat("İ", 16) + "x"}, "ix", nil)
	if len(got) != 2 {
		t.Fatalf("expected both names to match, got %v", names(got))
	}
	if got[0].Name != "İİx" || !reflect.DeepEqual(got[0].MatchIndices, []int{0, 2}) {
		t.Fatalf("expected İİx with indices [0 2], got %s %v", got[0].Name, got[0].MatchIndices)
	}
	if !reflect.DeepEqual(got[1].MatchIndices, []int{0, 16}) {
		t.Fatalf("expected indices [0 16], got %v", got[1].MatchIndices)
	}

	if got := Filter([]string{"ⱥb"}, "Ⱥ", nil); len(got) != 0 {
		t.Fatalf("expected case-sensitive query to skip the lower-case name, got %v", names(got))
	}
}

func TestFilterRejectsOverlongToken(t *testing.T) {
	long := strings.Repeat("a", MaxTokenRunes+1)
	if got := Filter([]string{long}, long, nil); len(got) != 0 {
		t.Fatalf("expected overlong token to match nothing, got %d results", len(got))
	}
	edge := strings.Repeat("a", MaxTokenRunes)
	if got := Filter([]string{edge}, edge, nil); len(got) != 1 {
		t.Fatalf("expected token at the bound to match")
	}
}

func TestFilterAdversarialInputFinishes(t *testing.T) {
	name := strings.Repeat("a", 200)
	query := strings.Repeat("a", MaxTokenRunes)
	got := Filter([]string{name}, query, nil)
	if len(got) != 1 {
		t.Fatalf("expected a match")
	}
	for i, idx := range got[0].MatchIndices {
		if idx != i {
			t.Fatalf("expected leftmost contiguous placement, got %v", got[0].MatchIndices)
		}
	}
}

func TestFilterTieBreakByteClasses(t *testing.T) {
	got := Filter([]string{"Zed", "_x", "zed", "7z", "zEd"}, "", nil)
	want := []string{"7z", "zed", "zEd", "Zed", "_x"}
	if !reflect.DeepEqual(names(got), want) {
		t.Fatalf("expected %v, got %v", want, names(got))
	}
	got = Filter([]string{"ab", "a"}, "", nil)
	if names(got)[0] != "a" {
		t.Fatalf("expected prefix to sort first, got %v", names(got))
	}
}

func TestFilterDeterministic(t *testing.T) {
	catalog := []string{"make", "cmake", "mak", "emacs", "mako", "xmake", "make-dev"}
	freq := freqMap{"emacs": 1}
	first := Filter(catalog, "ma", freq)
	for i := 0; i < 5; i++ {
		again := Filter(catalog, "ma", freq)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("expected identical output, got %v vs %v", first, again)
		}
	}
}

func TestFilterIndicesAreValidSubsequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abAB-_ c")
	for n := 0; n < 300; n++ {
		name := randomString(rng, alphabet, 1+rng.Intn(12))
		query := randomString(rng, []rune("abAB c"), 1+rng.Intn(4))
		for _, res := range Filter([]string{name}, query, nil) {
			checkIndices(t, res, query)
		}
	}
}

func checkIndices(t *testing.T, res Result, query string) {
	t.Helper()
	sensitive := hasUpper(query)
	text := []rune(res.Name)
	want := []rune(strings.Join(strings.Fields(query), ""))
	if len(res.MatchIndices) != len(want) {
		t.Fatalf("expected %d indices for %q in %q, got %v", len(want), query, res.Name, res.MatchIndices)
	}
	prev := -1
	for i, idx := range res.MatchIndices {
		if idx <= prev {
			t.Fatalf("expected strictly increasing indices, got %v", res.MatchIndices)
		}
		prev = idx
		got, exp := text[idx], want[i]
		if !sensitive {
			got, exp = unicode.ToLower(got), unicode.ToLower(exp)
		}
		if got != exp {
			t.Fatalf("index %d of %q points at %q, expected %q", idx, res.Name, text[idx], want[i])
		}
	}
}

func TestBestPlacementMatchesExhaustiveSearch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("aab-_ ")
	for n := 0; n < 2000; n++ {
		segment := []rune(randomString(rng, alphabet, rng.Intn(11)))
		token := []rune(randomString(rng, []rune("ab"), 1+rng.Intn(4)))
		gotScore, gotPos, gotOK := bestPlacement(segment, token)
		wantScore, wantPos, wantOK := exhaustivePlacement(segment, token)
		if gotOK != wantOK || gotScore != wantScore || !reflect.DeepEqual(gotPos, wantPos) {
			t.Fatalf("segment %q token %q: expected (%d %v %v), got (%d %v %v)",
				string(segment), string(token), wantScore, wantPos, wantOK, gotScore, gotPos, gotOK)
		}
	}
}

// exhaustivePlacement walks every placement with an explicit stack in
// left-to-right order, keeping the first strictly better score.
func exhaustivePlacement(segment, token []rune) (int64, []int, bool) {
	type frame struct {
		next  int // next segment index to try for this token rune
		score int64
	}
	k := len(token)
	var (
		best      int64 = -1
		bestPos   []int
		positions []int
		stack     = []frame{{next: 0}}
	)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		j := len(stack) - 1
		if j == k {
			if top.score > best {
				best = top.score
				bestPos = append([]int(nil), positions...)
			}
			stack = stack[:len(stack)-1]
			positions = positions[:len(positions)-1]
			continue
		}
		found := false
		for i := top.next; i <= len(segment)-(k-j); i++ {
			if segment[i] != token[j] {
				continue
			}
			top.next = i + 1
			s := top.score + runeScore(segment, i)
			if j > 0 && i == positions[len(positions)-1]+1 {
				s += contiguousBonus
			}
			positions = append(positions, i)
			stack = append(stack, frame{next: i + 1, score: s})
			found = true
			break
		}
		if !found {
			stack = stack[:len(stack)-1]
			if len(positions) > 0 && len(stack) > 0 {
				positions = positions[:len(positions)-1]
			}
		}
	}
	if best < 0 {
		return 0, nil, false
	}
	return best, bestPos, true
}

func randomString(rng *rand.Rand, alphabet []rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(out)
}
