// Package matcher resolves citations against the candidate-file index.
//
// Resolution cascade, first success wins: Exact (label equality or
// Bates containment), Normalized (slug-folded equality), Fuzzy
// (edit-distance ranking with a threshold and a tie epsilon). Ambiguity
// at any tier is reported unresolved, never guessed.
package matcher

import (
	"context"
	"sort"
	"strings"

	"github.com/mjlindsay/anchor/internal/citation"
	"github.com/mjlindsay/anchor/internal/exhibits"
)

// Confidence records which tier resolved a match.
type Confidence int

const (
	Exact Confidence = iota
	Normalized
	Fuzzy
)

func (c Confidence) String() string {
	switch c {
	case Exact:
		return "exact"
	case Normalized:
		return "normalized"
	case Fuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

const (
	// DefaultThreshold is the minimum fuzzy similarity accepted.
	DefaultThreshold = 0.72
	// DefaultEpsilon is the tie margin: a runner-up within this of the
	// top score makes the citation unresolved.
	DefaultEpsilon = 0.05
)

// Match is the resolution of one Citation against the index. File is
// nil when all tiers failed. Exactly one Match is produced per
// Citation.
type Match struct {
	Citation   citation.Citation
	File       *exhibits.CandidateFile
	Confidence Confidence

	// ResolvedPage is set later by the page locator (0 = unset).
	ResolvedPage int

	// Degraded marks a Bates match whose PDF could not be page-scanned;
	// the page must be derived arithmetically from the filename start
	// and the link may fall back to the document level.
	Degraded bool

	// Ambiguous is true when multiple candidates matched equally well;
	// such citations are unresolved by policy.
	Ambiguous bool
}

// Resolved reports whether the citation found a file.
func (m Match) Resolved() bool {
	return m.File != nil
}

// Matcher resolves citations against one immutable Index. Threshold
// and Epsilon are tunable policy (see config), not constants.
type Matcher struct {
	Index     *exhibits.Index
	Threshold float64
	Epsilon   float64
}

// New builds a Matcher; zero threshold/epsilon take the defaults.
func New(ix *exhibits.Index, threshold, epsilon float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Matcher{Index: ix, Threshold: threshold, Epsilon: epsilon}
}

// Resolve produces the Match for one citation. The context bounds any
// lazy Bates page scans triggered by containment checks.
func (m *Matcher) Resolve(ctx context.Context, c citation.Citation) Match {
	switch c.Kind {
	case citation.Bates:
		return m.resolveBates(ctx, c)
	default:
		return m.resolveExhibit(c)
	}
}

// resolveBates finds the PDF whose Bates range contains the cited
// label. Candidates are tried nearest-start first, so a label cited
// mid-document lands in the file that physically holds it.
func (m *Matcher) resolveBates(ctx context.Context, c citation.Citation) Match {
	match := Match{Citation: c}

	candidates := m.Index.BatesCandidates(c.BatesPrefix, c.BatesNumber)
	var firstScanFailure *exhibits.CandidateFile
	for _, f := range candidates {
		r, err := m.Index.BatesRange(ctx, f)
		if err != nil {
			if firstScanFailure == nil {
				firstScanFailure = f
			}
			continue
		}
		if r.Contains(c.Label) || r.ContainsNumber(c.BatesPrefix, c.BatesNumber) {
			match.File = f
			match.Confidence = Exact
			return match
		}
	}

	// A file that could not be scanned may still hold the label; fall
	// back to the nearest start and let the page locator derive the
	// page arithmetically.
	if firstScanFailure != nil {
		match.File = firstScanFailure
		match.Confidence = Exact
		match.Degraded = true
	}
	return match
}

func (m *Matcher) resolveExhibit(c citation.Citation) Match {
	match := Match{Citation: c}
	key := exhibits.NormalizeName(c.Label)
	if key == "" {
		return match
	}

	// Tier 1: exact equality against the normalized name or its
	// keyword-stripped form.
	if f, ambiguous := m.uniqueCandidate(func(f *exhibits.CandidateFile) bool {
		return f.NormalizedName == key || f.ExhibitKey == key
	}); f != nil || ambiguous {
		match.File = f
		match.Confidence = Exact
		match.Ambiguous = ambiguous
		return match
	}

	// Exact prefix containment: "Ex. 1" against "Ex_1_Memo.pdf". Only a
	// unique prefix match counts; several files sharing the prefix is
	// ambiguity.
	if f, ambiguous := m.uniqueCandidate(func(f *exhibits.CandidateFile) bool {
		return strings.HasPrefix(f.ExhibitKey, key+"_") || strings.HasPrefix(f.NormalizedName, key+"_")
	}); f != nil || ambiguous {
		match.File = f
		match.Confidence = Exact
		match.Ambiguous = ambiguous
		return match
	}

	// Tier 2: slug-folded equality.
	slugKey := exhibits.SlugKey(c.Label)
	if f, ambiguous := m.uniqueCandidate(func(f *exhibits.CandidateFile) bool {
		return f.SlugKey == slugKey || f.SlugExhibitKey == slugKey
	}); f != nil || ambiguous {
		match.File = f
		match.Confidence = Normalized
		match.Ambiguous = ambiguous
		return match
	}

	// Tier 3: fuzzy ranking.
	return m.resolveFuzzy(match, key)
}

// uniqueCandidate returns the single file satisfying pred, or
// (nil, true) when several do.
func (m *Matcher) uniqueCandidate(pred func(*exhibits.CandidateFile) bool) (*exhibits.CandidateFile, bool) {
	var found *exhibits.CandidateFile
	for _, f := range m.Index.Files {
		if !pred(f) {
			continue
		}
		if found != nil {
			return nil, true
		}
		found = f
	}
	return found, false
}

type scored struct {
	file  *exhibits.CandidateFile
	score float64
}

func (m *Matcher) resolveFuzzy(match Match, key string) Match {
	var ranked []scored
	for _, f := range m.Index.Files {
		s := similarity(key, f.NormalizedName)
		if alt := similarity(key, f.ExhibitKey); alt > s {
			s = alt
		}
		ranked = append(ranked, scored{file: f, score: s})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) == 0 || ranked[0].score < m.Threshold {
		return match
	}
	if len(ranked) > 1 && ranked[0].score-ranked[1].score <= m.Epsilon {
		// A tie within epsilon is unresolved, not an arbitrary pick.
		match.Ambiguous = true
		return match
	}

	match.File = ranked[0].file
	match.Confidence = Fuzzy
	return match
}
