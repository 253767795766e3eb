package mapping

import (
	"regexp"
	"sort"
	"strings"

	"ddi-sync/core/ddi"
	"ddi-sync/feature/inventory"

	"github.com/agext/levenshtein"
)

// DefaultThreshold is the minimum score for a candidate to be suggested.
const DefaultThreshold = 0.8

// maxSuggestions caps the number of candidates returned per source key.
const maxSuggestions = 3

// synonymGroups are known spelling variations of common attribute names.
// The first member of each group is the canonical form.
var synonymGroups = [][]string{
	{"created_by", "createdby", "created-by", "creator", "created_user"},
	{"created_date", "createddate", "created-date", "creation_date", "created_at"},
	{"modified_by", "modifiedby", "modified-by", "updated_by", "updatedby"},
	{"modified_date", "modifieddate", "modified-date", "updated_date", "updated_at"},
	{"environment", "env"},
	{"application", "app"},
	{"owner", "owned_by", "ownedby"},
	{"cost_center", "costcenter", "cost-center", "cc"},
	{"project", "project_name", "projectname"},
	{"department", "dept"},
}

var separatorRuns = regexp.MustCompile(`[-\s]+`)

// Normalize lowercases a key and collapses runs of hyphens and whitespace
// into a single underscore.
func Normalize(name string) string {
	return separatorRuns.ReplaceAllString(strings.ToLower(name), "_")
}

// Mapping is a suggested correspondence between a source tag key and a
// target-store attribute name.
type Mapping struct {
	SourceKey  string  `json:"source_key"`
	TargetKey  string  `json:"target_key"`
	Confidence float64 `json:"confidence"`
	ExactMatch bool    `json:"exact_match"`
}

// Mapper suggests target-store attribute names for source tag keys using a
// static synonym table and string similarity.
type Mapper struct {
	// variants maps a normalized variant to its canonical name.
	variants map[string]string
}

// NewMapper builds a mapper with the reverse synonym index.
func NewMapper() *Mapper {
	variants := make(map[string]string)
	for _, group := range synonymGroups {
		canonical := group[0]
		for _, variant := range group {
			variants[Normalize(variant)] = canonical
		}
	}
	return &Mapper{variants: variants}
}

// FindSimilar scores every target key against the source key and returns the
// candidates at or above the threshold, best first. A threshold <= 0 means
// DefaultThreshold.
//
// Ties are broken by ascending target key so repeated calls always return
// the same order.
func (m *Mapper) FindSimilar(sourceKey string, targetKeys []string, threshold float64) []Mapping {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	srcNorm := Normalize(sourceKey)

	var matches []Mapping
	for _, target := range targetKeys {
		score := m.score(srcNorm, Normalize(target))
		if score < threshold {
			continue
		}
		matches = append(matches, Mapping{
			SourceKey:  sourceKey,
			TargetKey:  target,
			Confidence: score,
			ExactMatch: score == 1.0,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].TargetKey < matches[j].TargetKey
	})

	return matches
}

// score combines edit similarity with the synonym table and the substring
// and shared-prefix floors.
func (m *Mapper) score(srcNorm, targetNorm string) float64 {
	score := levenshtein.Similarity(srcNorm, targetNorm, nil)

	if strings.Contains(srcNorm, targetNorm) || strings.Contains(targetNorm, srcNorm) {
		score = max(score, 0.85)
	}

	if sharesPrefix(srcNorm, targetNorm) {
		score = max(score, 0.70)
	}

	if canonical, ok := m.variants[srcNorm]; ok {
		if targetCanonical, ok := m.variants[targetNorm]; ok && targetCanonical == canonical {
			score = max(score, 0.95)
		}
	}

	return score
}

// sharesPrefix reports whether the first three characters of either string
// prefix the other.
func sharesPrefix(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, firstN(b, 3)) || strings.HasPrefix(b, firstN(a, 3))
}

func firstN(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// Suggestions returns the top candidates for each source key, at most
// maxSuggestions per key.
func (m *Mapper) Suggestions(sourceKeys, targetKeys []string) map[string][]Mapping {
	suggestions := make(map[string][]Mapping, len(sourceKeys))
	for _, source := range sourceKeys {
		matches := m.FindSimilar(source, targetKeys, DefaultThreshold)
		if len(matches) > maxSuggestions {
			matches = matches[:maxSuggestions]
		}
		suggestions[source] = matches
	}
	return suggestions
}

// Apply rewrites each record's tags into target-store attribute form using
// the chosen source-to-target table. An empty target key skips the tag;
// unmapped tags are dropped, never merged.
func Apply(records []inventory.NetworkRecord, chosen map[string]string) []inventory.NetworkRecord {
	for i := range records {
		mapped := make(map[string]ddi.AttrValue)
		for tag, value := range records[i].Tags {
			target, ok := chosen[tag]
			if !ok || target == "" {
				continue
			}
			mapped[target] = ddi.AttrValue{Value: value}
		}
		records[i].MappedAttrs = mapped
	}
	return records
}
