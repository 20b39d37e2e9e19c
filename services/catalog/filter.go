package catalog

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"nutrimatch-go-worker/models"
)

// Filter selects foods from the catalog. Name terms match case-insensitive
// substrings of the food name.
type Filter struct {
	VerifiedOnly       bool       `json:"verified_only"`
	ExcludeNameTerms   []string   `json:"exclude_name_terms,omitempty"`
	ExcludeCategoryIDs []int64    `json:"exclude_category_ids,omitempty"`
	AnyOf              *Inclusion `json:"any_of,omitempty"`
}

// Inclusion keeps a food when any one of its conditions holds.
type Inclusion struct {
	NameTerms   []string `json:"name_terms,omitempty"`
	MinProtein  *float64 `json:"min_protein,omitempty"`
	MaxCalories *float64 `json:"max_calories,omitempty"`
}

func (f Filter) Match(food models.Food) bool {
	if f.VerifiedOnly && !food.IsVerified {
		return false
	}
	name := strings.ToLower(food.Name)
	for _, term := range f.ExcludeNameTerms {
		if t := normalizeTerm(term); t != "" && strings.Contains(name, t) {
			return false
		}
	}
	if food.CategoryID != nil {
		for _, id := range f.ExcludeCategoryIDs {
			if *food.CategoryID == id {
				return false
			}
		}
	}
	if f.AnyOf != nil {
		return f.AnyOf.match(name, food)
	}
	return true
}

func (in *Inclusion) match(name string, food models.Food) bool {
	for _, term := range in.NameTerms {
		if t := normalizeTerm(term); t != "" && strings.Contains(name, t) {
			return true
		}
	}
	if in.MinProtein != nil && food.Protein >= *in.MinProtein {
		return true
	}
	if in.MaxCalories != nil && food.Calories <= *in.MaxCalories {
		return true
	}
	return false
}

// Key is a stable digest of the filter, independent of term order.
func (f Filter) Key() string {
	normalized := Filter{
		VerifiedOnly:       f.VerifiedOnly,
		ExcludeNameTerms:   sortedTerms(f.ExcludeNameTerms),
		ExcludeCategoryIDs: append([]int64(nil), f.ExcludeCategoryIDs...),
	}
	sort.Slice(normalized.ExcludeCategoryIDs, func(i, j int) bool {
		return normalized.ExcludeCategoryIDs[i] < normalized.ExcludeCategoryIDs[j]
	})
	if f.AnyOf != nil {
		normalized.AnyOf = &Inclusion{
			NameTerms:   sortedTerms(f.AnyOf.NameTerms),
			MinProtein:  f.AnyOf.MinProtein,
			MaxCalories: f.AnyOf.MaxCalories,
		}
	}
	encoded, _ := json.Marshal(normalized)
	sum := sha1.Sum(encoded)
	return hex.EncodeToString(sum[:])
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func sortedTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		t := normalizeTerm(term)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
