package enrich

import (
	"strings"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/normalize"
)

// DefaultSector classifies documents the registry does not know.
const DefaultSector = document.DefaultSector

// SearchQuery is one registry search. The date hints narrow the results
// to documents dated on or after them.
type SearchQuery struct {
	Key           string
	Page          int
	IssuedFrom    *time.Time
	EffectiveFrom *time.Time
	ExpiryFrom    *time.Time
}

// Candidate is one registry search result.
type Candidate struct {
	Name          string   `json:"name"`
	Number        string   `json:"number"`
	Key           string   `json:"key"`
	Slug          string   `json:"slug"`
	EffectiveDate string   `json:"effectiveDate"`
	ExpiryDate    string   `json:"expiryDate"`
	Branches      []Branch `json:"branches"`
}

type Branch struct {
	Name string `json:"name"`
}

func (c Candidate) Effective() *time.Time {
	return normalize.ParseISODate(c.EffectiveDate)
}

func (c Candidate) Expiry() *time.Time {
	return normalize.ParseISODate(c.ExpiryDate)
}

// Sector joins the branch names, or returns "" without branches.
func (c Candidate) Sector() string {
	names := make([]string, 0, len(c.Branches))
	for _, b := range c.Branches {
		if name := strings.TrimSpace(b.Name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, " - ")
}

// Score is the best similarity of query against the name, number and
// key of c.
func (c Candidate) Score(query string) float64 {
	best := 0.0
	for _, v := range []string{c.Name, c.Number, c.Key} {
		if strings.TrimSpace(v) == "" {
			continue
		}
		best = max(best, normalize.Ratio(query, v))
	}
	return best
}

// RegistryFile is the original PDF of a registry document.
type RegistryFile struct {
	ID  string
	URL string
}

type MatchResult struct {
	Matched bool
	// Field names the identifying field that matched.
	Field     string
	Score     float64
	Candidate Candidate
}
