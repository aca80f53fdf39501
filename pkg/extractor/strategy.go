package extractor

import (
	"sort"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is a raw link found by a strategy, before validation.
type Candidate struct {
	URL     string
	Text    string
	Context string
	Source  string
	// Contextual is set when only the surrounding text marked the link
	// as a download. Such links are dropped when they stay on the site.
	Contextual bool
}

type Strategy interface {
	Name() string
	Priority() int
	Candidates(doc *goquery.Document) []Candidate
}

type Registry struct {
	strategies []Strategy
}

func NewRegistry() *Registry {
	return &Registry{
		strategies: make([]Strategy, 0),
	}
}

// Register adds s, keeping strategies ordered by descending priority.
// Strategies with equal priority keep registration order.
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
	sort.SliceStable(r.strategies, func(i, j int) bool {
		return r.strategies[i].Priority() > r.strategies[j].Priority()
	})
}

func (r *Registry) Strategies() []Strategy {
	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// DefaultRegistry returns every built-in link strategy.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewScopedStrategy())
	r.Register(NewAnchorStrategy())
	r.Register(NewDataAttrStrategy())
	r.Register(NewFormStrategy())
	r.Register(NewMagnetStrategy())
	return r
}
