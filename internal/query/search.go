package query

// ActiveLister lists active source names in configuration order.
type ActiveLister interface {
	ActiveNames() []string
}

// Searcher answers dashboard search requests.
type Searcher struct {
	sources ActiveLister
}

// NewSearcher creates a Searcher over sources.
func NewSearcher(sources ActiveLister) *Searcher {
	return &Searcher{sources: sources}
}

// Search returns the names of all active sources. It never returns nil.
func (s *Searcher) Search() []string {
	names := s.sources.ActiveNames()
	if names == nil {
		return []string{}
	}
	return names
}
