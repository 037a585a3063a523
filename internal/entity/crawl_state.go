package entity

// CrawlState is the orchestrator's per-seed state. It changes once per BFS
// level and is terminal when RemainingDepth is 0 or the frontier is empty.
type CrawlState struct {
	BaseURL         string
	CurrentFrontier []string
	RemainingDepth  int
	Level           int
}

// Done reports whether no further levels will be fetched.
func (s *CrawlState) Done() bool {
	return s.RemainingDepth <= 0 || len(s.CurrentFrontier) == 0
}

// Advance moves to the next level with the given frontier.
func (s *CrawlState) Advance(next []string) {
	s.CurrentFrontier = next
	s.RemainingDepth--
	s.Level++
}

// SeedReport summarises one seed's traversal.
type SeedReport struct {
	Seed         string
	Levels       int
	PagesFetched int
	FetchErrors  int
	Aborted      bool // seed fetch produced no results
}
