package entity

// Seed is the crawl input: either one URL or an explicit list of URLs.
// The interface is sealed; use Single or Many.
type Seed interface {
	URLs() []string
	isSeed()
}

// Single is a seed given as one URL.
type Single string

// Many is a seed given as an explicit list.
type Many []string

func (s Single) URLs() []string { return []string{string(s)} }
func (Single) isSeed()          {}

func (m Many) URLs() []string {
	out := make([]string, len(m))
	copy(out, m)
	return out
}
func (Many) isSeed() {}

// NewSeed picks the variant from the number of URLs supplied.
// A list file always yields Many, even with a single entry.
func NewSeed(urls []string, fromList bool) Seed {
	if len(urls) == 1 && !fromList {
		return Single(urls[0])
	}
	return Many(urls)
}
