// Package urlgroup groups URL collections by domain and path and
// derives per-domain structure statistics. It is a triage helper for
// large crawl lists: grouping first keeps minimal-URL analysis runs
// focused on one representative per path instead of every URL.
package urlgroup

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// RootPath keys URLs whose path has no segments ("/" or empty).
const RootPath = "/"

// URLError records a URL that could not be parsed, without stopping
// the run.
type URLError struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// DomainAnalysis summarizes the path structure of one domain.
type DomainAnalysis struct {
	TotalURLs         int         `json:"total_urls"`
	UniquePaths       int         `json:"unique_paths"`
	DepthDistribution map[int]int `json:"depth_distribution"`
	AvgDepth          float64     `json:"avg_depth"`
}

// Report is the full outcome of grouping a URL batch.
type Report struct {
	Groups      map[string]map[string][]string `json:"grouped_results"`
	UniquePaths map[string][]string            `json:"unique_paths"`
	Analysis    map[string]DomainAnalysis      `json:"path_analysis"`
	Summary     []DomainSummary                `json:"summary"`
	Errors      []URLError                     `json:"errors,omitempty"`
}

type domainStats struct {
	depths map[int]int
	total  int
}

// Grouper accumulates URLs into domain/path groups. Safe for
// concurrent use.
type Grouper struct {
	mu     sync.Mutex
	groups map[string]map[string][]string
	paths  map[string]map[string]struct{}
	stats  map[string]*domainStats
	errs   []URLError
}

// New creates an empty Grouper.
func New() *Grouper {
	return &Grouper{
		groups: make(map[string]map[string][]string),
		paths:  make(map[string]map[string]struct{}),
		stats:  make(map[string]*domainStats),
	}
}

// Add records one URL. Unparseable URLs are captured as errors, not
// returned.
func (g *Grouper) Add(rawURL string) {
	domain, segments, err := parse(rawURL)
	if err != nil {
		g.mu.Lock()
		g.errs = append(g.errs, URLError{URL: rawURL, Error: err.Error()})
		g.mu.Unlock()
		return
	}

	path := RootPath
	if len(segments) > 0 {
		path = "/" + strings.Join(segments, "/")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.groups[domain] == nil {
		g.groups[domain] = make(map[string][]string)
		g.paths[domain] = make(map[string]struct{})
		g.stats[domain] = &domainStats{depths: make(map[int]int)}
	}
	g.groups[domain][path] = append(g.groups[domain][path], rawURL)
	g.paths[domain][path] = struct{}{}
	g.stats[domain].depths[len(segments)]++
	g.stats[domain].total++
}

// Process adds a batch of URLs with at most workers running in
// parallel, then returns the report. A cancelled context stops
// dispatching; URLs already dispatched still complete.
func (g *Grouper) Process(ctx context.Context, urls []string, workers int) *Report {
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for _, u := range urls {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return g.Report()
		}
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			defer func() { <-sem }()
			g.Add(u)
		}(u)
	}
	wg.Wait()
	return g.Report()
}

// Report snapshots the accumulated groups, unique paths and per-domain
// analysis. Path lists are sorted for stable output.
func (g *Grouper) Report() *Report {
	g.mu.Lock()
	defer g.mu.Unlock()

	r := &Report{
		Groups:      make(map[string]map[string][]string, len(g.groups)),
		UniquePaths: make(map[string][]string, len(g.paths)),
		Analysis:    make(map[string]DomainAnalysis, len(g.stats)),
		Errors:      append([]URLError(nil), g.errs...),
	}
	for domain, byPath := range g.groups {
		cp := make(map[string][]string, len(byPath))
		for p, us := range byPath {
			cp[p] = append([]string(nil), us...)
		}
		r.Groups[domain] = cp
	}
	for domain, set := range g.paths {
		ps := make([]string, 0, len(set))
		for p := range set {
			ps = append(ps, p)
		}
		sort.Strings(ps)
		r.UniquePaths[domain] = ps
	}
	for domain, st := range g.stats {
		if st.total == 0 {
			continue
		}
		weighted := 0
		dist := make(map[int]int, len(st.depths))
		for depth, count := range st.depths {
			dist[depth] = count
			weighted += depth * count
		}
		r.Analysis[domain] = DomainAnalysis{
			TotalURLs:         st.total,
			UniquePaths:       len(g.paths[domain]),
			DepthDistribution: dist,
			AvgDepth:          float64(weighted) / float64(st.total),
		}
	}
	r.Summary = g.summaryLocked()
	return r
}

// Summary lists (domain, unique path count, total URL count) triples,
// sorted by domain.
func (g *Grouper) Summary() []DomainSummary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.summaryLocked()
}

func (g *Grouper) summaryLocked() []DomainSummary {
	out := make([]DomainSummary, 0, len(g.paths))
	for domain, set := range g.paths {
		out = append(out, DomainSummary{
			Domain:      domain,
			UniquePaths: len(set),
			TotalURLs:   g.stats[domain].total,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

// DomainSummary is one row of Grouper.Summary.
type DomainSummary struct {
	Domain      string `json:"domain"`
	UniquePaths int    `json:"unique_paths"`
	TotalURLs   int    `json:"total_urls"`
}

func parse(rawURL string) (domain string, segments []string, err error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", nil, fmt.Errorf("urlgroup: parse %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", nil, fmt.Errorf("urlgroup: %q has no host", rawURL)
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return u.Host, segments, nil
}
