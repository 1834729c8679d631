package searcher

import "time"

// SearchMetrics captures the cost of a single move search.
type SearchMetrics struct {
	Depth    int
	Nodes    int64
	Cutoffs  int64
	Duration time.Duration
}

type Collector interface {
	Start(depth int)
	AddNode()
	AddCutoff()
	Complete() SearchMetrics
}

type collector struct {
	depth     int
	startTime time.Time
	nodes     int64
	cutoffs   int64
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start(depth int) {
	c.depth = depth
	c.startTime = time.Now()
	c.nodes = 0
	c.cutoffs = 0
}

func (c *collector) AddNode() {
	c.nodes++
}

func (c *collector) AddCutoff() {
	c.cutoffs++
}

func (c *collector) Complete() SearchMetrics {
	return SearchMetrics{
		Depth:    c.depth,
		Nodes:    c.nodes,
		Cutoffs:  c.cutoffs,
		Duration: time.Since(c.startTime),
	}
}

type noCollector struct{}

func NewNoCollector() Collector {
	return &noCollector{}
}

func (noCollector) Start(depth int)         {}
func (noCollector) AddNode()                {}
func (noCollector) AddCutoff()              {}
func (noCollector) Complete() SearchMetrics { return SearchMetrics{} }
