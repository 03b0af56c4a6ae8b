package chart

import (
	"sync"
	"time"
)

// ActiveElement addresses one data point of one dataset.
type ActiveElement struct {
	DatasetIndex int `json:"datasetIndex"`
	Index        int `json:"index"`
}

// Handle is a live chart instance. Calls on a destroyed handle are no-ops.
type Handle interface {
	Kind() Kind
	Labels() []time.Time
	NearestIndex(x time.Time) (int, bool)
	SetActiveElements(els []ActiveElement)
	SetTooltipActive(els []ActiveElement)
	Update()
	Destroy()
}

// State is a point-in-time view of an instance's interactive state.
type State struct {
	Kind      Kind            `json:"kind"`
	Active    []ActiveElement `json:"active"`
	Tooltip   []ActiveElement `json:"tooltip"`
	Renders   int             `json:"renders"`
	Destroyed bool            `json:"destroyed"`
}

// Instance is the server-side state of one rendered chart.
type Instance struct {
	mu        sync.Mutex
	cfg       Config
	active    []ActiveElement
	tooltip   []ActiveElement
	renders   int
	destroyed bool
}

var _ Handle = (*Instance)(nil)

// New creates an instance and counts the initial draw.
func New(cfg Config) *Instance {
	return &Instance{cfg: cfg, renders: 1}
}

func (i *Instance) Kind() Kind {
	return i.cfg.Kind
}

func (i *Instance) Config() Config {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cfg
}

func (i *Instance) Labels() []time.Time {
	return i.cfg.Labels
}

// NearestIndex resolves x to the label closest in time. Ties go to the earlier index.
func (i *Instance) NearestIndex(x time.Time) (int, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed || len(i.cfg.Labels) == 0 {
		return 0, false
	}

	best, bestDist := 0, absDuration(i.cfg.Labels[0].Sub(x))
	for idx := 1; idx < len(i.cfg.Labels); idx++ {
		if d := absDuration(i.cfg.Labels[idx].Sub(x)); d < bestDist {
			best, bestDist = idx, d
		}
	}
	return best, true
}

func (i *Instance) SetActiveElements(els []ActiveElement) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return
	}
	i.active = append([]ActiveElement(nil), els...)
}

func (i *Instance) SetTooltipActive(els []ActiveElement) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return
	}
	i.tooltip = append([]ActiveElement(nil), els...)
}

// Update redraws the chart.
func (i *Instance) Update() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return
	}
	i.renders++
}

func (i *Instance) Destroy() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.destroyed = true
	i.active = nil
	i.tooltip = nil
}

func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return State{
		Kind:      i.cfg.Kind,
		Active:    append([]ActiveElement(nil), i.active...),
		Tooltip:   append([]ActiveElement(nil), i.tooltip...),
		Renders:   i.renders,
		Destroyed: i.destroyed,
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
