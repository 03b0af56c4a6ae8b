package chart

import (
	"sync"
	"time"
)

// Highlight is one companion chart activated by a hover on the primary chart.
type Highlight struct {
	Chart Kind      `json:"chart"`
	Index int       `json:"index"`
	Time  time.Time `json:"ts"`
}

// HoverResult describes the outcome of one primary pointer event.
type HoverResult struct {
	Matched      bool        `json:"matched"`
	Time         time.Time   `json:"ts"`
	PrimaryIndex int         `json:"primaryIndex"`
	Highlights   []Highlight `json:"highlights"`
}

// Synchronizer mirrors a hover on the primary chart onto its companions.
// Companions are matched by exact timestamp, never by position, since they may be
// sampled at a different frequency than the primary.
type Synchronizer struct {
	mu         sync.Mutex
	primary    Handle
	companions []Handle
}

func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

// Register replaces the tracked charts.
func (s *Synchronizer) Register(primary Handle, companions ...Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary = primary
	s.companions = append([]Handle(nil), companions...)
}

// Reset forgets every chart.
func (s *Synchronizer) Reset() {
	s.Register(nil)
}

// PointerMove handles a pointer at x on the primary chart. A companion lacking the
// resolved timestamp keeps whatever highlight it had.
func (s *Synchronizer) PointerMove(x time.Time) HoverResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.primary == nil {
		return HoverResult{}
	}
	idx, ok := s.primary.NearestIndex(x)
	if !ok {
		return HoverResult{}
	}
	ts := s.primary.Labels()[idx]

	res := HoverResult{Matched: true, Time: ts, PrimaryIndex: idx}
	for _, c := range s.companions {
		match := indexOf(c.Labels(), ts)
		if match < 0 {
			continue
		}
		els := []ActiveElement{{DatasetIndex: 0, Index: match}}
		c.SetActiveElements(els)
		c.SetTooltipActive(els)
		c.Update()
		res.Highlights = append(res.Highlights, Highlight{Chart: c.Kind(), Index: match, Time: ts})
	}
	return res
}

// PointerLeave clears the highlight on every companion.
func (s *Synchronizer) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.primary == nil {
		return
	}
	for _, c := range s.companions {
		c.SetActiveElements(nil)
		c.SetTooltipActive(nil)
		c.Update()
	}
}

func indexOf(labels []time.Time, ts time.Time) int {
	for i, l := range labels {
		if l.Equal(ts) {
			return i
		}
	}
	return -1
}
