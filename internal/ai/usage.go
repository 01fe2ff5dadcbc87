package ai

import (
	"sort"
	"sync"
	"time"
)

// ProviderUsage is a point-in-time view of one provider's attempt counters.
type ProviderUsage struct {
	Provider  string    `json:"provider"`
	Successes int64     `json:"successes"`
	Failures  int64     `json:"failures"`
	Rejected  int64     `json:"rejected"`
	Skipped   int64     `json:"skipped"`
	Tokens    int64     `json:"tokens"`
	LastError string    `json:"last_error,omitempty"`
	LastSeen  time.Time `json:"last_seen"`
}

// UsageStats keeps in-memory per-provider attempt counters for this process.
// It is an Observer; register it on the router to feed it.
type UsageStats struct {
	mu    sync.RWMutex
	usage map[string]*ProviderUsage
	now   func() time.Time
}

// NewUsageStats creates an empty usage tracker.
func NewUsageStats() *UsageStats {
	return &UsageStats{
		usage: make(map[string]*ProviderUsage),
		now:   time.Now,
	}
}

func (s *UsageStats) ObserveAttempt(a Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usage[a.Provider]
	if !ok {
		u = &ProviderUsage{Provider: a.Provider}
		s.usage[a.Provider] = u
	}

	switch a.Outcome {
	case OutcomeSuccess:
		u.Successes++
		u.Tokens += int64(a.Tokens)
	case OutcomeSkipped:
		u.Skipped++
	case OutcomeRejected:
		u.Rejected++
	default:
		u.Failures++
	}
	if a.Err != nil && a.Outcome != OutcomeSkipped {
		u.LastError = truncate(a.Err.Error(), 200)
	}
	u.LastSeen = s.now()
}

// Snapshot returns a copy of all counters sorted by provider name.
func (s *UsageStats) Snapshot() []ProviderUsage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ProviderUsage, 0, len(s.usage))
	for _, u := range s.usage {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// Usage returns the counters for one provider.
func (s *UsageStats) Usage(provider string) (ProviderUsage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usage[provider]
	if !ok {
		return ProviderUsage{Provider: provider}, false
	}
	return *u, true
}
