package live

import (
	"sync"
	"time"

	"github.com/cppla/versecraft/models"
	"github.com/cppla/versecraft/stats"
)

const (
	milestoneDwell   = 3 * time.Second
	achievementDwell = 4 * time.Second
)

// CelebrationKind distinguishes what is being celebrated.
type CelebrationKind string

const (
	CelebrateMilestone   CelebrationKind = "milestone"
	CelebrateAchievement CelebrationKind = "achievement"
)

// Celebration is the payload exposed while the trigger is celebrating.
type Celebration struct {
	Kind        CelebrationKind     `json:"kind"`
	Milestone   stats.Milestone     `json:"milestone,omitempty"`
	Achievement *models.Achievement `json:"achievement,omitempty"`
	StartedAt   time.Time           `json:"started_at"`
}

// Celebrator is a two-state machine (idle, celebrating) observing state
// transitions. It never mutates the session; it only exposes the triggering
// payload for a fixed dwell and then falls back to idle. A second trigger
// arriving mid-celebration replaces the payload and restarts the dwell
// timer, last trigger wins.
type Celebrator struct {
	mu               sync.Mutex
	milestoneDwell   time.Duration
	achievementDwell time.Duration
	timer            *time.Timer
	gen              uint64
	current          *Celebration
	stopped          bool
	events           chan Celebration
}

// NewCelebrator creates an idle trigger with the default dwell times.
func NewCelebrator() *Celebrator {
	return &Celebrator{
		milestoneDwell:   milestoneDwell,
		achievementDwell: achievementDwell,
		events:           make(chan Celebration, 1),
	}
}

// StreakChanged fires when an applied streak update lands the current streak
// exactly on a configured milestone threshold.
func (c *Celebrator) StreakChanged(prev, next int) {
	if next == prev {
		return
	}
	m, ok := stats.MilestoneAt(next)
	if !ok {
		return
	}
	c.trigger(Celebration{Kind: CelebrateMilestone, Milestone: m}, c.milestoneDwell)
}

// AchievementUnlocked fires when an achievement-insert event is applied.
func (c *Celebrator) AchievementUnlocked(a models.Achievement) {
	c.trigger(Celebration{Kind: CelebrateAchievement, Achievement: &a}, c.achievementDwell)
}

// Current returns the active payload while celebrating.
func (c *Celebrator) Current() (Celebration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Celebration{}, false
	}
	return *c.current, true
}

// Events delivers each new celebration, keeping only the latest when the
// consumer lags. Dwell expiry is not announced; consumers read Current.
func (c *Celebrator) Events() <-chan Celebration {
	return c.events
}

// Stop tears the trigger down and clears any pending dwell timer so nothing
// fires after the owning session is gone.
func (c *Celebrator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Celebrator) trigger(cel Celebration, dwell time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	cel.StartedAt = time.Now()
	c.current = &cel
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	// The generation guard keeps a superseded timer that already fired from
	// clearing the replacement celebration.
	c.timer = time.AfterFunc(dwell, func() { c.expire(gen) })

	// Last celebration wins when nobody is reading.
	select {
	case c.events <- cel:
	default:
		select {
		case <-c.events:
		default:
		}
		select {
		case c.events <- cel:
		default:
		}
	}
}

func (c *Celebrator) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || gen != c.gen {
		return
	}
	c.current = nil
	c.timer = nil
}
