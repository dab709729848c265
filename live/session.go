package live

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/versecraft/models"
)

// Session owns the authoritative in-memory streak and achievement state for
// one connected client. It is seeded once from the stored snapshot and then
// kept current by the feed's apply calls. All mutation is serialized under
// one mutex; a closed session silently ignores further applies.
type Session struct {
	mu     sync.Mutex
	userID uint
	now    func() time.Time

	streak       models.WritingStreak
	achievements []models.Achievement
	activity     models.DailyActivity
	seeded       bool
	closed       bool

	notify chan struct{}
	done   chan struct{}
	log    *zap.SugaredLogger
}

// StateSnapshot is a copy of the session state handed to presentation.
type StateSnapshot struct {
	Streak       models.WritingStreak `json:"streak"`
	Achievements []models.Achievement `json:"achievements"`
	Today        models.DailyActivity `json:"today"`
}

// NewSession creates an empty session for the given user.
func NewSession(userID uint, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Session{
		userID: userID,
		now:    time.Now,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		log:    log,
	}
}

// Seed installs the stored snapshot. Called once on session start.
// Achievements are kept newest-first by earned time.
func (s *Session) Seed(streak models.WritingStreak, achievements []models.Achievement, todayLog models.DailyActivity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.streak = streak
	s.achievements = append([]models.Achievement(nil), achievements...)
	s.activity = todayLog
	s.seeded = true
	s.wake()
}

// ApplyStreakUpdate replaces the streak wholesale, last writer wins. The
// source of truth is external; no local prediction happens here. When an
// increment arrives before its longest-streak recompute, longest is raised
// to keep currentStreak <= longestStreak after every merge.
// Returns the previous current streak and whether the update was applied.
func (s *Session) ApplyStreakUpdate(next models.WritingStreak) (prev int, applied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	prev = s.streak.CurrentStreak
	if next.LongestStreak < next.CurrentStreak {
		next.LongestStreak = next.CurrentStreak
	}
	s.streak = next
	s.wake()
	return prev, true
}

// ApplyAchievementEvent maintains the achievement list: inserts prepend,
// updates replace by identity, deletes remove by identity. Unknown
// identities on update or delete are ignored rather than treated as errors.
// Reports whether the event changed the list.
func (s *Session) ApplyAchievementEvent(kind EventKind, a models.Achievement) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	switch kind {
	case EventInserted:
		s.achievements = append([]models.Achievement{a}, s.achievements...)
	case EventUpdated:
		idx := s.indexOf(a)
		if idx < 0 {
			s.log.Debugw("achievement update for unknown identity ignored", "user_id", s.userID, "name", a.Name)
			return false
		}
		s.achievements[idx] = a
	case EventDeleted:
		idx := s.indexOf(a)
		if idx < 0 {
			return false
		}
		s.achievements = append(s.achievements[:idx], s.achievements[idx+1:]...)
	default:
		return false
	}
	s.wake()
	return true
}

// ApplyTodayLogUpdate replaces today's activity numbers. Rows for any other
// date belong to historical aggregation and are ignored on this path.
func (s *Session) ApplyTodayLogUpdate(l models.DailyActivity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	today := s.now().Format(models.DateLayout)
	if l.Date != today {
		s.log.Debugw("activity update for non-today date ignored", "user_id", s.userID, "date", l.Date)
		return false
	}
	s.activity = l
	s.wake()
	return true
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StateSnapshot{
		Streak:       s.streak,
		Achievements: append([]models.Achievement(nil), s.achievements...),
		Today:        s.activity,
	}
}

// Notify signals after each applied change, coalescing bursts.
func (s *Session) Notify() <-chan struct{} {
	return s.notify
}

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close marks the session terminal. Later applies are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// indexOf matches by row ID when both sides carry one, falling back to name.
func (s *Session) indexOf(a models.Achievement) int {
	for i := range s.achievements {
		if a.ID != 0 && s.achievements[i].ID != 0 {
			if s.achievements[i].ID == a.ID {
				return i
			}
			continue
		}
		if s.achievements[i].Name == a.Name {
			return i
		}
	}
	return -1
}

func (s *Session) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
