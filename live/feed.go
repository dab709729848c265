package live

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cppla/versecraft/models"
)

// Feed fans three per-user pub/sub channels into one session. Each channel
// gets its own consumer goroutine, so delivery order holds within a channel
// and nothing is assumed across channels; the session's merge rules stay
// valid under any interleaving. When any one channel terminates the whole
// feed is torn down; a partially subscribed session never keeps running.
type Feed struct {
	rdb        *redis.Client
	session    *Session
	celebrator *Celebrator
	log        *zap.SugaredLogger

	wg sync.WaitGroup

	mu     sync.Mutex
	closed bool
	subs   []*redis.PubSub
}

// NewFeed wires a feed for the session's user. The celebrator may be nil.
func NewFeed(rdb *redis.Client, session *Session, celebrator *Celebrator, log *zap.SugaredLogger) *Feed {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Feed{rdb: rdb, session: session, celebrator: celebrator, log: log}
}

// Start subscribes all three channels and begins consuming. If any
// subscription fails the feed closes and the error is returned; there is no
// partially live state. No consumer runs until every channel is subscribed
// and owned by the feed, so a channel dropping early still tears down the
// other two through Close.
func (f *Feed) Start(ctx context.Context) error {
	channels := []struct {
		source  Source
		channel string
	}{
		{SourceStreaks, StreakChannel(f.session.userID)},
		{SourceAchievements, AchievementChannel(f.session.userID)},
		{SourceActivity, ActivityChannel(f.session.userID)},
	}

	var subs []*redis.PubSub
	for _, ch := range channels {
		ps := f.rdb.Subscribe(ctx, ch.channel)
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			closeSubs(subs)
			f.Close()
			return err
		}
		subs = append(subs, ps)
	}

	if !f.adopt(subs) {
		closeSubs(subs)
		return errors.New("feed already closed")
	}

	for i, ch := range channels {
		f.wg.Add(1)
		go f.consume(ch.source, subs[i])
	}
	return nil
}

// adopt hands the subscriptions to the feed for teardown. Refused once the
// feed is closed; the caller then owns closing them.
func (f *Feed) adopt(subs []*redis.PubSub) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.subs = subs
	return true
}

func closeSubs(subs []*redis.PubSub) {
	for _, ps := range subs {
		_ = ps.Close()
	}
}

func (f *Feed) consume(source Source, ps *redis.PubSub) {
	defer f.wg.Done()
	for msg := range ps.Channel() {
		f.Dispatch(source, []byte(msg.Payload))
	}
	// One channel closing ends the session; the remaining subscriptions are
	// torn down with it.
	f.Close()
}

// Dispatch parses one delivered payload and routes it to the session by
// source table. A malformed event is dropped with a warning; a single bad
// message must not take the session down.
func (f *Feed) Dispatch(source Source, payload []byte) {
	var ev ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil || !ev.Event.valid() || len(ev.Record) == 0 {
		f.log.Warnw("dropping malformed change event", "source", source, "err", err)
		return
	}

	switch source {
	case SourceStreaks:
		var st models.WritingStreak
		if err := json.Unmarshal(ev.Record, &st); err != nil {
			f.log.Warnw("dropping malformed streak record", "err", err)
			return
		}
		if ev.Event == EventDeleted {
			return
		}
		prev, applied := f.session.ApplyStreakUpdate(st)
		if applied && f.celebrator != nil {
			f.celebrator.StreakChanged(prev, st.CurrentStreak)
		}
	case SourceAchievements:
		var a models.Achievement
		if err := json.Unmarshal(ev.Record, &a); err != nil {
			f.log.Warnw("dropping malformed achievement record", "err", err)
			return
		}
		applied := f.session.ApplyAchievementEvent(ev.Event, a)
		if applied && ev.Event == EventInserted && f.celebrator != nil {
			f.celebrator.AchievementUnlocked(a)
		}
	case SourceActivity:
		var l models.DailyActivity
		if err := json.Unmarshal(ev.Record, &l); err != nil {
			f.log.Warnw("dropping malformed activity record", "err", err)
			return
		}
		f.session.ApplyTodayLogUpdate(l)
	default:
		f.log.Warnw("change event from unknown source dropped", "source", source)
	}
}

// Close tears down every subscription, the session and the celebrator
// together. Safe to call from any goroutine, any number of times.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	subs := f.subs
	f.subs = nil
	f.mu.Unlock()

	closeSubs(subs)
	f.session.Close()
	if f.celebrator != nil {
		f.celebrator.Stop()
	}
}

// Wait blocks until all consumer goroutines have exited.
func (f *Feed) Wait() {
	f.wg.Wait()
}
