// Package live keeps a user's streak and achievement state current while
// change events arrive from independent per-table feed channels. The state
// is owned per session, seeded from a stored snapshot and mutated only
// through the merge rules here; nothing in this package surfaces errors to
// its callers beyond logging.
package live

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Source identifies which record table a change event belongs to.
type Source string

const (
	SourceStreaks      Source = "writing_streaks"
	SourceAchievements Source = "user_achievements"
	SourceActivity     Source = "daily_activity"
)

// EventKind is the kind of change delivered on a feed channel.
type EventKind string

const (
	EventInserted EventKind = "inserted"
	EventUpdated  EventKind = "updated"
	EventDeleted  EventKind = "deleted"
)

func (k EventKind) valid() bool {
	switch k {
	case EventInserted, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// ChangeEvent is the wire envelope published on feed channels.
type ChangeEvent struct {
	Event  EventKind       `json:"event"`
	Record json.RawMessage `json:"record"`
}

// StreakChannel returns the per-user channel carrying streak row changes.
func StreakChannel(userID uint) string {
	return fmt.Sprintf("feed:streaks:%d", userID)
}

// AchievementChannel returns the per-user channel carrying achievement changes.
func AchievementChannel(userID uint) string {
	return fmt.Sprintf("feed:achievements:%d", userID)
}

// ActivityChannel returns the per-user channel carrying daily activity changes.
func ActivityChannel(userID uint) string {
	return fmt.Sprintf("feed:activity:%d", userID)
}

// Publish sends a change event for record on the given channel. Used by the
// authoring flow after it commits a write.
func Publish(ctx context.Context, rdb *redis.Client, channel string, kind EventKind, record interface{}) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ChangeEvent{Event: kind, Record: raw})
	if err != nil {
		return err
	}
	return rdb.Publish(ctx, channel, payload).Err()
}
