package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cppla/versecraft/live"
	"github.com/cppla/versecraft/models"
	"github.com/cppla/versecraft/stats"
	"github.com/cppla/versecraft/utils"
)

const streamHeartbeat = 15 * time.Second

// StreaksController serves the streak/achievement snapshot and the live
// stream that keeps a connected client current.
type StreaksController struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewStreaksController creates a new controller instance.
func NewStreaksController(db *gorm.DB, rdb *redis.Client) *StreaksController {
	return &StreaksController{db: db, rdb: rdb}
}

// GetStreaks returns the stored snapshot a client seeds its session from:
// the streak row, achievements newest-first and today's activity. The
// stale hint lets a client flag an at-risk streak without ever inferring a
// reset locally; resets only arrive as authoritative updates.
func (c *StreaksController) GetStreaks(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	streak, achievements, today := c.loadSnapshot(userID)

	next, hasNext := stats.NextMilestone(streak.CurrentStreak)
	payload := gin.H{
		"streak":       streak,
		"achievements": achievements,
		"today":        today,
		"stale":        streakIsStale(streak, time.Now()),
	}
	if hasNext {
		payload["next_milestone"] = next
	}
	utils.Success(ctx, payload)
}

// LiveStream is the SSE endpoint backing the streak view. The session lives
// exactly as long as the connection: it is seeded from the store, kept
// current by the feed and torn down, celebration timer included, when the
// client goes away or any feed channel ends.
func (c *StreaksController) LiveStream(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	session := live.NewSession(userID, utils.Sugar)
	celebrator := live.NewCelebrator()
	feed := live.NewFeed(c.rdb, session, celebrator, utils.Sugar)

	if err := feed.Start(ctx.Request.Context()); err != nil {
		utils.Sugar.Warnf("feed subscribe failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusServiceUnavailable, 50340, "live updates unavailable")
		return
	}
	defer feed.Close()

	// Subscribe before the snapshot read, so a change committed in between
	// is either in the snapshot or delivered on the feed; the seed then
	// installs the later of the two states wholesale.
	streak, achievements, today := c.loadSnapshot(userID)
	session.Seed(streak, achievements, today)

	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	clientGone := ctx.Request.Context().Done()
	first := true
	ctx.Stream(func(w io.Writer) bool {
		if first {
			first = false
			ctx.SSEvent("state", session.Snapshot())
			return true
		}
		select {
		case <-clientGone:
			return false
		case <-session.Done():
			return false
		case <-session.Notify():
			ctx.SSEvent("state", session.Snapshot())
		case ev := <-celebrator.Events():
			ctx.SSEvent("celebration", ev)
		case <-heartbeat.C:
			ctx.SSEvent("ping", time.Now().Unix())
		}
		return true
	})
}

// loadSnapshot reads the stored rows, degrading each to its zero value on
// error; seed data is advisory the same way statistics are.
func (c *StreaksController) loadSnapshot(userID uint) (models.WritingStreak, []models.Achievement, models.DailyActivity) {
	streak := models.WritingStreak{UserID: userID}
	if err := c.db.Where("user_id = ?", userID).First(&streak).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Sugar.Warnf("failed to load streak for user %d: %v", userID, err)
	}

	var achievements []models.Achievement
	if err := c.db.Where("user_id = ?", userID).Order("earned_at DESC").Find(&achievements).Error; err != nil {
		utils.Sugar.Warnf("failed to load achievements for user %d: %v", userID, err)
		achievements = nil
	}

	today := models.DailyActivity{UserID: userID, Date: time.Now().Format(models.DateLayout)}
	if err := c.db.Where("user_id = ? AND date = ?", userID, today.Date).First(&today).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Sugar.Warnf("failed to load today's activity for user %d: %v", userID, err)
	}

	return streak, achievements, today
}

// streakIsStale reports whether the last write happened before yesterday,
// meaning the displayed current streak may be about to reset.
func streakIsStale(streak models.WritingStreak, now time.Time) bool {
	if streak.CurrentStreak == 0 || streak.LastWriteDate == nil {
		return false
	}
	yesterdayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
	return streak.LastWriteDate.Before(yesterdayStart)
}
