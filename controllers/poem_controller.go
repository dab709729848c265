package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/versecraft/live"
	"github.com/cppla/versecraft/models"
	"github.com/cppla/versecraft/utils"
)

// wordsPerMinute approximates drafting speed for the minutes-spent estimate
// when the client does not report a session duration.
const wordsPerMinute = 50

// PoemController is the authoring flow: it persists poems and, as a side
// effect of each creation, advances the daily activity log, the streak row
// and threshold achievements, then announces the changes on the user's feed
// channels.
type PoemController struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewPoemController creates a new controller instance.
func NewPoemController(db *gorm.DB, rdb *redis.Client) *PoemController {
	return &PoemController{db: db, rdb: rdb}
}

// achievementRule awards a badge the first time its condition holds.
type achievementRule struct {
	name        string
	description string
	earned      func(totalPoems int64, streak models.WritingStreak) bool
}

var achievementRules = []achievementRule{
	{"First Poem", "Write your first poem", func(n int64, _ models.WritingStreak) bool { return n >= 1 }},
	{"Ten Poems", "Write ten poems", func(n int64, _ models.WritingStreak) bool { return n >= 10 }},
	{"Prolific Pen", "Write fifty poems", func(n int64, _ models.WritingStreak) bool { return n >= 50 }},
	{"Week of Words", "Keep a seven day writing streak", func(_ int64, s models.WritingStreak) bool { return s.CurrentStreak >= 7 }},
	{"Monthly Muse", "Keep a thirty day writing streak", func(_ int64, s models.WritingStreak) bool { return s.CurrentStreak >= 30 }},
}

// CreatePoem stores a poem and updates the derived rows in one transaction.
func (p *PoemController) CreatePoem(ctx *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required,min=1"`
		Content string `json:"content" binding:"required"`
		Form    string `json:"form"`
		Minutes int    `json:"minutes"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}
	content := utils.Sanitize(req.Content)

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	now := time.Now()
	words := len(strings.Fields(content))
	minutes := req.Minutes
	if minutes <= 0 {
		minutes = (words + wordsPerMinute - 1) / wordsPerMinute
	}

	poem := models.Poem{
		UserID:    userID,
		Title:     title,
		Content:   content,
		Form:      strings.TrimSpace(req.Form),
		WordCount: words,
		CreatedAt: now,
	}

	var (
		streak   models.WritingStreak
		activity models.DailyActivity
		awarded  []models.Achievement
	)

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&poem).Error; err != nil {
			return err
		}

		var err error
		activity, err = upsertTodayActivity(tx, userID, now, minutes, words)
		if err != nil {
			return err
		}

		streak, err = advanceStreak(tx, userID, now)
		if err != nil {
			return err
		}

		var totalPoems int64
		if err := tx.Model(&models.Poem{}).Where("user_id = ?", userID).Count(&totalPoems).Error; err != nil {
			return err
		}

		awarded, err = awardAchievements(tx, userID, now, totalPoems, streak)
		return err
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create poem")
		return
	}

	p.announce(ctx.Request.Context(), userID, streak, activity, awarded)
	utils.InvalidateByPrefix(fmt.Sprintf("stats:%d:", userID))

	utils.Success(ctx, gin.H{
		"poem":             poem,
		"streak":           streak,
		"new_achievements": awarded,
	})
}

// ListMyPoems returns the caller's poems, newest first.
func (p *PoemController) ListMyPoems(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(ctx.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	var total int64
	if err := p.db.Model(&models.Poem{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count poems")
		return
	}

	var poems []models.Poem
	if err := p.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&poems).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list poems")
		return
	}

	utils.Success(ctx, gin.H{"poems": poems, "total": total, "page": page, "size": size})
}

// DeletePoem removes one of the caller's poems.
func (p *PoemController) DeletePoem(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	id := ctx.Param("id")
	var poem models.Poem
	if err := p.db.First(&poem, id).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "poem not found")
		return
	}
	if poem.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40320, "not your poem")
		return
	}

	if err := p.db.Delete(&poem).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to delete poem")
		return
	}

	utils.InvalidateByPrefix(fmt.Sprintf("stats:%d:", userID))
	utils.Success(ctx, gin.H{"message": "deleted"})
}

// announce publishes the post-commit changes on the user's feed channels.
// Delivery is best-effort; a failed publish only loses a live refresh.
func (p *PoemController) announce(ctx context.Context, userID uint, streak models.WritingStreak, activity models.DailyActivity, awarded []models.Achievement) {
	if p.rdb == nil {
		return
	}
	if err := live.Publish(ctx, p.rdb, live.StreakChannel(userID), live.EventUpdated, streak); err != nil {
		utils.Sugar.Warnf("failed to publish streak update for user %d: %v", userID, err)
	}
	if err := live.Publish(ctx, p.rdb, live.ActivityChannel(userID), live.EventUpdated, activity); err != nil {
		utils.Sugar.Warnf("failed to publish activity update for user %d: %v", userID, err)
	}
	for _, a := range awarded {
		if err := live.Publish(ctx, p.rdb, live.AchievementChannel(userID), live.EventInserted, a); err != nil {
			utils.Sugar.Warnf("failed to publish achievement for user %d: %v", userID, err)
		}
	}
}

// upsertTodayActivity adds this session's numbers to today's activity row.
func upsertTodayActivity(tx *gorm.DB, userID uint, now time.Time, minutes, words int) (models.DailyActivity, error) {
	dateKey := now.Format(models.DateLayout)

	var activity models.DailyActivity
	err := tx.Where("user_id = ? AND date = ?", userID, dateKey).First(&activity).Error
	switch {
	case err == nil:
		activity.PoemsWritten++
		activity.MinutesSpent += minutes
		activity.WordCount += words
		if err := tx.Save(&activity).Error; err != nil {
			return activity, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		activity = models.DailyActivity{
			UserID:       userID,
			Date:         dateKey,
			PoemsWritten: 1,
			MinutesSpent: minutes,
			WordCount:    words,
		}
		if err := tx.Create(&activity).Error; err != nil {
			return activity, err
		}
	default:
		return activity, err
	}
	return activity, nil
}

// advanceStreak moves the streak row forward for a write at now. Only the
// first poem of a day changes the streak; later poems leave it untouched.
func advanceStreak(tx *gorm.DB, userID uint, now time.Time) (models.WritingStreak, error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var streak models.WritingStreak
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&streak).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return streak, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = models.WritingStreak{UserID: userID}
	}

	if streak.LastWriteDate != nil && isSameDay(*streak.LastWriteDate, todayStart) {
		return streak, nil
	}

	if streak.LastWriteDate != nil && isYesterday(*streak.LastWriteDate, todayStart) {
		streak.CurrentStreak++
	} else {
		streak.CurrentStreak = 1
	}
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.TotalWritingDays++
	writeTime := now
	streak.LastWriteDate = &writeTime

	if err := tx.Save(&streak).Error; err != nil {
		return streak, err
	}
	return streak, nil
}

// awardAchievements inserts any rule that newly holds and is not yet earned.
func awardAchievements(tx *gorm.DB, userID uint, now time.Time, totalPoems int64, streak models.WritingStreak) ([]models.Achievement, error) {
	var earned []models.Achievement
	if err := tx.Where("user_id = ?", userID).Find(&earned).Error; err != nil {
		return nil, err
	}
	have := make(map[string]struct{}, len(earned))
	for _, a := range earned {
		have[a.Name] = struct{}{}
	}

	var awarded []models.Achievement
	for _, rule := range achievementRules {
		if _, ok := have[rule.name]; ok {
			continue
		}
		if !rule.earned(totalPoems, streak) {
			continue
		}
		a := models.Achievement{
			UserID:      userID,
			Name:        rule.name,
			Description: rule.description,
			EarnedAt:    now,
		}
		if err := tx.Create(&a).Error; err != nil {
			return awarded, err
		}
		awarded = append(awarded, a)
	}
	return awarded, nil
}

func isSameDay(t, dayStart time.Time) bool {
	t = t.In(dayStart.Location())
	return t.Year() == dayStart.Year() && t.YearDay() == dayStart.YearDay()
}

func isYesterday(t, dayStart time.Time) bool {
	return isSameDay(t, dayStart.AddDate(0, 0, -1))
}
