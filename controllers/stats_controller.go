package controllers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cppla/versecraft/live"
	"github.com/cppla/versecraft/stats"
	"github.com/cppla/versecraft/utils"
)

const statsCacheTTL = time.Minute

// StatsController serves the derived writing statistics. Each user gets one
// loader so that overlapping requests with different ranges resolve to the
// most recently selected range rather than whichever response lands last.
type StatsController struct {
	db  *gorm.DB
	rdb *redis.Client

	mu      sync.Mutex
	loaders map[uint]*live.Loader
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB, rdb *redis.Client) *StatsController {
	return &StatsController{db: db, rdb: rdb, loaders: map[uint]*live.Loader{}}
}

// GetStatistics computes the caller's statistics for the requested range.
// Failures never surface as errors here: statistics are advisory, so the
// response degrades to cached, last-known or zero values.
func (s *StatsController) GetStatistics(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, 401, 40110, "unauthorized")
		return
	}

	rng, ok := stats.ParseRange(ctx.DefaultQuery("range", string(stats.RangeMonth)))
	if !ok {
		utils.Error(ctx, 400, 40040, "range must be week, month or year")
		return
	}

	cacheKey := fmt.Sprintf("stats:%d:%s", userID, rng)
	var cached stats.Statistics
	if utils.CacheGetJSON(cacheKey, &cached) {
		utils.Success(ctx, cached)
		return
	}

	result, applied := s.loaderFor(userID).Load(ctx.Request.Context(), rng, time.Now())
	// A superseded or failed load falls back to statistics that may belong
	// to a different range; caching those under rng's key would serve the
	// wrong bucket density for a full TTL.
	if applied {
		utils.CacheSetJSON(cacheKey, result, statsCacheTTL)
	}
	utils.Success(ctx, result)
}

func (s *StatsController) loaderFor(userID uint) *live.Loader {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.loaders[userID]; ok {
		return l
	}
	l := live.NewLoader(userID, s.fetchSnapshot, utils.Sugar)
	s.loaders[userID] = l
	return l
}

// fetchSnapshot pulls the full record snapshot for a user. The aggregation
// engine needs the complete history for streak backfill, so the range only
// selects the window later, not the query.
func (s *StatsController) fetchSnapshot(ctx context.Context, userID uint, _ stats.Range) (live.Snapshot, error) {
	var snap live.Snapshot
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&snap.Poems).Error; err != nil {
		return live.Snapshot{}, err
	}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Find(&snap.Logs).Error; err != nil {
		return live.Snapshot{}, err
	}
	return snap, nil
}
