package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsprism/analytics-server/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheDuration  = 10 * time.Minute
	defaultRequestTimeout = 10 * time.Second
	defaultListLimit      = 10
	maxListLimit          = 100
)

type CacheKeyType string

const (
	cacheKeyMediaSupport    CacheKeyType = "api:media_support"
	cacheKeyMediaSupportTop CacheKeyType = "api:media_support_top"
	cacheKeyPoliticalTrend  CacheKeyType = "api:political_trend"
	cacheKeyRecentIssues    CacheKeyType = "api:recent_issues"
	cacheKeyUserReport      CacheKeyType = "api:user_report"
)

type Handlers struct {
	analytics AnalyticsService
	cache     Cacher
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration
}

// NewHandlers initializes the HTTP handlers.
func NewHandlers(analytics AnalyticsService, cache Cacher, logger *zap.Logger, ttl time.Duration) *Handlers {
	if analytics == nil {
		panic("nil AnalyticsService provided to NewHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &Handlers{
		analytics: analytics,
		cache:     cache,
		logger:    logger.Named("api-handler"),
		cacheTTL:  ttl,
	}
}

// Register attaches all routes under /api.
func (h *Handlers) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/media-support", h.GetMediaSupportScores)
	api.GET("/media-support/top", h.GetTopMediaBySupportRatio)
	api.GET("/trends/political", h.GetPoliticalTrend)
	api.GET("/issues/recent", h.GetRecentIssues)
	api.GET("/users/:id/report", h.GetUserActivityReport)
}

func parseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}

func parseDateRange(c *gin.Context) (start, end time.Time, err error) {
	startRaw := c.Query("start")
	endRaw := c.Query("end")
	if startRaw == "" || endRaw == "" {
		err = fmt.Errorf("start and end dates are required")
		return
	}

	start, err = time.Parse("2006-01-02", startRaw)
	if err != nil {
		err = fmt.Errorf("invalid start date %q: use YYYY-MM-DD", startRaw)
		return
	}
	end, err = time.Parse("2006-01-02", endRaw)
	if err != nil {
		err = fmt.Errorf("invalid end date %q: use YYYY-MM-DD", endRaw)
		return
	}

	if end.Before(start) {
		err = fmt.Errorf("end date must not be before start date")
	}
	return
}

func normalizeDateKey(prefix CacheKeyType, start, end time.Time) string {
	s := start.UTC().Truncate(24 * time.Hour).Format("2006-01-02")
	e := end.UTC().Truncate(24 * time.Hour).Format("2006-01-02")
	return fmt.Sprintf("%s:%s:%s", prefix, s, e)
}

func (h *Handlers) handleError(c *gin.Context, op string, err error) {
	// The deadline may come from the client's request context or from the
	// handler's own inner timeout; either way it is a timeout, not a 500.
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		c.Request.Context().Err() == context.DeadlineExceeded:
		h.logger.Warn("request timeout", zap.String("op", op))
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
		return
	case errors.Is(err, context.Canceled),
		c.Request.Context().Err() == context.Canceled:
		h.logger.Warn("request canceled", zap.String("op", op))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "request canceled"})
		return
	}

	switch {
	case errors.Is(err, service.ErrNoData):
		h.logger.Info("no data for request", zap.String("op", op))
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no data for the requested view"})
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("%s failed", op)})
	}
}

func (h *Handlers) GetMediaSupportScores(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultRequestTimeout)
	defer cancel()

	rows, err := FindAndCache(ctx, h.cache, &h.sfGroup, string(cacheKeyMediaSupport), h.cacheTTL, h.logger, func(fetchCtx context.Context) ([]service.SupportRatioRow, error) {
		return h.analytics.MediaSupportScores(fetchCtx)
	})
	if err != nil {
		h.handleError(c, "GetMediaSupportScores", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"scores": rows})
}

func (h *Handlers) GetTopMediaBySupportRatio(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultRequestTimeout)
	defer cancel()

	cacheKey := fmt.Sprintf("%s:%d", cacheKeyMediaSupportTop, limit)

	summaries, err := FindAndCache(ctx, h.cache, &h.sfGroup, cacheKey, h.cacheTTL, h.logger, func(fetchCtx context.Context) ([]service.MediaSupportSummary, error) {
		return h.analytics.TopMediaBySupportRatio(fetchCtx, limit)
	})
	if err != nil {
		h.handleError(c, "GetTopMediaBySupportRatio", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"media": summaries})
}

func (h *Handlers) GetPoliticalTrend(c *gin.Context) {
	start, end, err := parseDateRange(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultRequestTimeout)
	defer cancel()

	cacheKey := normalizeDateKey(cacheKeyPoliticalTrend, start, end)

	points, err := FindAndCache(ctx, h.cache, &h.sfGroup, cacheKey, h.cacheTTL, h.logger, func(fetchCtx context.Context) ([]service.TrendPoint, error) {
		return h.analytics.PoliticalTrendByDate(fetchCtx, start, end)
	})
	if err != nil {
		h.handleError(c, "GetPoliticalTrend", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trend": points})
}

func (h *Handlers) GetRecentIssues(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultRequestTimeout)
	defer cancel()

	cacheKey := fmt.Sprintf("%s:%d", cacheKeyRecentIssues, limit)

	issues, err := FindAndCache(ctx, h.cache, &h.sfGroup, cacheKey, h.cacheTTL, h.logger, func(fetchCtx context.Context) ([]service.IssueSummary, error) {
		return h.analytics.RecentIssues(fetchCtx, limit)
	})
	if err != nil {
		h.handleError(c, "GetRecentIssues", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

func (h *Handlers) GetUserActivityReport(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultRequestTimeout)
	defer cancel()

	// Key on the current UTC day so a user's report is recomputed at most once
	// per cache TTL within a day.
	day := time.Now().UTC().Format("2006-01-02")
	cacheKey := fmt.Sprintf("%s:%s:%d:%s", cacheKeyUserReport, userID, days, day)

	report, err := FindAndCache(ctx, h.cache, &h.sfGroup, cacheKey, h.cacheTTL, h.logger, func(fetchCtx context.Context) (service.UserActivityReport, error) {
		return h.analytics.UserActivityReport(fetchCtx, userID, days, time.Time{})
	})
	if err != nil {
		h.handleError(c, "GetUserActivityReport", err)
		return
	}

	c.JSON(http.StatusOK, report)
}
