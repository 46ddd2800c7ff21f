package repository

import (
	"strconv"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/formatter"
	gocache "github.com/patrickmn/go-cache"
)

// ReportCache keeps the last composed report per user for downloads
type ReportCache struct {
	cache *gocache.Cache
}

func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{
		cache: gocache.New(ttl, cleanupInterval(ttl)),
	}
}

// Put stores the user's latest report
func (c *ReportCache) Put(userID int64, report formatter.Report) {
	c.cache.SetDefault(strconv.FormatInt(userID, 10), report)
}

// Get returns the user's latest report, entity.ErrReportNotFound once expired
func (c *ReportCache) Get(userID int64) (formatter.Report, error) {
	v, ok := c.cache.Get(strconv.FormatInt(userID, 10))
	if !ok {
		return formatter.Report{}, entity.ErrReportNotFound
	}
	return v.(formatter.Report), nil
}
