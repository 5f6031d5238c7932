package application

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/example/resource-planner/internal/calendar"
)

// warningCache stores recently computed conflict warnings so repeated
// availability and list queries skip detector execution while the underlying
// commitments remain unchanged. Any schedule, vacation or assignment write
// purges the whole cache; entries also age out on their own.
type warningCache struct {
	lru *expirable.LRU[string, []ConflictWarning]
}

func newWarningCache(ttl time.Duration, maxEntries int) *warningCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	return &warningCache{
		lru: expirable.NewLRU[string, []ConflictWarning](maxEntries, nil, ttl),
	}
}

func (c *warningCache) Get(key string) ([]ConflictWarning, bool) {
	if c == nil {
		return nil, false
	}
	warnings, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return cloneWarnings(warnings), true
}

func (c *warningCache) Store(key string, warnings []ConflictWarning) {
	if c == nil {
		return
	}
	c.lru.Add(key, cloneWarnings(warnings))
}

func (c *warningCache) Invalidate() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func cloneWarnings(warnings []ConflictWarning) []ConflictWarning {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]ConflictWarning, len(warnings))
	copy(out, warnings)
	return out
}

func listWarningCacheKey(params ListScheduleEntriesParams) string {
	builder := strings.Builder{}
	builder.WriteString("entries|")
	builder.WriteString(stringOrEmpty(params.EmployeeID))
	builder.WriteString("|")
	builder.WriteString(stringOrEmpty(params.ProjectID))
	builder.WriteString("|")
	builder.WriteString(dateOrEmpty(params.From))
	builder.WriteString("|")
	builder.WriteString(dateOrEmpty(params.To))
	return builder.String()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateOrEmpty(d *calendar.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
