// Package monitoring 提供HTTP请求指标收集
package monitoring

import (
	"sort"
	"sync"
	"time"
)

// RouteStats 单个路由的统计
type RouteStats struct {
	Route        string        `json:"route"`
	Requests     int64         `json:"requests"`
	Errors       int64         `json:"errors"`
	StatusCounts map[int]int64 `json:"status_counts"`
	TotalLatency time.Duration `json:"-"`
	AvgLatencyMs float64       `json:"avg_latency_ms"`
	MaxLatencyMs float64       `json:"max_latency_ms"`
	LastSeen     time.Time     `json:"last_seen"`

	maxLatency time.Duration
}

// Snapshot 指标快照
type Snapshot struct {
	StartTime     time.Time    `json:"start_time"`
	UptimeSeconds float64      `json:"uptime_seconds"`
	TotalRequests int64        `json:"total_requests"`
	Routes        []RouteStats `json:"routes"`
}

// MetricsCollector 指标收集器
type MetricsCollector struct {
	mu        sync.RWMutex
	routes    map[string]*RouteStats
	startTime time.Time
	now       func() time.Time
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		routes:    make(map[string]*RouteStats),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// RecordRequest 记录一次请求
func (mc *MetricsCollector) RecordRequest(route string, status int, latency time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	stats, ok := mc.routes[route]
	if !ok {
		stats = &RouteStats{Route: route, StatusCounts: make(map[int]int64)}
		mc.routes[route] = stats
	}
	stats.Requests++
	if status >= 500 {
		stats.Errors++
	}
	stats.StatusCounts[status]++
	stats.TotalLatency += latency
	if latency > stats.maxLatency {
		stats.maxLatency = latency
	}
	stats.LastSeen = mc.now()
}

// Snapshot 返回按路由排序的指标副本
func (mc *MetricsCollector) Snapshot() Snapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	snap := Snapshot{
		StartTime:     mc.startTime,
		UptimeSeconds: mc.now().Sub(mc.startTime).Seconds(),
		Routes:        make([]RouteStats, 0, len(mc.routes)),
	}
	for _, stats := range mc.routes {
		statsCopy := *stats
		statsCopy.StatusCounts = make(map[int]int64, len(stats.StatusCounts))
		for code, n := range stats.StatusCounts {
			statsCopy.StatusCounts[code] = n
		}
		if stats.Requests > 0 {
			statsCopy.AvgLatencyMs = float64(stats.TotalLatency) / float64(stats.Requests) / float64(time.Millisecond)
		}
		statsCopy.MaxLatencyMs = float64(stats.maxLatency) / float64(time.Millisecond)
		snap.TotalRequests += stats.Requests
		snap.Routes = append(snap.Routes, statsCopy)
	}
	sort.Slice(snap.Routes, func(i, j int) bool {
		return snap.Routes[i].Route < snap.Routes[j].Route
	})
	return snap
}

// Reset 清空所有指标
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.routes = make(map[string]*RouteStats)
	mc.startTime = mc.now()
}
