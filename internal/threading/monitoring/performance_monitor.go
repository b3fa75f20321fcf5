package monitoring

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"bsprender/internal/render"
)

// PerformanceMonitor tracks frame timing and renderer scratch usage
type PerformanceMonitor struct {
	// Frame metrics
	frameCount atomic.Uint64
	frameTime  atomic.Uint64 // nanoseconds
	renderTime atomic.Uint64 // nanoseconds spent in RenderFrame

	// Statistics
	mutex          sync.RWMutex
	totalFrameTime time.Duration
	lastStats      render.FrameStats
	peakStats      render.FrameStats
	limits         render.Limits
	startTime      time.Time
}

// NewPerformanceMonitor creates a monitor that reports usage against limits
func NewPerformanceMonitor(limits render.Limits) *PerformanceMonitor {
	return &PerformanceMonitor{
		limits:    limits,
		startTime: time.Now(),
	}
}

// FrameTimer helps measure frame timing
type FrameTimer struct {
	monitor   *PerformanceMonitor
	startTime time.Time
}

// StartFrame begins frame timing
func (pm *PerformanceMonitor) StartFrame() *FrameTimer {
	return &FrameTimer{
		monitor:   pm,
		startTime: time.Now(),
	}
}

// EndFrame completes frame timing
func (ft *FrameTimer) EndFrame() {
	frameTime := time.Since(ft.startTime)
	ft.monitor.frameTime.Store(uint64(frameTime.Nanoseconds()))
	ft.monitor.frameCount.Add(1)

	ft.monitor.mutex.Lock()
	ft.monitor.totalFrameTime += frameTime
	ft.monitor.mutex.Unlock()
}

// RecordRender stores the duration and counters of one RenderFrame call
func (pm *PerformanceMonitor) RecordRender(d time.Duration, stats render.FrameStats) {
	pm.renderTime.Store(uint64(d.Nanoseconds()))

	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	pm.lastStats = stats
	p := &pm.peakStats
	p.Nodes = max(p.Nodes, stats.Nodes)
	p.SubSectors = max(p.SubSectors, stats.SubSectors)
	p.Segs = max(p.Segs, stats.Segs)
	p.DrawSegs = max(p.DrawSegs, stats.DrawSegs)
	p.DroppedSegs = max(p.DroppedSegs, stats.DroppedSegs)
	p.VisPlanes = max(p.VisPlanes, stats.VisPlanes)
	p.Openings = max(p.Openings, stats.Openings)
	p.VisSprites = max(p.VisSprites, stats.VisSprites)
	p.DroppedSprites = max(p.DroppedSprites, stats.DroppedSprites)
}

// LastStats returns the counters of the most recent frame
func (pm *PerformanceMonitor) LastStats() render.FrameStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()
	return pm.lastStats
}

// PeakStats returns the largest value seen for each counter since Reset
func (pm *PerformanceMonitor) PeakStats() render.FrameStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()
	return pm.peakStats
}

// FPS derives frames per second from the last frame time
func (pm *PerformanceMonitor) FPS() float64 {
	frameTime := pm.frameTime.Load()
	if frameTime == 0 {
		return 0
	}
	return float64(time.Second) / float64(frameTime)
}

// GetDetailedStats returns detailed performance statistics
func (pm *PerformanceMonitor) GetDetailedStats() map[string]interface{} {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	count := pm.frameCount.Load()
	avgFrameMs := 0.0
	if count > 0 {
		avgFrameMs = float64(pm.totalFrameTime) / float64(count) / float64(time.Millisecond)
	}

	return map[string]interface{}{
		"uptime_seconds":      time.Since(pm.startTime).Seconds(),
		"frame_count":         count,
		"avg_frame_time_ms":   avgFrameMs,
		"last_frame_time_ms":  float64(pm.frameTime.Load()) / float64(time.Millisecond),
		"last_render_time_ms": float64(pm.renderTime.Load()) / float64(time.Millisecond),
		"visplanes":           pm.lastStats.VisPlanes,
		"drawsegs":            pm.lastStats.DrawSegs,
		"openings":            pm.lastStats.Openings,
		"vissprites":          pm.lastStats.VisSprites,
		"peak_visplanes":      pm.peakStats.VisPlanes,
		"peak_drawsegs":       pm.peakStats.DrawSegs,
		"peak_openings":       pm.peakStats.Openings,
		"peak_vissprites":     pm.peakStats.VisSprites,
		"memory_alloc_mb":     memStats.Alloc / 1024 / 1024,
		"gc_cycles":           memStats.NumGC,
		"goroutines":          runtime.NumGoroutine(),
	}
}

// PerformanceAlert represents a performance warning
type PerformanceAlert struct {
	Type      string
	Message   string
	Value     float64
	Threshold float64
	Timestamp time.Time
}

// alertFraction of a limit in use raises a capacity alert.
const alertFraction = 0.9

// CheckPerformanceAlerts reports a low frame rate, dropped records and
// scratch arenas close to their limits
func (pm *PerformanceMonitor) CheckPerformanceAlerts() []PerformanceAlert {
	alerts := make([]PerformanceAlert, 0)
	now := time.Now()

	if fps := pm.FPS(); fps > 0 && fps < 30 {
		alerts = append(alerts, PerformanceAlert{
			Type:      "low_fps",
			Message:   "Frame rate is below 30 FPS",
			Value:     fps,
			Threshold: 30,
			Timestamp: now,
		})
	}

	pm.mutex.RLock()
	stats, limits := pm.lastStats, pm.limits
	pm.mutex.RUnlock()

	capacity := []struct {
		name       string
		used, size int
	}{
		{"visplanes", stats.VisPlanes, limits.VisPlanes},
		{"drawsegs", stats.DrawSegs, limits.DrawSegs},
		{"openings", stats.Openings, limits.Openings},
		{"vissprites", stats.VisSprites, limits.VisSprites},
	}
	for _, c := range capacity {
		threshold := alertFraction * float64(c.size)
		if c.size > 0 && float64(c.used) >= threshold {
			alerts = append(alerts, PerformanceAlert{
				Type:      "near_limit_" + c.name,
				Message:   fmt.Sprintf("%s at %d of %d", c.name, c.used, c.size),
				Value:     float64(c.used),
				Threshold: threshold,
				Timestamp: now,
			})
		}
	}

	if dropped := stats.DroppedSegs + stats.DroppedSprites; dropped > 0 {
		alerts = append(alerts, PerformanceAlert{
			Type:      "dropped",
			Message:   fmt.Sprintf("%d draw-segments and %d sprites dropped", stats.DroppedSegs, stats.DroppedSprites),
			Value:     float64(dropped),
			Timestamp: now,
		})
	}
	return alerts
}

// LogLine formats a one-line summary for the periodic performance log
func (pm *PerformanceMonitor) LogLine() string {
	stats := pm.LastStats()
	peak := pm.PeakStats()
	return fmt.Sprintf("[PERF] fps=%.1f frame=%.2fms render=%.2fms segs=%d drawsegs=%d/%d planes=%d/%d openings=%d/%d sprites=%d/%d dropped=%d/%d",
		pm.FPS(),
		float64(pm.frameTime.Load())/float64(time.Millisecond),
		float64(pm.renderTime.Load())/float64(time.Millisecond),
		stats.Segs,
		stats.DrawSegs, peak.DrawSegs,
		stats.VisPlanes, peak.VisPlanes,
		stats.Openings, peak.Openings,
		stats.VisSprites, peak.VisSprites,
		stats.DroppedSegs, stats.DroppedSprites)
}

// Reset resets all performance counters
func (pm *PerformanceMonitor) Reset() {
	pm.frameCount.Store(0)
	pm.frameTime.Store(0)
	pm.renderTime.Store(0)

	pm.mutex.Lock()
	pm.totalFrameTime = 0
	pm.lastStats = render.FrameStats{}
	pm.peakStats = render.FrameStats{}
	pm.startTime = time.Now()
	pm.mutex.Unlock()
}
