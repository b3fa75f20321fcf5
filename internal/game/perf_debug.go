package game

import (
	"log"
	"time"
)

func (gl *GameLoop) maybeLogPerf() {
	g := gl.game
	if !g.perfDebugEnabled {
		return
	}
	interval := time.Duration(g.config.Debug.PerfLogInterval) * time.Second
	now := time.Now()
	if !gl.perfLastLog.IsZero() && now.Sub(gl.perfLastLog) < interval {
		return
	}
	gl.perfLastLog = now

	log.Println(g.monitor.LogLine())
	for _, alert := range g.monitor.CheckPerformanceAlerts() {
		log.Printf("[PERF] %s: %s", alert.Type, alert.Message)
	}
}
