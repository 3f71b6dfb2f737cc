package game

import (
	"fmt"
	"sort"
	"time"
)

// Статусы здоровья цикла
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusDegraded = "degraded"
	StatusCritical = "critical"
)

// HealthReport итог проверки цикла
type HealthReport struct {
	Status string   `json:"status"`
	Issues []string `json:"issues"`
}

// BottleneckReport система, занимающая заметную долю тика
type BottleneckReport struct {
	System        string        `json:"system"`
	Severity      string        `json:"severity"`
	AverageTime   time.Duration `json:"average_time"`
	MaxTime       time.Duration `json:"max_time"`
	PercentOfTick float64       `json:"percent_of_tick"`
}

// CheckHealth оценивает TPS, время тика и пропуски
func (gt *GameTicker) CheckHealth() HealthReport {
	report := HealthReport{Status: StatusHealthy, Issues: []string{}}

	gt.metricsMutex.RLock()
	avgTickTime := gt.averageTickTime
	skippedTicks := gt.skippedTicks
	gt.metricsMutex.RUnlock()

	// Проверяем TPS только после первой секунды работы
	if !gt.startTime.IsZero() {
		if uptime := time.Since(gt.startTime); uptime > time.Second {
			actualTPS := float64(gt.tickCount.Load()) / uptime.Seconds()
			if actualTPS < float64(gt.targetTPS)*0.9 {
				report.Status = StatusDegraded
				report.Issues = append(report.Issues,
					fmt.Sprintf("TPS снижен: %.1f/%d", actualTPS, gt.targetTPS))
			}
		}
	}

	// Проверяем время тика
	if avgTickTime > gt.warningThreshold {
		report.Status = StatusWarning
		report.Issues = append(report.Issues,
			fmt.Sprintf("Медленные тики: %v (норма: <%v)", avgTickTime, gt.warningThreshold))
	}

	// Проверяем пропущенные тики
	if skippedTicks > 0 {
		report.Status = StatusCritical
		report.Issues = append(report.Issues, fmt.Sprintf("Пропущено тиков: %d", skippedTicks))
	}

	return report
}

// FindBottlenecks возвращает системы, чье среднее время больше четверти тика
func (gt *GameTicker) FindBottlenecks() []BottleneckReport {
	warningThreshold := gt.perfMonitor.warningThreshold

	gt.perfMonitor.mutex.RLock()
	defer gt.perfMonitor.mutex.RUnlock()

	var bottlenecks []BottleneckReport
	for name, metrics := range gt.perfMonitor.systemMetrics {
		severity := ""
		switch {
		case metrics.AverageTime > warningThreshold*2:
			severity = StatusCritical
		case metrics.AverageTime > warningThreshold:
			severity = StatusWarning
		default:
			continue
		}

		bottlenecks = append(bottlenecks, BottleneckReport{
			System:        name,
			Severity:      severity,
			AverageTime:   metrics.AverageTime,
			MaxTime:       metrics.MaxTime,
			PercentOfTick: float64(metrics.AverageTime) / float64(gt.tickDuration) * 100,
		})
	}

	sort.Slice(bottlenecks, func(i, j int) bool {
		return bottlenecks[i].AverageTime > bottlenecks[j].AverageTime
	})
	return bottlenecks
}
