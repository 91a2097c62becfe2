package metrics

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/annel0/voxel-world/internal/logging"
)

// ProcessStats снимок ресурсов процесса
type ProcessStats struct {
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`
	Goroutines int     `json:"goroutines"`
	HeapMB     float64 `json:"heap_alloc_mb"`
	NumGC      uint32  `json:"num_gc"`
}

// ProcessSampler периодически снимает загрузку CPU и память процесса
type ProcessSampler struct {
	proc       *process.Process
	collectors *Collectors
	logger     *logging.Logger
	startTime  time.Time
}

// NewProcessSampler создаёт сэмплер для текущего процесса
func NewProcessSampler(collectors *Collectors, logger *logging.Logger) (*ProcessSampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &ProcessSampler{
		proc:       proc,
		collectors: collectors,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// Uptime время работы с момента создания сэмплера
func (s *ProcessSampler) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Sample снимает текущие значения и обновляет датчики
func (s *ProcessSampler) Sample() (ProcessStats, error) {
	var stats ProcessStats

	// Процент CPU за интервал с прошлого вызова
	cpuPercent, err := s.proc.CPUPercent()
	if err != nil {
		// Если не удалось получить метрику процесса, попробуем системную
		percents, sysErr := cpu.Percent(100*time.Millisecond, false)
		if sysErr != nil || len(percents) == 0 {
			return stats, err
		}
		cpuPercent = percents[0]
	}
	stats.CPUPercent = cpuPercent

	mem, err := s.proc.MemoryInfo()
	if err != nil {
		return stats, err
	}
	stats.RSSBytes = mem.RSS

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.HeapMB = float64(m.HeapAlloc) / 1024 / 1024
	stats.NumGC = m.NumGC
	stats.Goroutines = runtime.NumGoroutine()

	if s.collectors != nil {
		s.collectors.ProcessCPU.Set(stats.CPUPercent)
		s.collectors.ProcessRSS.Set(float64(stats.RSSBytes))
	}
	return stats, nil
}

// Run снимает значения с интервалом до отмены контекста
func (s *ProcessSampler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sample(); err != nil {
				s.logger.Warn("Не удалось снять метрики процесса: %v", err)
			}
		}
	}
}
