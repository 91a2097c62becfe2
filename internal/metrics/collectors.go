package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxel-world/internal/world"
)

const namespace = "voxel"

// Collectors метрики движка. Регистрируются в явно переданном регистре,
// чтобы несколько движков (в тестах) не конфликтовали.
type Collectors struct {
	ResidentChunks   prometheus.Gauge
	VisibleFaces     prometheus.Gauge
	ChunksLoaded     prometheus.Counter
	ChunksUnloaded   prometheus.Counter
	BlockEvaluations prometheus.Counter
	BlocksBroken     prometheus.Counter
	Saves            *prometheus.CounterVec // result=ok|error
	Loads            *prometheus.CounterVec // result=ok|empty|error
	TickDuration     prometheus.Histogram

	ProcessCPU prometheus.Gauge
	ProcessRSS prometheus.Gauge
}

// New создаёт и регистрирует коллекторы
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		ResidentChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resident_chunks",
			Help:      "Количество загруженных чанков.",
		}),
		VisibleFaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visible_faces",
			Help:      "Количество отрисованных граней.",
		}),
		ChunksLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_loaded_total",
			Help:      "Загружено чанков за всё время.",
		}),
		ChunksUnloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_unloaded_total",
			Help:      "Выгружено чанков за всё время.",
		}),
		BlockEvaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_evaluations_total",
			Help:      "Пересчётов видимости блоков.",
		}),
		BlocksBroken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_broken_total",
			Help:      "Разрушено блоков.",
		}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Сохранения по результату.",
		}, []string{"result"}),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Загрузки сохранений по результату.",
		}, []string{"result"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Длительность тика движка.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		ProcessCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "Загрузка CPU процессом (gopsutil).",
		}),
		ProcessRSS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Резидентная память процесса (gopsutil).",
		}),
	}

	reg.MustRegister(
		c.ResidentChunks, c.VisibleFaces,
		c.ChunksLoaded, c.ChunksUnloaded,
		c.BlockEvaluations, c.BlocksBroken,
		c.Saves, c.Loads, c.TickDuration,
		c.ProcessCPU, c.ProcessRSS,
	)
	return c
}

// BlockEvaluated реализует world.Observer
func (c *Collectors) BlockEvaluated(world.BlockRef) {
	c.BlockEvaluations.Inc()
}

// ObserveStream учитывает итог тика подгрузки
func (c *Collectors) ObserveStream(report world.StreamReport) {
	c.ChunksLoaded.Add(float64(len(report.Loaded)))
	c.ChunksUnloaded.Add(float64(len(report.Unloaded)))
}

// ObserveWorld обновляет датчики состояния мира
func (c *Collectors) ObserveWorld(w *world.World) {
	c.ResidentChunks.Set(float64(w.ResidentCount()))
	c.VisibleFaces.Set(float64(w.VisibleFaces()))
}

// ObserveTick длительность тика
func (c *Collectors) ObserveTick(d time.Duration) {
	c.TickDuration.Observe(d.Seconds())
}

// Result метка результата операции
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
