package stats

import (
	"sort"
	"sync"
	"time"
)

// Summary 单个交易类型的执行统计
type Summary struct {
	Succeeded uint64        `json:"succeeded"`
	Failed    uint64        `json:"failed"`
	P50       time.Duration `json:"p50"`
	P95       time.Duration `json:"p95"`
	P99       time.Duration `json:"p99"`
	Max       time.Duration `json:"max"`
}

type kindMetric struct {
	samples   []int64 // 纳秒，环形缓冲区
	nextIdx   int
	filled    bool
	succeeded uint64
	failed    uint64
	maxNs     int64
}

// Recorder 按交易类型记录成功/失败次数和耗时（固定容量，支持分位数）
type Recorder struct {
	mu       sync.Mutex
	capacity int
	metrics  map[string]*kindMetric
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 256
	}
	return &Recorder{
		capacity: capacity,
		metrics:  make(map[string]*kindMetric),
	}
}

func (r *Recorder) Record(kind string, ok bool, d time.Duration) {
	if r == nil || kind == "" {
		return
	}
	ns := d.Nanoseconds()
	if ns < 0 {
		ns = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.metrics[kind]
	if !exists {
		m = &kindMetric{samples: make([]int64, r.capacity)}
		r.metrics[kind] = m
	}
	m.samples[m.nextIdx] = ns
	m.nextIdx = (m.nextIdx + 1) % len(m.samples)
	if m.nextIdx == 0 {
		m.filled = true
	}
	if ok {
		m.succeeded++
	} else {
		m.failed++
	}
	if ns > m.maxNs {
		m.maxNs = ns
	}
}

// Snapshot 获取统计；reset=true 时清空样本与计数（用于区间监控）
func (r *Recorder) Snapshot(reset bool) map[string]Summary {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result := make(map[string]Summary, len(r.metrics))
	for kind, m := range r.metrics {
		n := m.nextIdx
		if m.filled {
			n = len(m.samples)
		}
		if n == 0 {
			continue
		}

		values := make([]int64, n)
		copy(values, m.samples[:n])
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

		result[kind] = Summary{
			Succeeded: m.succeeded,
			Failed:    m.failed,
			P50:       time.Duration(percentileValue(values, 0.50)),
			P95:       time.Duration(percentileValue(values, 0.95)),
			P99:       time.Duration(percentileValue(values, 0.99)),
			Max:       time.Duration(m.maxNs),
		}

		if reset {
			*m = kindMetric{samples: m.samples}
		}
	}
	return result
}

func percentileValue(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(float64(len(sorted)-1) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
