package notify

import (
	"sync/atomic"
	"time"
)

type Metrics struct {
	Published   int64 `json:"published"`
	Delivered   int64 `json:"delivered"`
	Dropped     int64 `json:"dropped"`
	RelayErrors int64 `json:"relay_errors"`
	Subscribers int64 `json:"subscribers"`
	StartTime   int64 `json:"start_time"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now().Unix(),
	}
}

func (m *Metrics) RecordPublish() {
	atomic.AddInt64(&m.Published, 1)
}

func (m *Metrics) RecordDelivery() {
	atomic.AddInt64(&m.Delivered, 1)
}

func (m *Metrics) RecordDrop() {
	atomic.AddInt64(&m.Dropped, 1)
}

func (m *Metrics) RecordRelayError() {
	atomic.AddInt64(&m.RelayErrors, 1)
}

func (m *Metrics) setSubscribers(n int) {
	atomic.StoreInt64(&m.Subscribers, int64(n))
}

func (m *Metrics) GetStats() Metrics {
	return Metrics{
		Published:   atomic.LoadInt64(&m.Published),
		Delivered:   atomic.LoadInt64(&m.Delivered),
		Dropped:     atomic.LoadInt64(&m.Dropped),
		RelayErrors: atomic.LoadInt64(&m.RelayErrors),
		Subscribers: atomic.LoadInt64(&m.Subscribers),
		StartTime:   m.StartTime,
	}
}

// DropRate is the percentage of deliveries lost to full client buffers.
func (m *Metrics) DropRate() float64 {
	delivered := atomic.LoadInt64(&m.Delivered)
	dropped := atomic.LoadInt64(&m.Dropped)
	total := delivered + dropped

	if total == 0 {
		return 0.0
	}

	return float64(dropped) / float64(total) * 100.0
}
