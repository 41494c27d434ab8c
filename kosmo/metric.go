package kosmo

import (
	"sync/atomic"
)

// Metrics contains atomic counters of a Master.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc,
// and may be read from any goroutine.
type Metrics struct {
	// GetRequestCount indicates the number of get exchanges started.
	GetRequestCount atomic.Uint64
	// GetSuccessCount indicates the number of register blocks committed to the store.
	GetSuccessCount atomic.Uint64
	// GetFailureCount indicates the number of failed get exchanges.
	GetFailureCount atomic.Uint64
	// SettleCount indicates how often a slave hit the retry limit and was forced to settle.
	SettleCount atomic.Uint64

	// ChunkReadCount indicates the number of framed chunks received.
	ChunkReadCount atomic.Uint64
	// ChunkWriteCount indicates the number of write chunks acknowledged.
	ChunkWriteCount atomic.Uint64

	// SetCount indicates the number of register blocks pushed successfully.
	SetCount atomic.Uint64
	// SetFailureCount indicates the number of failed block pushes.
	SetFailureCount atomic.Uint64
}

func (m *Metrics) incGetRequestCount() {
	m.GetRequestCount.Add(1)
}

func (m *Metrics) incGetSuccessCount() {
	m.GetSuccessCount.Add(1)
}

func (m *Metrics) incGetFailureCount() {
	m.GetFailureCount.Add(1)
}

func (m *Metrics) incSettleCount() {
	m.SettleCount.Add(1)
}

func (m *Metrics) incChunkReadCount() {
	m.ChunkReadCount.Add(1)
}

func (m *Metrics) incChunkWriteCount() {
	m.ChunkWriteCount.Add(1)
}

func (m *Metrics) incSetCount() {
	m.SetCount.Add(1)
}

func (m *Metrics) incSetFailureCount() {
	m.SetFailureCount.Add(1)
}
