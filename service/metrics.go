package service

import (
	"fmt"
	"strings"

	"github.com/rcrowley/go-metrics"
)

// callMetrics counts dispatches per command plus the two conditions worth
// alarming on: commands with no table entry and protocol violations.
type callMetrics struct {
	service    string
	calls      map[uint16]metrics.Counter
	unknown    metrics.Counter
	violations metrics.Counter
}

func newCallMetrics(service string) *callMetrics {
	return &callMetrics{
		service:    service,
		calls:      make(map[uint16]metrics.Counter),
		unknown:    metrics.GetOrRegisterCounter(fmt.Sprintf("ipc.%s.unknown", service), nil),
		violations: metrics.GetOrRegisterCounter(fmt.Sprintf("ipc.%s.violations", service), nil),
	}
}

func (m *callMetrics) register(commandID uint16, name string) {
	m.calls[commandID] = metrics.GetOrRegisterCounter(
		fmt.Sprintf("ipc.%s.%s", m.service, strings.ToLower(name)), nil)
}

func (m *callMetrics) call(commandID uint16) {
	if c, ok := m.calls[commandID]; ok {
		c.Inc(1)
	}
}
