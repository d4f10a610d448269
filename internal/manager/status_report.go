package manager

import (
	"routerd/pkg/types"
)

// Stats returns the running latency statistics.
func (m *Manager) Stats() types.MetricsResponse {
	return m.stats.Snapshot()
}

// Ready reports whether both engines have been initialized.
func (m *Manager) Ready() bool {
	for _, k := range types.Kinds {
		if !m.slots[k].backend.Ready() {
			return false
		}
	}
	return true
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	now := timeNow()
	resp := types.StatusResponse{
		ThresholdChars:  m.router.Threshold(),
		PermissiveModes: m.router.Permissive(),
		UptimeSeconds:   int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix:  now.Unix(),
		Backends:        make([]types.BackendStatus, 0, len(types.Kinds)),
	}
	for _, k := range types.Kinds {
		s := m.slots[k]
		st, errMsg := s.backend.State()
		series := m.stats.Get(k)
		resp.Backends = append(resp.Backends, types.BackendStatus{
			Kind:            string(k),
			Model:           s.backend.Model(),
			Engine:          s.backend.EngineType(),
			State:           string(st),
			Error:           errMsg,
			Capacity:        s.gate.Capacity(),
			Inflight:        s.gate.Inflight(),
			Waiting:         s.gate.Waiting(),
			MaxNewTokensCap: s.backend.MaxNewTokensCap(),
			Template:        s.backend.TemplateName(),
			AvgMs:           series.AvgMs,
			Count:           series.N,
			Failures:        s.failures.Load(),
		})
	}
	return resp
}
