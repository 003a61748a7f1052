package relay

import (
	"context"
	"time"

	"github.com/0xrinegade/4ochan/shared/logger"
)

const defaultReconnectDelay = 5 * time.Second

type Policy struct {
	AutoConnect    bool
	AutoReconnect  bool
	ReconnectDelay time.Duration
}

type snapshot struct {
	open       bool
	connecting bool
	connected  int
	relays     int
}

func (m *Manager) snapshot() snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshot{
		open:       m.pool != nil,
		connecting: m.connecting,
		connected:  m.state.Connected,
		relays:     len(m.state.Relays),
	}
}

// Run applies p on every state change until ctx ends. It only ever calls Connect and Disconnect.
func (m *Manager) Run(ctx context.Context, p Policy) {
	if p.ReconnectDelay <= 0 {
		p.ReconnectDelay = defaultReconnectDelay
	}

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}
	defer stopTimer()

	evaluate := func() {
		s := m.snapshot()
		if p.AutoConnect && !s.open && !s.connecting && s.relays > 0 {
			stopTimer()
			if err := m.Connect(ctx); err != nil {
				logger.Log.Error("auto connect failed", "component", "relay", "error", err)
			}
			return
		}

		wantReconnect := p.AutoReconnect && s.open && !s.connecting && s.connected == 0 && s.relays > 0
		switch {
		case wantReconnect && timer == nil:
			logger.Log.Info("no relay connected, scheduling reconnect", "component", "relay", "delay", p.ReconnectDelay)
			timer = time.NewTimer(p.ReconnectDelay)
			timerC = timer.C
		case !wantReconnect:
			stopTimer()
		}
	}

	evaluate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.changes:
			evaluate()
		case <-timerC:
			timer, timerC = nil, nil
			reconnects.Inc()
			m.Disconnect()
			if err := m.Connect(ctx); err != nil {
				logger.Log.Error("reconnect failed", "component", "relay", "error", err)
			}
		}
	}
}
