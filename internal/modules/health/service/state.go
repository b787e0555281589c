package service

import (
	"sync/atomic"
	"time"
)

// State — агрегированное состояние сервиса для health-ручек.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	wsConnected    atomic.Bool
	lastCandleUnix atomic.Int64 // unix seconds
	signalsEmitted atomic.Int64
	trackedSymbols atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

// Ready — прогрев окончен, стримы подняты.
func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

func (s *State) TouchCandle(t time.Time) { s.lastCandleUnix.Store(t.Unix()) }
func (s *State) LastCandle() time.Time {
	u := s.lastCandleUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) IncSignals()           { s.signalsEmitted.Add(1) }
func (s *State) SignalsEmitted() int64 { return s.signalsEmitted.Load() }

func (s *State) SetTrackedSymbols(n int) { s.trackedSymbols.Store(int64(n)) }
func (s *State) TrackedSymbols() int64   { return s.trackedSymbols.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
