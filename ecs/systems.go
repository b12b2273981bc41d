package ecs

// Ticker is anything advanced once per tick, such as an agent controller.
type Ticker interface {
	Update(dt float64)
}

// ControllerSystem ticks every registered controller in registration order.
type ControllerSystem struct {
	tickers []Ticker
}

func NewControllerSystem(tickers ...Ticker) *ControllerSystem {
	return &ControllerSystem{tickers: append([]Ticker(nil), tickers...)}
}

func (s *ControllerSystem) Add(t Ticker) {
	if t != nil {
		s.tickers = append(s.tickers, t)
	}
}

func (s *ControllerSystem) Len() int {
	return len(s.tickers)
}

func (s *ControllerSystem) Update(_ *World, dt float64) {
	for _, t := range s.tickers {
		t.Update(dt)
	}
}

// MotionSystem integrates agent velocities.
type MotionSystem struct{}

func NewMotionSystem() *MotionSystem {
	return &MotionSystem{}
}

func (s *MotionSystem) Update(w *World, dt float64) {
	if w == nil {
		return
	}
	w.Step(dt)
}
