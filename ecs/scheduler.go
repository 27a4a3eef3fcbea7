package ecs

// System runs once per rendered frame.
type System interface {
	Update(w *World)
}

// FixedSystem runs once per fixed physics step.
type FixedSystem interface {
	FixedUpdate(w *World, dt float64)
}

// Scheduler owns system order for the frame phase and the fixed phase.
type Scheduler struct {
	systems []System
	fixed   []FixedSystem
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) AddFixed(system FixedSystem) {
	if system == nil {
		return
	}
	s.fixed = append(s.fixed, system)
}

// Update runs frame systems and clears events nobody drained.
func (s *Scheduler) Update(w *World) {
	for _, system := range s.systems {
		system.Update(w)
	}
	w.Events().flush()
}

func (s *Scheduler) FixedUpdate(w *World, dt float64) {
	if dt <= 0 {
		return
	}
	for _, system := range s.fixed {
		system.FixedUpdate(w, dt)
	}
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
