package system

import (
	"fmt"

	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"go.uber.org/zap"
)

const defaultEventLogLines = 8

// EventLogSystem drains the world event queue into the logger and keeps the
// most recent lines for an on-screen overlay. It must run last in the frame.
type EventLogSystem struct {
	lines []string
	max   int
}

func NewEventLogSystem(max int) *EventLogSystem {
	if max <= 0 {
		max = defaultEventLogLines
	}
	return &EventLogSystem{max: max}
}

func (s *EventLogSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	log := common.Logger()
	for _, evt := range w.Events().Drain() {
		ge, ok := evt.Data.(GrabEvent)
		if !ok {
			log.Info(evt.Type)
			s.push(evt.Type)
			continue
		}
		log.Info(evt.Type,
			zap.Uint64("grabber", uint64(ge.Grabber)),
			zap.Uint64("grabbable", uint64(ge.Grabbable)),
			zap.Uint64("anchor", ge.Anchor.Anchor),
			zap.Stringer("hand", ge.Hand),
		)
		s.push(fmt.Sprintf("%s %s grabbable=%d", evt.Type, ge.Hand, ge.Grabbable))
	}
}

func (s *EventLogSystem) push(line string) {
	s.lines = append(s.lines, line)
	if over := len(s.lines) - s.max; over > 0 {
		s.lines = append(s.lines[:0], s.lines[over:]...)
	}
}

// Lines returns the retained lines, oldest first.
func (s *EventLogSystem) Lines() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.lines...)
}
