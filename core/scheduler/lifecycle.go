package scheduler

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

const (
	eventSchedule  = "schedule"
	eventExecute   = "execute"
	eventSupersede = "supersede"
)

var lifecycleEvents = fsm.Events{
	{Name: eventSchedule, Src: []string{string(model.TaskCreated)}, Dst: string(model.TaskScheduled)},
	{Name: eventExecute, Src: []string{string(model.TaskScheduled)}, Dst: string(model.TaskExecuted)},
	{Name: eventSupersede, Src: []string{string(model.TaskCreated), string(model.TaskScheduled)}, Dst: string(model.TaskSuperseded)},
}

// entry pairs a task with the state machine that owns its State field.
type entry struct {
	task model.MaintenanceTask
	fsm  *fsm.FSM
}

func newEntry(t model.MaintenanceTask) *entry {
	e := &entry{task: t}
	e.task.State = model.TaskCreated
	e.fsm = fsm.NewFSM(string(model.TaskCreated), lifecycleEvents, fsm.Callbacks{
		"enter_state": func(_ context.Context, ev *fsm.Event) {
			e.task.State = model.TaskState(ev.Dst)
		},
	})
	return e
}

func (e *entry) fire(ctx context.Context, event string) error {
	return e.fsm.Event(ctx, event)
}
