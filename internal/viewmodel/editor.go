// Package viewmodel holds the reactive state behind the template editor
// screen. State changes are pushed to subscribers once per change; one-shot
// events (saved, deleted, errors) go through a separate channel and are
// delivered at most once each.
package viewmodel

import (
	"context"
	"sync"
	"time"

	"github.com/ldi/focusbloom/internal/schedule"
	"github.com/ldi/focusbloom/pkg/models"
)

// TemplateStore is the persistence surface the editor needs.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, t *models.TaskTemplate) error
	UpdateTemplate(ctx context.Context, t *models.TaskTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
}

type EventKind string

const (
	EventSaved   EventKind = "saved"
	EventDeleted EventKind = "deleted"
	EventError   EventKind = "error"
)

// Event is a one-shot notification. It is consumed from Events() at most
// once and never replayed.
type Event struct {
	Kind    EventKind
	Message string
}

// EditorState is a snapshot of the form. EndTime is derived: it is
// recomputed from Start, FocusSessions, and the session durations on every
// change and never set directly.
type EditorState struct {
	TemplateID      string
	TemplateName    string
	TaskName        string
	TaskDescription string
	Type            models.TaskType
	Start           time.Time
	FocusSessions   int
	Color           int64
	EndTime         time.Time
}

// EditorViewModel serializes all edits behind a mutex so rapid successive
// changes always publish an end time consistent with the latest inputs.
type EditorViewModel struct {
	mu     sync.Mutex
	store  TemplateStore
	cfg    models.SessionConfig
	state  EditorState
	subs   map[int]chan EditorState
	nextID int
	events chan Event
}

func NewEditorViewModel(store TemplateStore, cfg models.SessionConfig) *EditorViewModel {
	vm := &EditorViewModel{
		store:  store,
		cfg:    cfg,
		subs:   make(map[int]chan EditorState),
		events: make(chan Event, 16),
	}
	vm.state = EditorState{
		Type:  models.TaskTypeOther,
		Start: time.Now().Truncate(time.Minute),
		Color: models.TaskTypeOther.Color(),
	}
	vm.state.EndTime = schedule.EndTime(vm.state.Start, 0, cfg)
	return vm
}

// Events returns the one-shot event channel. It is intended for a single
// consumer; events are not redelivered to later subscribers.
func (vm *EditorViewModel) Events() <-chan Event {
	return vm.events
}

// Subscribe registers a state observer. The current state is not replayed;
// only subsequent changes are delivered. The returned function cancels the
// subscription.
func (vm *EditorViewModel) Subscribe() (<-chan EditorState, func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	id := vm.nextID
	vm.nextID++
	ch := make(chan EditorState, 64)
	vm.subs[id] = ch

	return ch, func() {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		if c, ok := vm.subs[id]; ok {
			delete(vm.subs, id)
			close(c)
		}
	}
}

// State returns the current snapshot.
func (vm *EditorViewModel) State() EditorState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// publish recomputes the derived end time and notifies subscribers. Callers
// must hold vm.mu.
func (vm *EditorViewModel) publish() {
	vm.state.EndTime = schedule.EndTime(vm.state.Start, vm.state.FocusSessions, vm.cfg)
	for _, ch := range vm.subs {
		select {
		case ch <- vm.state:
		default:
			// Slow consumers coalesce: they miss intermediate states but
			// always receive a later one.
		}
	}
}

func (vm *EditorViewModel) emit(e Event) {
	select {
	case vm.events <- e:
	default:
	}
}

func (vm *EditorViewModel) SetTemplateName(name string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.TemplateName = name
	vm.publish()
}

func (vm *EditorViewModel) SetTaskName(name string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.TaskName = name
	vm.publish()
}

func (vm *EditorViewModel) SetTaskDescription(desc string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.TaskDescription = desc
	vm.publish()
}

func (vm *EditorViewModel) SetType(t models.TaskType) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.Type = t
	vm.state.Color = t.Color()
	vm.publish()
}

func (vm *EditorViewModel) SetStart(start time.Time) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.Start = start
	vm.publish()
}

func (vm *EditorViewModel) IncrementSessions() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.FocusSessions++
	vm.publish()
}

// DecrementSessions is a no-op at zero; the count never goes negative.
func (vm *EditorViewModel) DecrementSessions() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.state.FocusSessions == 0 {
		return
	}
	vm.state.FocusSessions--
	vm.publish()
}

// Load applies a stored template to the form and recomputes the end time.
// The template's wall-clock start is resolved against today.
func (vm *EditorViewModel) Load(tpl *models.TaskTemplate) error {
	start, err := tpl.StartOn(time.Now())
	if err != nil {
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state = EditorState{
		TemplateID:      tpl.ID,
		TemplateName:    tpl.Name,
		TaskName:        tpl.TaskName,
		TaskDescription: tpl.TaskDescription,
		Type:            tpl.Type,
		Start:           start,
		FocusSessions:   tpl.FocusSessions,
		Color:           tpl.Color,
	}
	vm.publish()
	return nil
}

// Save persists the form, creating a new template or updating the loaded
// one, and emits a one-shot result event.
func (vm *EditorViewModel) Save(ctx context.Context) {
	vm.mu.Lock()
	tpl := &models.TaskTemplate{
		ID:              vm.state.TemplateID,
		Name:            vm.state.TemplateName,
		TaskName:        vm.state.TaskName,
		TaskDescription: vm.state.TaskDescription,
		Type:            vm.state.Type,
		StartTime:       vm.state.Start.Format("15:04"),
		Color:           vm.state.Color,
		FocusSessions:   vm.state.FocusSessions,
	}
	vm.mu.Unlock()

	var err error
	if tpl.ID == "" {
		err = vm.store.CreateTemplate(ctx, tpl)
	} else {
		err = vm.store.UpdateTemplate(ctx, tpl)
	}
	if err != nil {
		vm.emit(Event{Kind: EventError, Message: err.Error()})
		return
	}

	vm.mu.Lock()
	vm.state.TemplateID = tpl.ID
	vm.mu.Unlock()

	vm.emit(Event{Kind: EventSaved, Message: tpl.Name})
}

// Delete removes the loaded template and emits a one-shot result event.
// Deleting an unsaved form is an error event, not a crash.
func (vm *EditorViewModel) Delete(ctx context.Context) {
	vm.mu.Lock()
	id := vm.state.TemplateID
	name := vm.state.TemplateName
	vm.mu.Unlock()

	if id == "" {
		vm.emit(Event{Kind: EventError, Message: "no template loaded"})
		return
	}

	if err := vm.store.DeleteTemplate(ctx, id); err != nil {
		vm.emit(Event{Kind: EventError, Message: err.Error()})
		return
	}

	vm.mu.Lock()
	vm.state.TemplateID = ""
	vm.mu.Unlock()

	vm.emit(Event{Kind: EventDeleted, Message: name})
}
