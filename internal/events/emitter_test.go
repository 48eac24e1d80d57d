package events

import "testing"

func TestEmitCallsHandlersInOrder(t *testing.T) {
	e := New()
	var order []string
	e.Subscribe(TopicCommand, func(Event) { order = append(order, "first") })
	e.Subscribe(TopicCommand, func(Event) { order = append(order, "second") })

	e.Emit(TopicCommand, Event{Name: "x"})
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected handler order: %v", order)
	}
}

func TestEmitIsScopedToTopic(t *testing.T) {
	e := New()
	var got []string
	e.Subscribe(TopicExecute, func(ev Event) { got = append(got, ev.Name) })

	e.Emit(TopicCommand, Event{Name: "other"})
	e.Emit(TopicExecute, Event{Name: "mine"})
	if len(got) != 1 || got[0] != "mine" {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestEmitWithoutSubscribersIsNoop(t *testing.T) {
	e := New()
	e.Emit(TopicTerminated, Event{Payload: "TERMINATED"})
}

func TestNilHandlerIgnored(t *testing.T) {
	e := New()
	e.Subscribe(TopicCommand, nil)
	e.Emit(TopicCommand, Event{Name: "x"})
}
