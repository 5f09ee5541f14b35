package dom

// Event types dispatched by the document.
const (
	EventSubmit = "submit"
)

// Event is delivered to listeners registered on an element.
type Event struct {
	Type       string
	Target     *Element
	Submitter  *Element
	Detail     any
	Cancelable bool

	defaultPrevented bool
}

// PreventDefault cancels the default action of a cancelable event.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether a listener cancelled the event.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Listener handles events. Listeners run on the dispatching goroutine and
// without the document lock held.
type Listener func(*Event)

// AddEventListener registers fn for events of type typ on the element.
func (e *Element) AddEventListener(typ string, fn Listener) {
	if fn == nil {
		return
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	byType, ok := e.doc.listeners[e.node]
	if !ok {
		byType = make(map[string][]Listener)
		e.doc.listeners[e.node] = byType
	}
	byType[typ] = append(byType[typ], fn)
}

// ListenerCount returns how many listeners are registered for typ.
func (e *Element) ListenerCount(typ string) int {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return len(e.doc.listeners[e.node][typ])
}

// Dispatch delivers ev to the element's listeners in registration order and
// returns false when the default action was prevented.
func (e *Element) Dispatch(ev *Event) bool {
	if ev == nil {
		return true
	}
	ev.Target = e

	e.doc.mu.RLock()
	listeners := append([]Listener(nil), e.doc.listeners[e.node][ev.Type]...)
	e.doc.mu.RUnlock()

	for _, fn := range listeners {
		fn(ev)
	}
	return !ev.defaultPrevented
}

// Submit fires a cancelable submit event at form, as a user activating
// submitter would. It reports whether a listener took over the submission.
func (d *Document) Submit(form *Form, submitter *Element) bool {
	if form == nil {
		return false
	}
	ev := &Event{Type: EventSubmit, Submitter: submitter, Cancelable: true}
	return !form.Dispatch(ev)
}
