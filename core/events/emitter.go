// Package events distributes device lifecycle notifications.
package events

import (
	"io"

	"github.com/chuckpreslar/emission"
)

// Emitter delivers events to registered listeners.
// Unlike emission.Emitter, registration returns an io.Closer so that
// callers can drop a listener without retaining the callback value.
type Emitter struct {
	em *emission.Emitter
}

// NewEmitter creates an Emitter.
func NewEmitter() *Emitter {
	return &Emitter{em: emission.NewEmitter()}
}

// Emit invokes listeners registered for event.
func (emitter *Emitter) Emit(event any, args ...any) {
	emitter.em.EmitSync(event, args...)
}

// On registers a listener for event.
// Closing the returned io.Closer removes the listener.
func (emitter *Emitter) On(event, listener any) io.Closer {
	handle := emitter.em.On(event, listener)
	return closerFunc(func() { emitter.em.RemoveListener(event, handle) })
}

// Once registers a listener invoked at most once.
// Closing the returned io.Closer removes the listener if it has not fired.
func (emitter *Emitter) Once(event, listener any) io.Closer {
	handle := emitter.em.Once(event, listener)
	return closerFunc(func() { emitter.em.RemoveListener(event, handle) })
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
