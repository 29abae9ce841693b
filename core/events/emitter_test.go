package events_test

import (
	"testing"

	"github.com/fabriclab/ipoib/core/events"
	"go4.org/must"
)

func TestOnCancel(t *testing.T) {
	assert, _ := makeAR(t)

	nA, nB, nC, nD := 0, 0, 0, 0
	fA := func() { nA++ }
	fB := func() { nB++ }
	fC := func() { nC++ }
	fD := func() { nD++ }

	emitter := events.NewEmitter()
	cancelA := emitter.On(1, fA)
	cancelB := emitter.On(1, fB)
	cancelC := emitter.Once(2, fC)
	cancelD := emitter.Once(2, fD)

	emitter.Emit(1)
	assert.Equal(1, nA)
	assert.Equal(1, nB)

	must.Close(cancelA)
	emitter.Emit(1)
	assert.Equal(1, nA)
	assert.Equal(2, nB)

	must.Close(cancelA)
	emitter.Emit(1)
	assert.Equal(1, nA)
	assert.Equal(3, nB)

	must.Close(cancelB)
	emitter.Emit(1)
	assert.Equal(1, nA)
	assert.Equal(3, nB)

	must.Close(cancelD)
	emitter.Emit(2)
	assert.Equal(1, nC)
	assert.Equal(0, nD)

	emitter.Emit(2)
	assert.Equal(1, nC)
	assert.Equal(0, nD)

	must.Close(cancelC)
	emitter.Emit(2)
	assert.Equal(1, nC)
	assert.Equal(0, nD)
}
