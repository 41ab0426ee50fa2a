package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState struct {
	counter int
}

type testAction interface{}

type increment struct{}
type decrement struct{}
type doNothing struct{}
type setValue struct{ value int }
type explode struct{}
type panicking struct{}

var errExplode = errors.New("explode")

func reducer(state testState, action testAction) (testState, error) {
	switch a := action.(type) {
	case increment:
		return testState{counter: state.counter + 1}, nil
	case decrement:
		return testState{counter: state.counter - 1}, nil
	case setValue:
		return testState{counter: a.value}, nil
	case doNothing:
		return state, nil
	case explode:
		return testState{counter: -999}, errExplode
	case panicking:
		panic("reducer bug")
	default:
		return state, errors.New("unhandled")
	}
}

func newTestStore(t *testing.T, counter int, opts ...Option[testState, testAction]) *Store[testState, testAction] {
	t.Helper()
	store := NewStore[testState, testAction](testState{counter: counter}, reducer, opts...)
	t.Cleanup(store.Close)
	return store
}

func TestDispatchReducesAndCreatesNewState(t *testing.T) {
	store := newTestStore(t, 23)

	require.NoError(t, store.Dispatch(increment{}).Join())
	assert.Equal(t, 24, store.State().counter)

	store.Dispatch(decrement{})
	require.NoError(t, store.Dispatch(decrement{}).Join())
	assert.Equal(t, 22, store.State().counter)
}

func TestSubscriberGetsInitialValueBeforeChanges(t *testing.T) {
	store := newTestStore(t, 23)

	var observed []int
	store.Subscribe(func(s testState) { observed = append(observed, s.counter) })

	assert.Equal(t, []int{23}, observed)

	require.NoError(t, store.Dispatch(increment{}).Join())
	assert.Equal(t, []int{23, 24}, observed)
}

func TestSubscriberNotNotifiedWhenStateUnchanged(t *testing.T) {
	store := newTestStore(t, 23)

	calls := 0
	store.Subscribe(func(testState) { calls++ })
	require.Equal(t, 1, calls)

	require.NoError(t, store.Dispatch(doNothing{}).Join())
	require.NoError(t, store.Dispatch(setValue{value: 23}).Join())
	assert.Equal(t, 1, calls)
}

func TestSubscriberNotNotifiedAfterUnsubscribe(t *testing.T) {
	store := newTestStore(t, 23)

	observed := 0
	sub := store.Subscribe(func(s testState) { observed = s.counter })

	require.NoError(t, store.Dispatch(increment{}).Join())
	assert.Equal(t, 24, observed)

	require.NoError(t, store.Dispatch(decrement{}).Join())
	assert.Equal(t, 23, observed)

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.False(t, sub.Active())

	require.NoError(t, store.Dispatch(decrement{}).Join())
	assert.Equal(t, 23, observed)
	assert.Equal(t, 22, store.State().counter)
}

func TestSubscriberMayUnsubscribeItself(t *testing.T) {
	store := newTestStore(t, 0)

	var sub *Subscription[testState]
	calls := 0
	sub = store.Subscribe(func(s testState) {
		calls++
		if s.counter == 1 {
			sub.Unsubscribe()
		}
	})

	require.NoError(t, store.Dispatch(increment{}).Join())
	require.NoError(t, store.Dispatch(increment{}).Join())
	assert.Equal(t, 2, calls)
}

func TestReducerErrorKeepsPreviousState(t *testing.T) {
	var handled []error
	store := newTestStore(t, 5, WithErrorHandler[testState, testAction](func(_ testAction, err error) {
		handled = append(handled, err)
	}))

	calls := 0
	store.Subscribe(func(testState) { calls++ })

	err := store.Dispatch(explode{}).Join()
	assert.ErrorIs(t, err, errExplode)
	assert.Equal(t, 5, store.State().counter)
	assert.Equal(t, 1, calls)

	err = store.Dispatch(panicking{}).Join()
	assert.ErrorIs(t, err, ErrReducerPanic)
	assert.Equal(t, 5, store.State().counter)

	require.Len(t, handled, 2)

	// The store keeps working after a rejected action
	require.NoError(t, store.Dispatch(increment{}).Join())
	assert.Equal(t, 6, store.State().counter)
}

func TestDispatchOrderIsPreserved(t *testing.T) {
	store := newTestStore(t, 0)

	var completions []*Completion
	for i := 1; i <= 100; i++ {
		completions = append(completions, store.Dispatch(setValue{value: i}))
	}
	for _, c := range completions {
		require.NoError(t, c.Join())
	}

	assert.Equal(t, 100, store.State().counter)
}

func TestDispatchFromManyGoroutines(t *testing.T) {
	store := newTestStore(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(increment{})
		}()
	}
	wg.Wait()

	require.NoError(t, store.Flush().Join())
	assert.Equal(t, 50, store.State().counter)
}

func TestSequentialDispatchEqualsSequentialReduction(t *testing.T) {
	actions := []testAction{increment{}, setValue{value: 10}, decrement{}}

	expected := testState{counter: 3}
	for _, a := range actions {
		expected, _ = reducer(expected, a)
	}

	store := newTestStore(t, 3)
	done := make(chan struct{})
	go func() {
		defer close(done)
		// Each dispatch happens-before the next one
		for _, a := range actions {
			store.Dispatch(a)
		}
	}()
	<-done

	require.NoError(t, store.Flush().Join())
	assert.Equal(t, expected, store.State())
}

func TestSubscribersNotifiedBeforeCompletionResolves(t *testing.T) {
	store := newTestStore(t, 0)

	var seen atomic.Int64
	store.Subscribe(func(s testState) { seen.Store(int64(s.counter)) })

	require.NoError(t, store.Dispatch(setValue{value: 42}).Join())
	assert.Equal(t, int64(42), seen.Load())
}

func TestSubscriberMayDispatch(t *testing.T) {
	store := newTestStore(t, 0)

	store.Subscribe(func(s testState) {
		if s.counter == 1 {
			store.Dispatch(setValue{value: 10})
		}
	})

	require.NoError(t, store.Dispatch(increment{}).Join())
	require.NoError(t, store.Flush().Join())
	assert.Equal(t, 10, store.State().counter)
}

func TestPanickingSubscriberDoesNotStopStore(t *testing.T) {
	store := newTestStore(t, 0)

	store.Subscribe(func(s testState) {
		if s.counter == 1 {
			panic("subscriber bug")
		}
	})
	other := 0
	store.Subscribe(func(s testState) { other = s.counter })

	require.NoError(t, store.Dispatch(increment{}).Join())
	assert.Equal(t, 1, other)
}

func TestMiddleware(t *testing.T) {
	var seen []string
	logging := func(name string) Middleware[testState, testAction] {
		return func(ctx Dispatcher[testState, testAction], next func(testAction) error, action testAction) error {
			seen = append(seen, name)
			return next(action)
		}
	}
	dropDecrements := func(ctx Dispatcher[testState, testAction], next func(testAction) error, action testAction) error {
		if _, ok := action.(decrement); ok {
			return nil
		}
		return next(action)
	}
	doubleIncrements := func(ctx Dispatcher[testState, testAction], next func(testAction) error, action testAction) error {
		if _, ok := action.(increment); ok {
			if err := next(action); err != nil {
				return err
			}
			return next(action)
		}
		return next(action)
	}

	store := newTestStore(t, 0, WithMiddleware[testState, testAction](
		logging("first"), logging("second"), dropDecrements, doubleIncrements,
	))

	require.NoError(t, store.Dispatch(increment{}).Join())
	require.NoError(t, store.Dispatch(decrement{}).Join())

	assert.Equal(t, 2, store.State().counter)
	assert.Equal(t, []string{"first", "second", "first", "second"}, seen)
}

func TestMiddlewareFollowUpDispatch(t *testing.T) {
	followUp := func(ctx Dispatcher[testState, testAction], next func(testAction) error, action testAction) error {
		if err := next(action); err != nil {
			return err
		}
		if ctx.State().counter == 1 {
			ctx.Dispatch(setValue{value: 100})
		}
		return nil
	}

	store := newTestStore(t, 0, WithMiddleware[testState, testAction](followUp))

	require.NoError(t, store.Dispatch(increment{}).Join())
	require.NoError(t, store.Flush().Join())
	assert.Equal(t, 100, store.State().counter)
}

func TestSelectDeduplicatesProjection(t *testing.T) {
	store := newTestStore(t, 1)

	var parities []bool
	Select(store, func(s testState) bool { return s.counter%2 == 0 }, func(even bool) {
		parities = append(parities, even)
	})

	for _, v := range []int{3, 5, 6, 8, 9} {
		store.Dispatch(setValue{value: v})
	}
	require.NoError(t, store.Flush().Join())

	assert.Equal(t, []bool{false, true, false}, parities)
}

func TestSelectFuncCustomEquality(t *testing.T) {
	store := newTestStore(t, 1)

	var lengths [][]int
	SelectFunc(store,
		func(s testState) []int { return make([]int, s.counter) },
		func(a, b []int) bool { return len(a) == len(b) },
		func(v []int) { lengths = append(lengths, v) },
	)

	store.Dispatch(setValue{value: 1})
	store.Dispatch(setValue{value: 2})
	require.NoError(t, store.Flush().Join())

	assert.Len(t, lengths, 2)
}

func TestCloseRejectsFurtherDispatch(t *testing.T) {
	store := NewStore[testState, testAction](testState{}, reducer)
	store.Close()
	store.Close()

	err := store.Dispatch(increment{}).Join()
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.Equal(t, 0, store.State().counter)
}

func TestCompletionWaitHonoursContext(t *testing.T) {
	blocker := make(chan struct{})
	block := func(ctx Dispatcher[testState, testAction], next func(testAction) error, action testAction) error {
		<-blocker
		return next(action)
	}
	store := NewStore[testState, testAction](testState{}, reducer, WithMiddleware[testState, testAction](block))
	defer store.Close()
	defer close(blocker)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := store.Dispatch(increment{})
	assert.ErrorIs(t, c.Wait(ctx), context.DeadlineExceeded)
	assert.NoError(t, c.Err())
}
