// Package state implements a unidirectional state container.
//
// A Store holds one immutable state value. Actions are dispatched from any
// goroutine and queued; a single goroutine owned by the store takes them in
// dispatch order, runs them through the middleware chain and the reducer,
// publishes the resulting state and notifies subscribers. Subscribers are
// called on that goroutine, so a subscriber that needs to run somewhere
// else must hand the value off itself.
//
// Reducers are pure functions. A reducer that returns an error (or panics)
// aborts its action and leaves the previous state current; the error is
// reported on the action's Completion and to the store's ErrorHandler.
//
// Example Usage:
//
//	store := state.NewStore(initial, reduce, state.WithLogger[*AppState, Action](logger))
//	defer store.Close()
//
//	sub := state.Select(store, func(s *AppState) int { return len(s.Items) }, func(n int) {
//		fmt.Println("items:", n)
//	})
//	defer sub.Unsubscribe()
//
//	if err := store.Dispatch(AddItem{Name: "x"}).Wait(ctx); err != nil {
//		return err
//	}
package state
