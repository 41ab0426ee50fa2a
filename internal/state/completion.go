package state

import "context"

// Completion resolves once a dispatched action has been reduced and every
// subscriber notification for the resulting state has run.
type Completion struct {
	done chan struct{}
	err  error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

func failedCompletion(err error) *Completion {
	c := newCompletion()
	c.resolve(err)
	return c
}

func (c *Completion) resolve(err error) {
	c.err = err
	close(c.done)
}

// Done is closed when the action has been processed.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Err returns the processing error. It is only meaningful after Done is closed.
func (c *Completion) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the action has been processed or ctx is done.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join blocks until the action has been processed.
func (c *Completion) Join() error {
	<-c.done
	return c.err
}
