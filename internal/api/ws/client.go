package ws

import (
	"sync"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/feature/toolbar"
)

// sendBuffer is how many frames may wait for the writer.
const sendBuffer = 64

// client is one connection seen as a UI surface. Presenter callbacks run on
// the store goroutine and only queue frames.
type client struct {
	send chan Frame
	done chan struct{}

	mu      sync.Mutex
	actions map[string]func()
	dropped int
}

func newClient() *client {
	return &client{
		send:    make(chan Frame, sendBuffer),
		done:    make(chan struct{}),
		actions: make(map[string]func()),
	}
}

// push queues f, dropping it if the writer is behind.
func (c *client) push(f Frame) {
	select {
	case <-c.done:
	case c.send <- f:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
	}
}

func (c *client) close() {
	close(c.done)
}

// click runs the browser action of an extension. It reports false if the
// extension has not shown one on this connection.
func (c *client) click(extensionID string) bool {
	c.mu.Lock()
	onClick := c.actions[extensionID]
	c.mu.Unlock()

	if onClick == nil {
		return false
	}
	onClick()
	return true
}

func (c *client) SetURL(url string) { c.push(newFrame("url", url)) }

func (c *client) SetSearchTerms(terms string) { c.push(newFrame("search_terms", terms)) }

func (c *client) DisplayProgress(progress int) { c.push(newFrame("progress", progress)) }

func (c *client) SetSiteSecurity(security toolbar.SiteSecurity) {
	c.push(newFrame("security", security.String()))
}

func (c *client) AddBrowserAction(action toolbar.ActionButton) {
	if action.OnClick != nil {
		c.mu.Lock()
		c.actions[action.ExtensionID] = action.OnClick
		c.mu.Unlock()
	}
	c.push(newFrame("browser_action", actionFrame(action)))
}

func (c *client) DisplayResult(result browserstate.FindResult) {
	c.push(newFrame("find_result", findFrame(result)))
}

func (c *client) Focus() {}

func (c *client) Clear() { c.push(newFrame("find_cleared", nil)) }

// counter forwards one tab counter to the client.
type counter struct {
	client    *client
	frameType string
}

func (c counter) SetCount(count int) { c.client.push(newFrame(c.frameType, count)) }
