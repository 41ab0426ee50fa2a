package extension

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
)

// maxConsole bounds the console history kept per runtime.
const maxConsole = 200

// bindings is what a runtime calls back into.
type bindings interface {
	updateBrowserAction(extensionID string, action browserstate.BrowserAction)
	createTab(ext *Extension, url string) error
	reportError(extensionID string, err error)
}

// Runtime is the goja VM of one extension.
type Runtime struct {
	ext    *Extension
	config Config
	host   bindings

	mu        sync.Mutex
	vm        *goja.Runtime
	closed    bool
	action    browserstate.BrowserAction
	onClick   []goja.Callable
	onMessage []goja.Callable

	consoleMu sync.Mutex
	console   []LogEntry
}

func newRuntime(ext *Extension, config Config, host bindings) *Runtime {
	r := &Runtime{
		ext:    ext,
		config: config,
		host:   host,
		vm:     goja.New(),
	}
	if config.MaxCallStack > 0 {
		r.vm.SetMaxCallStackSize(config.MaxCallStack)
	}
	r.setupGlobals()
	return r
}

// Run executes script and returns its exported value.
func (r *Runtime) Run(ctx context.Context, script string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRuntimeClosed
	}
	val, err := r.guard(ctx, func() (goja.Value, error) {
		return r.vm.RunString(script)
	})
	if err != nil {
		return nil, err
	}
	return exportValue(val), nil
}

// Message calls every runtime.onMessage listener with msg and returns
// their results.
func (r *Runtime) Message(ctx context.Context, msg any) ([]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRuntimeClosed
	}

	results := make([]any, 0, len(r.onMessage))
	for _, listener := range r.onMessage {
		val, err := r.guard(ctx, func() (goja.Value, error) {
			return listener(goja.Undefined(), r.vm.ToValue(msg))
		})
		if err != nil {
			return results, err
		}
		results = append(results, exportValue(val))
	}
	return results, nil
}

// click calls every browserAction.onClicked listener.
func (r *Runtime) click(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}
	for _, listener := range r.onClick {
		if _, err := r.guard(ctx, func() (goja.Value, error) {
			return listener(goja.Undefined())
		}); err != nil {
			return err
		}
	}
	return nil
}

// guard runs fn with the timeout and ctx wired to a VM interrupt.
func (r *Runtime) guard(ctx context.Context, fn func() (goja.Value, error)) (goja.Value, error) {
	vm := r.vm
	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-timer.C:
			vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	val, err := fn()
	close(done)
	<-exited
	vm.ClearInterrupt()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}
	return val, nil
}

// Console returns the console output so far.
func (r *Runtime) Console() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	return append([]LogEntry(nil), r.console...)
}

// Close releases the VM. Calls after Close fail with ErrRuntimeClosed.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.vm = nil
	r.onClick = nil
	r.onMessage = nil
	return nil
}

func (r *Runtime) setupGlobals() {
	vm := r.vm

	// Remove dangerous globals
	vm.Set("require", goja.Undefined())
	vm.Set("process", goja.Undefined())
	vm.Set("module", goja.Undefined())
	vm.Set("exports", goja.Undefined())

	if r.config.EnableConsole {
		console := vm.NewObject()
		for _, level := range []string{"log", "info", "warn", "error"} {
			console.Set(level, r.makeConsoleFunc(level))
		}
		vm.Set("console", console)
	}

	// Timers are no-ops
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	vm.Set("setTimeout", noop)
	vm.Set("setInterval", noop)

	browser := vm.NewObject()
	browser.Set("browserAction", r.browserActionAPI())
	browser.Set("tabs", r.tabsAPI())
	browser.Set("runtime", r.runtimeAPI())
	vm.Set("browser", browser)
}

func (r *Runtime) browserActionAPI() *goja.Object {
	api := r.vm.NewObject()

	api.Set("setTitle", func(title string) {
		r.updateAction(func(a *browserstate.BrowserAction) { a.Title = &title })
	})
	api.Set("setBadgeText", func(text string) {
		r.updateAction(func(a *browserstate.BrowserAction) { a.BadgeText = &text })
	})
	api.Set("setBadgeTextColor", func(color int) {
		r.updateAction(func(a *browserstate.BrowserAction) { a.BadgeTextColor = &color })
	})
	api.Set("setBadgeBackgroundColor", func(color int) {
		r.updateAction(func(a *browserstate.BrowserAction) { a.BadgeBackgroundColor = &color })
	})
	api.Set("enable", func() {
		enabled := true
		r.updateAction(func(a *browserstate.BrowserAction) { a.Enabled = &enabled })
	})
	api.Set("disable", func() {
		enabled := false
		r.updateAction(func(a *browserstate.BrowserAction) { a.Enabled = &enabled })
	})

	onClicked := r.vm.NewObject()
	onClicked.Set("addListener", func(call goja.FunctionCall) goja.Value {
		r.onClick = append(r.onClick, r.callable(call.Argument(0)))
		return goja.Undefined()
	})
	api.Set("onClicked", onClicked)

	return api
}

func (r *Runtime) tabsAPI() *goja.Object {
	api := r.vm.NewObject()
	api.Set("create", func(call goja.FunctionCall) goja.Value {
		props := call.Argument(0).ToObject(r.vm)
		url := props.Get("url")
		if url == nil || goja.IsUndefined(url) {
			panic(r.vm.NewTypeError("tabs.create: url is required"))
		}
		if err := r.host.createTab(r.ext, url.String()); err != nil {
			panic(r.vm.NewGoError(err))
		}
		return goja.Undefined()
	})
	return api
}

func (r *Runtime) runtimeAPI() *goja.Object {
	api := r.vm.NewObject()
	api.Set("id", r.ext.ID)

	onMessage := r.vm.NewObject()
	onMessage.Set("addListener", func(call goja.FunctionCall) goja.Value {
		r.onMessage = append(r.onMessage, r.callable(call.Argument(0)))
		return goja.Undefined()
	})
	api.Set("onMessage", onMessage)

	return api
}

func (r *Runtime) callable(val goja.Value) goja.Callable {
	fn, ok := goja.AssertFunction(val)
	if !ok {
		panic(r.vm.NewTypeError("listener must be a function"))
	}
	return fn
}

// updateAction applies change and publishes the resulting browser action.
// It runs inside script execution, so r.mu is already held.
func (r *Runtime) updateAction(change func(*browserstate.BrowserAction)) {
	change(&r.action)
	published := r.action
	published.OnClick = func() {
		// Clicks come from presenters, never from inside the VM
		if err := r.click(context.Background()); err != nil {
			r.host.reportError(r.ext.ID, err)
		}
	}
	r.host.updateBrowserAction(r.ext.ID, published)
}

func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		if len(r.console) > maxConsole {
			r.console = r.console[len(r.console)-maxConsole:]
		}
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

func exportValue(val goja.Value) any {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}
