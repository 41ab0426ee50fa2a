// Package ws streams the browser UI projection over WebSocket.
//
// Each connection acts as a toolbar, a tab counter and a find-in-page view:
// it runs its own presenters against the browser store and forwards what
// they render as JSON frames.
//
// Message Types (Client → Server):
//   - ping: keep-alive ping
//   - click: click the browser action of extension_id
//   - find: search text in tab_id
//   - find_next: move to the next (forward) or previous match
//   - find_clear: end the search
//
// Message Types (Server → Client):
//   - system: connected
//   - url, search_terms, progress, security: toolbar of the selected tab
//   - browser_action: a new extension browser action
//   - tab_count, private_tab_count: tab counters
//   - find_result, find_cleared: find in page
//   - pong, error
//
// Example Usage:
//
//	handler := ws.NewHandler(store, interactor, metrics, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
