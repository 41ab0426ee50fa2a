// Package http implements the control API of the browser core.
//
// Routes:
//
//	GET    /                          service info
//	GET    /health                    session and extension counts
//	GET    /state                     browser store snapshot
//	GET    /sessions                  session list with selection
//	POST   /sessions                  add a session and load its URL
//	GET    /sessions/:id              one session
//	POST   /sessions/:id/select       select a session
//	POST   /sessions/:id/load         load a URL in a session
//	POST   /sessions/:id/navigate     back, forward or reload
//	POST   /sessions/:id/find         find in page
//	POST   /sessions/:id/find/next    next or previous match
//	DELETE /sessions/:id/find         end the search
//	DELETE /sessions/:id              remove a session
//	DELETE /sessions                  remove every session
//	GET    /extensions                catalogue merged with installed state
//	POST   /extensions                sideload an extension
//	POST   /extensions/:id/install    install from the catalogue
//	POST   /extensions/:id/message    message the extension's listeners
//	GET    /extensions/:id/console    console output of the extension
//	DELETE /extensions/:id            uninstall
//	POST   /search/region             change the search region
//	PATCH  /downloads/:id             update a download's status
//	DELETE /downloads/:id             forget a download
//	POST   /logs                      ingest UI log entries
//
// Errors are reported as {"success": false, "error": "..."} with a status
// derived from the sentinel error.
package http
