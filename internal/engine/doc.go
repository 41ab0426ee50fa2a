// Package engine defines the contracts between the browser core and a
// browser engine backend.
//
// An Engine creates Sessions. A Session is a live, engine-backed page
// context; the session registry binds at most one of them to each logical
// browser session and is the only component allowed to close it.
//
// Backends report page events through Observer. Observers embed
// BaseObserver and override the callbacks they care about:
//
//	type titleLogger struct {
//	    engine.BaseObserver
//	}
//
//	func (titleLogger) OnTitleChange(title string) { log.Println(title) }
//
// Optional capabilities (Navigator, Finder) are discovered with a type
// assertion on the Session.
package engine
