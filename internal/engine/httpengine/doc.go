/*
Package httpengine is a headless engine backend that loads pages over HTTP.

# Overview

It does not render anything. A load fetches the document, reports the
events a rendering engine would report (loading state, progress, location,
title, security, navigation state) and keeps the parsed document so find in
page works on its text.

# Loading

 1. The request goes through a shared rate limiter and circuit breaker
 2. The body is read up to the configured limit
 3. Non-HTML responses are handed to observers as external resources
 4. HTML is decoded to UTF-8 (declared or detected charset) and parsed

Loads run on their own goroutine. Starting a new load or closing the session
cancels the previous one.

# Sessions

Normal sessions share one cookie jar; each private session gets its own.
Every session keeps a back/forward history and implements engine.Navigator
and engine.Finder.

# Usage Example

	eng := httpengine.New(settings, logger)
	s, err := eng.CreateSession(false)
	if err != nil {
	    return err
	}
	s.Register(observer)
	err = s.LoadURL("https://example.com")
*/
package httpengine
