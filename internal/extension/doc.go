/*
Package extension runs web extension background scripts.

Each installed extension gets its own goja runtime. Scripts see a small
subset of the WebExtensions API:

	browser.browserAction.setTitle(title)
	browser.browserAction.setBadgeText(text)
	browser.browserAction.setBadgeTextColor(color)
	browser.browserAction.setBadgeBackgroundColor(color)
	browser.browserAction.enable() / disable()
	browser.browserAction.onClicked.addListener(fn)
	browser.tabs.create({url})
	browser.runtime.onMessage.addListener(fn)
	console.log / info / warn / error

Browser action changes are dispatched to the browser store as
UpdateBrowserAction. tabs.create creates an engine session and hands it to
the engine.WebExtensionsTabsDelegate, which decides where the tab goes.

Security model:
  - require, process, module and exports are removed
  - timers are no-ops
  - every script run and listener call is interrupted after Config.Timeout
  - a runtime executes one call at a time
*/
package extension
