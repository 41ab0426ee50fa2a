// Package feature holds the presentation adapters that project the session
// registry and the browser store onto UI surfaces. Each subpackage defines
// the view interface it drives and never mutates state except through
// dispatch or explicit Manager calls.
package feature
