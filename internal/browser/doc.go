// Package browser provides the browsing session used to read profile pages.
//
// Session is the capability the rest of the program depends on: navigate,
// wait for an element, type, click and snapshot the rendered HTML. Rod
// implements it on top of a Chrome instance driven through the DevTools
// protocol, with the stealth scripts applied to every page.
//
// A Session is owned by exactly one caller and is not safe for concurrent
// use. Close must be called on every exit path; it is idempotent.
package browser
