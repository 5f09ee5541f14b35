// Package dom provides a headless, mutex-guarded HTML document used to drive
// form submissions without a browser.
//
// The document keeps the parsed markup (golang.org/x/net/html) and, beside it,
// the live state of form controls: typed values, checked flags, selected
// options and attached files. Markup attributes act as defaults, so
// resetting a form simply discards the live state.
//
// Forms are located with CSS selectors (cascadia); attribute lookups such as
// error slots use XPath through htmlquery. Elements expose a small event
// target API so callers can intercept submit events and observe custom
// notification events.
package dom
