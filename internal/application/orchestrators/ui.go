// Package orchestrators holds the storefront client's flow controllers:
// session lifecycle, cart mirroring, the checkout state machine and order
// history paging. Controllers render through narrow presentation
// interfaces and never depend on a concrete rendering layer.
package orchestrators

// Navigator moves the user agent: in-app redirects and URLs opened in a
// new browsing context (payment approvals, invoice print views).
type Navigator interface {
	Redirect(path string)
	OpenExternal(url string)
}

// StatusView shows transient status messages outside any specific form.
type StatusView interface {
	ShowStatus(msg string, isError bool)
}
