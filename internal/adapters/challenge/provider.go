// Package challenge binds third-party human-verification widgets to forms
// and brokers their single-use tokens.
package challenge

// Provider is the third-party widget integration. The real provider loads
// out-of-process and becomes ready asynchronously, hence the Ready probe.
type Provider interface {
	// Ready reports whether the provider has finished loading.
	Ready() bool
	// Render creates a widget for the given site key and returns its
	// opaque handle.
	Render(siteKey string) (string, error)
	// Response returns the widget's current single-use token via the
	// provider's programmatic accessor.
	Response(widgetID string) (string, error)
	// RawResponse reads the widget's raw response field directly, for
	// providers whose accessor is unavailable.
	RawResponse(widgetID string) string
	// Reset clears the widget so a fresh token can be issued.
	Reset(widgetID string) error
}
