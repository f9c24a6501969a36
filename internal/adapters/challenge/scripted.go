package challenge

import "fmt"

// ScriptedProvider is an in-process Provider for development and tests.
// Every rendered widget yields one token per Reset cycle, mimicking the
// real widget's single-use contract.
type ScriptedProvider struct {
	ReadyAfter int // number of Ready probes that report false first

	probes  int
	counter int
	tokens  map[string]string
}

// NewScriptedProvider creates a provider that is ready immediately.
func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{tokens: make(map[string]string)}
}

// Ready reports readiness, honouring ReadyAfter for poll testing.
func (p *ScriptedProvider) Ready() bool {
	if p.probes < p.ReadyAfter {
		p.probes++
		return false
	}
	return true
}

// Render creates a widget handle and arms its first token.
func (p *ScriptedProvider) Render(siteKey string) (string, error) {
	if p.tokens == nil {
		p.tokens = make(map[string]string)
	}
	p.counter++
	id := fmt.Sprintf("widget-%d", p.counter)
	p.tokens[id] = fmt.Sprintf("tok-%s-1", id)
	return id, nil
}

// Response returns the widget's current token.
func (p *ScriptedProvider) Response(widgetID string) (string, error) {
	tok, ok := p.tokens[widgetID]
	if !ok {
		return "", fmt.Errorf("unknown widget %s", widgetID)
	}
	return tok, nil
}

// RawResponse mirrors Response for the scripted provider.
func (p *ScriptedProvider) RawResponse(widgetID string) string {
	return p.tokens[widgetID]
}

// Reset issues a fresh token for the widget.
func (p *ScriptedProvider) Reset(widgetID string) error {
	if _, ok := p.tokens[widgetID]; !ok {
		return fmt.Errorf("unknown widget %s", widgetID)
	}
	p.counter++
	p.tokens[widgetID] = fmt.Sprintf("tok-%s-%d", widgetID, p.counter)
	return nil
}
