package llm

import (
	"context"
	"sync"
)

// MockClient implements Client for testing. It allows scripting responses
// per persona, simulating errors, and tracking calls for verification.
type MockClient struct {
	mu sync.Mutex

	// Configured responses
	responses   map[string][]string // persona name -> queued raw responses
	defaultText string
	route       string
	generateErr error
	routeErr    error

	// Call tracking
	GenerateCalls []GenerateCall
	RouteCalls    []RouteCall
}

// GenerateCall records a call to Generate.
type GenerateCall struct {
	Persona Persona
	Context string
	Trigger string
}

// RouteCall records a call to Route.
type RouteCall struct {
	Question string
	History  string
}

// NewMockClient creates a MockClient that answers every Generate call with
// defaultText and every Route call with route.
func NewMockClient() *MockClient {
	return &MockClient{
		responses:   make(map[string][]string),
		defaultText: `{"message": "ok", "action": {"type": "NONE", "payload": {}}}`,
	}
}

// WithDefault configures the fallback raw response for Generate.
func (m *MockClient) WithDefault(raw string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultText = raw
	return m
}

// QueueResponse appends a raw response for a persona. Queued responses are
// consumed in order before the default is used.
func (m *MockClient) QueueResponse(personaName, raw string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[personaName] = append(m.responses[personaName], raw)
	return m
}

// WithRoute configures the identity returned by Route.
func (m *MockClient) WithRoute(name string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.route = name
	return m
}

// WithGenerateError configures the error returned by Generate.
func (m *MockClient) WithGenerateError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateErr = err
	return m
}

// WithRouteError configures the error returned by Route.
func (m *MockClient) WithRouteError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routeErr = err
	return m
}

// Generate returns the next queued response for the persona, or the
// default.
func (m *MockClient) Generate(_ context.Context, persona Persona, simContext, trigger string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, GenerateCall{Persona: persona, Context: simContext, Trigger: trigger})
	if m.generateErr != nil {
		return "", m.generateErr
	}
	if queue := m.responses[persona.Name]; len(queue) > 0 {
		raw := queue[0]
		m.responses[persona.Name] = queue[1:]
		return raw, nil
	}
	return m.defaultText, nil
}

// Route returns the configured identity.
func (m *MockClient) Route(_ context.Context, question, history string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RouteCalls = append(m.RouteCalls, RouteCall{Question: question, History: history})
	if m.routeErr != nil {
		return "", m.routeErr
	}
	return m.route, nil
}
