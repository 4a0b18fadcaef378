package payments

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

type registration struct {
	gateway PaymentGateway
	methods []string // empty means any method
}

// PaymentManager maps gateway names to adapters. Gateways are registered at
// start-up; lookups are safe for concurrent use afterwards.
type PaymentManager struct {
	gateways map[string]registration
}

func NewPaymentManager() *PaymentManager {
	return &PaymentManager{gateways: make(map[string]registration)}
}

// RegisterGateway adds an adapter under name, optionally restricted to the given payment methods.
func (m *PaymentManager) RegisterGateway(name string, gateway PaymentGateway, methods ...string) {
	m.gateways[normalizeName(name)] = registration{gateway: gateway, methods: methods}
}

func (m *PaymentManager) Gateway(name string) (PaymentGateway, error) {
	reg, ok := m.gateways[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGatewayNotRegistered, name)
	}
	return reg.gateway, nil
}

func (m *PaymentManager) Has(name string) bool {
	_, ok := m.gateways[normalizeName(name)]
	return ok
}

// MethodAllowed reports whether method may be used with the named gateway.
func (m *PaymentManager) MethodAllowed(name, method string) bool {
	reg, ok := m.gateways[normalizeName(name)]
	if !ok {
		return false
	}
	if len(reg.methods) == 0 {
		return true
	}
	return slices.Contains(reg.methods, strings.ToLower(strings.TrimSpace(method)))
}

func (m *PaymentManager) Methods(name string) []string {
	return slices.Clone(m.gateways[normalizeName(name)].methods)
}

// Names returns the registered gateway names in sorted order.
func (m *PaymentManager) Names() []string {
	names := make([]string, 0, len(m.gateways))
	for n := range m.gateways {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
