// Package catalog defines the static agent registries served by swarmbot.
package catalog

import (
	"slices"

	"github.com/KLM-Solutions/swarm-bot/internal/domain"
)

// Registry names.
const (
	ProductName          = "product"
	ProductBroadcastName = "product-broadcast"
	HealthcareName       = "healthcare"
)

// TriageAgent is the fallback agent id shared by the product and healthcare registries.
const TriageAgent = "Triage Agent"

// BookAppointmentTool is the tool exposed to the appointment scheduling agent.
const BookAppointmentTool = "book_appointment"

var builders = map[string]func() *domain.Registry{
	ProductName:          Product,
	ProductBroadcastName: ProductBroadcast,
	HealthcareName:       Healthcare,
}

// Lookup returns the registry with the given name.
func Lookup(name string) (*domain.Registry, bool) {
	b, ok := builders[name]
	if !ok {
		return nil, false
	}
	return b(), true
}

// Names lists the known registry names, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for n := range builders {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
