package domain

import (
	"fmt"
	"slices"
)

// AllAgentsLabel is the current-agent label of a view whose registry has no
// triage entry (the broadcast view).
const AllAgentsLabel = "All Agents"

// AgentDefinition is a persona: a fixed system instruction sent to the model.
type AgentDefinition struct {
	ID          string   `json:"id"`
	Instruction string   `json:"instruction"`
	Color       string   `json:"color,omitempty"`
	Routing     string   `json:"routing,omitempty"` // topical rule line for the router meta-prompt
	Tools       []string `json:"tools,omitempty"`
}

// HasTools reports whether the agent may call tools.
func (d AgentDefinition) HasTools() bool { return len(d.Tools) > 0 }

func (d AgentDefinition) clone() AgentDefinition {
	d.Tools = slices.Clone(d.Tools)
	return d
}

// Registry is an immutable, ordered set of agent definitions.
type Registry struct {
	name   string
	triage string
	order  []string
	agents map[string]AgentDefinition
}

// NewRegistry builds a registry. It panics on duplicate or empty ids and when
// triageID is set but not among defs; these are programming errors in the
// static catalog, not runtime conditions.
func NewRegistry(name, triageID string, defs ...AgentDefinition) *Registry {
	r := &Registry{
		name:   name,
		triage: triageID,
		order:  make([]string, 0, len(defs)),
		agents: make(map[string]AgentDefinition, len(defs)),
	}
	for _, d := range defs {
		if d.ID == "" {
			panic(fmt.Sprintf("registry %s: agent with empty id", name))
		}
		if _, dup := r.agents[d.ID]; dup {
			panic(fmt.Sprintf("registry %s: duplicate agent %q", name, d.ID))
		}
		r.order = append(r.order, d.ID)
		r.agents[d.ID] = d.clone()
	}
	if triageID != "" {
		if _, ok := r.agents[triageID]; !ok {
			panic(fmt.Sprintf("registry %s: triage agent %q not registered", name, triageID))
		}
	}
	return r
}

// Name returns the registry name.
func (r *Registry) Name() string { return r.name }

// TriageID returns the fallback agent id, or "" for a registry without one.
func (r *Registry) TriageID() string { return r.triage }

// DefaultAgentID is the current-agent value of a fresh or cleared conversation.
func (r *Registry) DefaultAgentID() string {
	if r.triage == "" {
		return AllAgentsLabel
	}
	return r.triage
}

// Lookup returns the definition for id.
func (r *Registry) Lookup(id string) (AgentDefinition, bool) {
	d, ok := r.agents[id]
	if !ok {
		return AgentDefinition{}, false
	}
	return d.clone(), true
}

// MustLookup returns the definition for id and panics if it is unknown.
// Callers only pass ids drawn from the registry itself.
func (r *Registry) MustLookup(id string) AgentDefinition {
	d, ok := r.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("registry %s: unknown agent %q", r.name, id))
	}
	return d
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.agents[id]
	return ok
}

// IDs returns agent ids in registration order.
func (r *Registry) IDs() []string { return slices.Clone(r.order) }

// Len returns the number of agents.
func (r *Registry) Len() int { return len(r.order) }

// Agents returns all definitions in registration order.
func (r *Registry) Agents() []AgentDefinition {
	out := make([]AgentDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.agents[id].clone())
	}
	return out
}

// Specialists returns every definition except triage, in registration order.
func (r *Registry) Specialists() []AgentDefinition {
	out := make([]AgentDefinition, 0, len(r.order))
	for _, id := range r.order {
		if id == r.triage {
			continue
		}
		out = append(out, r.agents[id].clone())
	}
	return out
}
