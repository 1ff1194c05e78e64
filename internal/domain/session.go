package domain

import "time"

// Session is a saved survey: the configuration a diagram was built from and
// the device positions the user arranged
type Session struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Config    TopologyConfig   `json:"config"`
	Positions map[string]Point `json:"positions,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// SessionSummary is the listing form of a session
type SessionSummary struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Kind         TopologyKind `json:"kind"`
	CustomerName string       `json:"customerName"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Summary returns the listing form of s
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		Name:         s.Name,
		Kind:         s.Config.Kind,
		CustomerName: s.Config.CustomerName,
		UpdatedAt:    s.UpdatedAt,
	}
}
