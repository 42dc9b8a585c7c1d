package model

// CoalitionStatus tells whether a party was part of the ruling coalition
type CoalitionStatus string

const (
	StatusMajority CoalitionStatus = "majority"
	StatusMinority CoalitionStatus = "minority"
	StatusUnknown  CoalitionStatus = "" // No party or no covering relation
)

// Affiliation is the resolved political affiliation of a speaker on a date.
// Empty strings stand for null values.
type Affiliation struct {
	Party  string          `json:"party_id,omitempty"`
	Role   string          `json:"role,omitempty"`
	Status CoalitionStatus `json:"party_status,omitempty"`
	Gov    string          `json:"gov,omitempty"`
}
