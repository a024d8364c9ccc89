package scenegen

// Trip Concrete origin-destination pair anchored to resolvable graph
// elements, produced by the demand assembler. Trips whose destination could
// not be resolved are dropped, never emitted with placeholder anchors.
type Trip struct {
	HouseholdID HouseholdID `json:"household_id"`
	PersonIdx   int         `json:"person_idx"`
	Purpose     TripPurpose `json:"purpose"`
	Agent       AgentType   `json:"agent"`
	Origin      ElementID   `json:"origin"`
	Destination ElementID   `json:"destination"`
	// DepartSec is seconds after midnight.
	DepartSec int `json:"depart_sec"`
}
