package scenegen

type HouseholdID int64

type PersonRole uint16

const (
	ROLE_CHILD = PersonRole(iota + 1)
	ROLE_ADULT
	ROLE_RETIRED
)

func (iotaIdx PersonRole) String() string {
	return [...]string{"undefined", "child", "adult", "retired"}[iotaIdx]
}

type TripPurpose uint16

const (
	PURPOSE_WORK = TripPurpose(iota + 1)
	PURPOSE_SCHOOL
	PURPOSE_SHOP
	PURPOSE_LEISURE
	PURPOSE_HOME
)

func (iotaIdx TripPurpose) String() string {
	return [...]string{"undefined", "work", "school", "shop", "leisure", "home"}[iotaIdx]
}

// destinationActivity maps a trip purpose onto the activity class a
// destination element must carry.
var destinationActivity = map[TripPurpose]ActivityType{
	PURPOSE_WORK:    ACTIVITY_WORKPLACE,
	PURPOSE_SCHOOL:  ACTIVITY_SCHOOL,
	PURPOSE_SHOP:    ACTIVITY_SHOP,
	PURPOSE_LEISURE: ACTIVITY_LEISURE,
	PURPOSE_HOME:    ACTIVITY_RESIDENTIAL,
}

// TripTemplate Planned trip drawn for a person during synthesis; the demand
// assembler resolves it into a concrete trip or drops it as unresolved.
type TripTemplate struct {
	Purpose TripPurpose `json:"purpose"`
	Agent   AgentType   `json:"agent"`
}

// Person Member of exactly one household.
type Person struct {
	Age       int            `json:"age"`
	Role      PersonRole     `json:"role"`
	Templates []TripTemplate `json:"templates,omitempty"`
}

// Household Synthesized entity anchored to a residential graph element.
// Immutable after synthesis: Size always equals len(Persons).
type Household struct {
	ID       HouseholdID `json:"id"`
	ZoneID   string      `json:"zone_id"`
	Anchor   ElementID   `json:"anchor"`
	Size     int         `json:"size"`
	Income   int         `json:"income_bracket"`
	Vehicles int         `json:"vehicles"`
	Persons  []Person    `json:"persons"`
}
