package scenegen

type AgentType uint16

const (
	AGENT_AUTO = AgentType(iota + 1)
	AGENT_BIKE
	AGENT_WALK
	AGENT_TRANSIT
	AGENT_UNDEFINED = AgentType(0)
)

func (iotaIdx AgentType) String() string {
	return [...]string{"undefined", "auto", "bike", "walk", "transit"}[iotaIdx]
}

var (
	// defaultAgentByPurpose gives the mode hint attached to assembled trips.
	// The simulation is free to re-assign modes; this is a hint only.
	defaultAgentByPurpose = map[TripPurpose]AgentType{
		PURPOSE_WORK:    AGENT_AUTO,
		PURPOSE_SCHOOL:  AGENT_WALK,
		PURPOSE_SHOP:    AGENT_AUTO,
		PURPOSE_LEISURE: AGENT_WALK,
		PURPOSE_HOME:    AGENT_AUTO,
	}
)
