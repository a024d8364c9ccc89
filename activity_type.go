package scenegen

type ActivityType uint16

const (
	ACTIVITY_RESIDENTIAL = ActivityType(iota + 1)
	ACTIVITY_WORKPLACE
	ACTIVITY_SHOP
	ACTIVITY_SCHOOL
	ACTIVITY_LEISURE
	ACTIVITY_TRANSIT
	ACTIVITY_NONE = ActivityType(0)
)

func (iotaIdx ActivityType) String() string {
	return [...]string{"none", "residential", "workplace", "shop", "school", "leisure", "transit"}[iotaIdx]
}

var activityByPOITag = map[string]ActivityType{
	"office":       ACTIVITY_WORKPLACE,
	"industrial":   ACTIVITY_WORKPLACE,
	"commercial":   ACTIVITY_WORKPLACE,
	"work":         ACTIVITY_WORKPLACE,
	"shop":         ACTIVITY_SHOP,
	"retail":       ACTIVITY_SHOP,
	"supermarket":  ACTIVITY_SHOP,
	"school":       ACTIVITY_SCHOOL,
	"university":   ACTIVITY_SCHOOL,
	"kindergarten": ACTIVITY_SCHOOL,
	"leisure":      ACTIVITY_LEISURE,
	"park":         ACTIVITY_LEISURE,
	"residential":  ACTIVITY_RESIDENTIAL,
	"housing":      ACTIVITY_RESIDENTIAL,
}

// ParseActivity maps a POI category tag onto an activity type.
func ParseActivity(tag string) ActivityType {
	if activity, ok := activityByPOITag[tag]; ok {
		return activity
	}
	return ACTIVITY_NONE
}

// assignActivities classifies graph elements after conflation: POI and
// transit matches override, otherwise edges fall back to their road class.
func (graph *Graph) assignActivities(matches []Match) {
	for i := range graph.ids {
		element := graph.elements[graph.ids[i]]
		if element.Kind == ELEMENT_EDGE && element.roadClass.IsResidential() {
			element.activity = ACTIVITY_RESIDENTIAL
		}
	}
	for i := range matches {
		match := &matches[i]
		if match.Status == MATCH_UNMATCHED {
			continue
		}
		var activity ActivityType
		switch match.Kind {
		case RECORD_POI:
			activity = ParseActivity(match.Category)
		case RECORD_TRANSIT_STOP:
			activity = ACTIVITY_TRANSIT
		default:
			continue
		}
		if activity == ACTIVITY_NONE {
			continue
		}
		if element, ok := graph.elements[match.ElementID]; ok {
			element.activity = activity
		}
	}
}
