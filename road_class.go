package scenegen

type RoadClass uint16

const (
	ROAD_MOTORWAY = RoadClass(iota + 1)
	ROAD_TRUNK
	ROAD_PRIMARY
	ROAD_SECONDARY
	ROAD_TERTIARY
	ROAD_RESIDENTIAL
	ROAD_LIVING_STREET
	ROAD_SERVICE
	ROAD_CYCLEWAY
	ROAD_FOOTWAY
	ROAD_UNCLASSIFIED
	ROAD_UNDEFINED = RoadClass(0)
)

func (iotaIdx RoadClass) String() string {
	return [...]string{"undefined", "motorway", "trunk", "primary", "secondary", "tertiary", "residential", "living_street", "service", "cycleway", "footway", "unclassified"}[iotaIdx]
}

var (
	roadClassByTag = map[string]RoadClass{
		"motorway":       ROAD_MOTORWAY,
		"motorway_link":  ROAD_MOTORWAY,
		"trunk":          ROAD_TRUNK,
		"trunk_link":     ROAD_TRUNK,
		"primary":        ROAD_PRIMARY,
		"primary_link":   ROAD_PRIMARY,
		"secondary":      ROAD_SECONDARY,
		"secondary_link": ROAD_SECONDARY,
		"tertiary":       ROAD_TERTIARY,
		"tertiary_link":  ROAD_TERTIARY,
		"residential":    ROAD_RESIDENTIAL,
		"living_street":  ROAD_LIVING_STREET,
		"service":        ROAD_SERVICE,
		"cycleway":       ROAD_CYCLEWAY,
		"footway":        ROAD_FOOTWAY,
		"unclassified":   ROAD_UNCLASSIFIED,
		"road":           ROAD_UNCLASSIFIED,
	}

	// residentialRoadClasses are the edge classes which may anchor a home.
	residentialRoadClasses = map[RoadClass]struct{}{
		ROAD_RESIDENTIAL:   {},
		ROAD_LIVING_STREET: {},
		ROAD_UNCLASSIFIED:  {},
	}

	// transitCompatibleRoadClasses constrain transit stop matching: a stop
	// never snaps to a grade-separated or non-vehicular edge.
	transitCompatibleRoadClasses = map[RoadClass]struct{}{
		ROAD_PRIMARY:      {},
		ROAD_SECONDARY:    {},
		ROAD_TERTIARY:     {},
		ROAD_RESIDENTIAL:  {},
		ROAD_UNCLASSIFIED: {},
	}
)

// ParseRoadClass maps an OSM-style highway tag value onto a road class.
func ParseRoadClass(tag string) RoadClass {
	if class, ok := roadClassByTag[tag]; ok {
		return class
	}
	return ROAD_UNDEFINED
}

// IsResidential reports whether edges of this class may anchor households.
func (iotaIdx RoadClass) IsResidential() bool {
	_, ok := residentialRoadClasses[iotaIdx]
	return ok
}
