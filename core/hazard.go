package core

// Hazard categorizes the kind of emergency an utterance is about. The set is
// closed; free-text hazard mentions are normalized into one of these values
// during classification.
type Hazard string

const (
	HazardFlood      Hazard = "flood"
	HazardFire       Hazard = "fire"
	HazardWildfire   Hazard = "wildfire"
	HazardEarthquake Hazard = "earthquake"
	HazardHurricane  Hazard = "hurricane"
	HazardTornado    Hazard = "tornado"
	HazardMedical    Hazard = "medical"
	HazardGeneral    Hazard = "general"
	HazardUnknown    Hazard = ""
)

// Known reports whether the hazard carries a concrete classification.
func (h Hazard) Known() bool { return h != HazardUnknown && h != HazardGeneral }

// OrGeneral substitutes the general hazard for an unknown one, used when a
// lookup table needs a key for the default row.
func (h Hazard) OrGeneral() Hazard {
	if h == HazardUnknown {
		return HazardGeneral
	}
	return h
}
