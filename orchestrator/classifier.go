// Package orchestrator routes utterances to specialist agents: it classifies
// intent (patterns first, AI backend only for low-confidence cases), manages
// per-session conversation context and clarifications, and guarantees every
// turn ends in a well-formed response.
package orchestrator

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/logging"
)

// aiThreshold is the pattern confidence below which the AI backend is
// consulted for a second opinion.
const aiThreshold = 0.6

// Classifier turns raw text into an intent. The deterministic pattern pass
// always runs; the AI backend is optional and only refines weak results.
type Classifier struct {
	backend core.Backend
	logger  logging.Logger
	cfg     core.Config
}

// NewClassifier builds a classifier. A nil backend disables the AI pass.
func NewClassifier(cfg core.Config, backend core.Backend, logger logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Classifier{backend: backend, logger: logger, cfg: cfg}
}

// Classify never fails: a backend error simply leaves the pattern result in
// place. When both paths produce an intent, the higher-confidence one wins,
// except that a rescue classification from either path always prevails over a
// non-rescue one, and a below-threshold backend guess over a pattern miss
// stays unknown.
func (c *Classifier) Classify(ctx context.Context, text string) core.Intent {
	pattern := patternClassify(text)
	if c.backend == nil || pattern.Confidence >= aiThreshold {
		return pattern
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	ai, err := c.backend.Classify(ctx, text)
	logging.LogModelCall(c.logger, c.backend.Provider(), "classify", time.Since(start), err)
	if err != nil {
		return pattern
	}
	return pickIntent(pattern, ai)
}

// pickIntent arbitrates between the pattern and AI classifications.
func pickIntent(pattern, ai core.Intent) core.Intent {
	if pattern.Kind == core.IntentRescue && ai.Kind != core.IntentRescue {
		return pattern
	}
	if ai.Kind == core.IntentRescue && pattern.Kind != core.IntentRescue {
		return mergeSlots(ai, pattern)
	}
	if pattern.Kind == core.IntentUnknown && ai.Confidence < aiThreshold {
		// With no pattern signal, a weak AI result is still a guess. Keep its
		// slots as hints and let the orchestrator ask for clarification.
		return mergeSlots(pattern, ai)
	}
	if ai.Confidence > pattern.Confidence && ai.Kind != core.IntentUnknown {
		return mergeSlots(ai, pattern)
	}
	return pattern
}

// mergeSlots keeps the winning intent but backfills slots the loser detected
// and the winner missed.
func mergeSlots(winner, loser core.Intent) core.Intent {
	if winner.Slots.Location == "" {
		winner.Slots.Location = loser.Slots.Location
	}
	if winner.Slots.Hazard == core.HazardUnknown {
		winner.Slots.Hazard = loser.Slots.Hazard
	}
	if winner.Slots.Urgency == "" {
		winner.Slots.Urgency = loser.Slots.Urgency
	}
	winner.Slots.NeedsMedical = winner.Slots.NeedsMedical || loser.Slots.NeedsMedical
	winner.Slots.NeedsEvacuation = winner.Slots.NeedsEvacuation || loser.Slots.NeedsEvacuation
	winner.Slots.NeedsSupplies = winner.Slots.NeedsSupplies || loser.Slots.NeedsSupplies
	winner.Slots.HasDependents = winner.Slots.HasDependents || loser.Slots.HasDependents
	return winner
}

// resourcePhrases are multi-word markers of a contact lookup request. Each
// match scores double and consumes its words so they cannot also count toward
// other categories ("emergency contact" is not a distress signal).
var resourcePhrases = []string{
	"emergency contact",
	"emergency contacts",
	"emergency number",
	"emergency numbers",
	"contact number",
	"contact numbers",
	"phone number",
	"phone numbers",
	"helpline",
	"hotline",
	"whom to call",
	"who to call",
	"who do i call",
}

// strongDistress is the vocabulary that forces a rescue classification
// regardless of other signals. A bare "help" is deliberately not here; it is
// only a weak rescue hint.
var strongDistress = map[string]bool{
	"trapped": true, "stuck": true, "stranded": true,
	"injured": true, "hurt": true, "bleeding": true, "unconscious": true,
	"drowning": true, "dying": true, "sinking": true,
	"sos": true, "rescue": true, "save": true, "danger": true,
}

var informationWords = map[string]bool{
	"what": true, "when": true, "how": true, "status": true, "situation": true,
	"update": true, "updates": true, "forecast": true, "news": true,
	"information": true, "info": true, "prepare": true, "preparedness": true,
	"safe": true, "safety": true, "warning": true, "warnings": true, "alert": true, "alerts": true,
}

var resourceWords = map[string]bool{
	"contact": true, "contacts": true, "number": true, "numbers": true,
	"phone": true, "email": true, "address": true, "call": true, "reach": true,
}

var hazardWords = map[string]core.Hazard{
	"flood": core.HazardFlood, "floods": core.HazardFlood, "flooding": core.HazardFlood, "flooded": core.HazardFlood,
	"fire": core.HazardFire, "burning": core.HazardFire, "smoke": core.HazardFire,
	"wildfire": core.HazardWildfire, "wildfires": core.HazardWildfire, "bushfire": core.HazardWildfire,
	"earthquake": core.HazardEarthquake, "earthquakes": core.HazardEarthquake, "quake": core.HazardEarthquake, "aftershock": core.HazardEarthquake,
	"hurricane": core.HazardHurricane, "hurricanes": core.HazardHurricane, "cyclone": core.HazardHurricane, "typhoon": core.HazardHurricane, "storm": core.HazardHurricane,
	"tornado": core.HazardTornado, "tornadoes": core.HazardTornado, "twister": core.HazardTornado,
	"medical": core.HazardMedical, "ambulance": core.HazardMedical, "poisoned": core.HazardMedical, "poisoning": core.HazardMedical, "overdose": core.HazardMedical,
}

var urgentWords = map[string]bool{
	"now": true, "immediately": true, "urgent": true, "urgently": true,
	"asap": true, "quickly": true, "fast": true,
}

var medicalNeedWords = map[string]bool{
	"injured": true, "hurt": true, "bleeding": true, "unconscious": true,
	"medicine": true, "medical": true, "ambulance": true, "doctor": true,
}

var evacuationNeedWords = map[string]bool{
	"trapped": true, "stuck": true, "stranded": true, "evacuate": true,
	"evacuation": true, "escape": true, "leave": true,
}

var supplyNeedWords = map[string]bool{
	"food": true, "water": true, "supplies": true, "blankets": true,
	"shelter": true, "medicine": true,
}

var dependentWords = map[string]bool{
	"child": true, "children": true, "kids": true, "baby": true, "infant": true,
	"elderly": true, "grandmother": true, "grandfather": true, "family": true, "pregnant": true,
}

// locationRE captures a capitalized place name after a locative preposition.
var locationRE = regexp.MustCompile(`\b(?:in|at|near|around)\s+((?:[A-Z][a-zA-Z]+)(?:\s+[A-Z][a-zA-Z]+)*)`)

// patternClassify runs the deterministic keyword pass. Confidence grows with
// signal count and is capped below certainty; zero signals yield unknown.
func patternClassify(text string) core.Intent {
	lower := strings.ToLower(text)
	slots := extractSlots(text, lower)

	working := lower
	resourceScore := 0
	for _, phrase := range resourcePhrases {
		if strings.Contains(working, phrase) {
			resourceScore += 2
			working = strings.ReplaceAll(working, phrase, " ")
		}
	}

	tokens := tokenize(working)
	rescueScore, infoScore := 0, 0
	forcedRescue := false
	for _, tok := range tokens {
		switch {
		case strongDistress[tok]:
			rescueScore += 2
			forcedRescue = true
		case tok == "help":
			rescueScore++
		case informationWords[tok]:
			infoScore++
		case resourceWords[tok]:
			resourceScore++
		}
	}

	kind, score := core.IntentUnknown, 0
	switch {
	case forcedRescue:
		kind, score = core.IntentRescue, rescueScore
	case resourceScore > rescueScore && resourceScore > infoScore:
		kind, score = core.IntentResource, resourceScore
	case infoScore > rescueScore && infoScore > resourceScore:
		kind, score = core.IntentInformation, infoScore
	case rescueScore > 0:
		// Ties involving any rescue signal resolve toward rescue.
		kind, score = core.IntentRescue, rescueScore
	case resourceScore > 0:
		kind, score = core.IntentResource, resourceScore
	case infoScore > 0:
		kind, score = core.IntentInformation, infoScore
	}

	if kind == core.IntentUnknown {
		return core.Intent{Kind: core.IntentUnknown, Slots: slots}
	}

	confidence := 0.35 + 0.2*float64(score)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return core.Intent{Kind: kind, Confidence: confidence, Slots: slots}
}

func extractSlots(text, lower string) core.Slots {
	var slots core.Slots
	if m := locationRE.FindStringSubmatch(text); m != nil {
		slots.Location = strings.TrimRight(m[1], ".,!?")
	}

	tokens := tokenize(lower)
	for _, tok := range tokens {
		if h, ok := hazardWords[tok]; ok && slots.Hazard == core.HazardUnknown {
			slots.Hazard = h
		}
		if urgentWords[tok] {
			slots.Urgency = core.UrgencyHigh
		}
		if medicalNeedWords[tok] {
			slots.NeedsMedical = true
		}
		if evacuationNeedWords[tok] {
			slots.NeedsEvacuation = true
		}
		if supplyNeedWords[tok] {
			slots.NeedsSupplies = true
		}
		if dependentWords[tok] {
			slots.HasDependents = true
		}
	}
	if slots.Urgency == "" && slots.NeedsMedical {
		slots.Urgency = core.UrgencyHigh
	}
	return slots
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}
