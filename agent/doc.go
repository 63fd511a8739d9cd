// Package agent contains the specialist agents that handle classified
// emergency-response intents: rescue guidance, hazard information and
// emergency contact discovery. Each specialist implements core.Specialist
// and reports its lifecycle through the activity reporter.
package agent
