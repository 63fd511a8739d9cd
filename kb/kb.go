// Package kb holds the fallback knowledge base: static regional emergency
// contacts and per-hazard safety instructions served whenever live sources
// are unavailable. Data is embedded at build time; every record returned
// from here is flagged as fallback so the trust contract survives merging.
package kb

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/clarionhq/clarion/core"
	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var rawData []byte

type contactEntry struct {
	Label   string   `yaml:"label"`
	Kind    string   `yaml:"kind"`
	Value   string   `yaml:"value"`
	Hazards []string `yaml:"hazards"`
}

type regionEntry struct {
	Name     string         `yaml:"name"`
	Aliases  []string       `yaml:"aliases"`
	Contacts []contactEntry `yaml:"contacts"`
}

type dataset struct {
	Regions      []regionEntry       `yaml:"regions"`
	Instructions map[string][]string `yaml:"instructions"`
}

// KnowledgeBase answers contact and instruction lookups from embedded data.
// It is immutable after construction and safe for concurrent reads.
type KnowledgeBase struct {
	regions       map[string]regionEntry
	aliases       map[string]string // alias -> region name
	instructions  map[core.Hazard][]string
	defaultRegion string
}

// New parses the embedded dataset. It fails only on a malformed build, so
// callers typically treat an error here as fatal at startup.
func New() (*KnowledgeBase, error) {
	var ds dataset
	if err := yaml.Unmarshal(rawData, &ds); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	k := &KnowledgeBase{
		regions:       map[string]regionEntry{},
		aliases:       map[string]string{},
		instructions:  map[core.Hazard][]string{},
		defaultRegion: "national",
	}
	for _, r := range ds.Regions {
		k.regions[r.Name] = r
		for _, a := range r.Aliases {
			k.aliases[strings.ToLower(a)] = r.Name
		}
	}
	if _, ok := k.regions[k.defaultRegion]; !ok {
		return nil, fmt.Errorf("knowledge base missing default region %q", k.defaultRegion)
	}
	for hazard, steps := range ds.Instructions {
		k.instructions[core.Hazard(hazard)] = steps
	}
	return k, nil
}

// MustNew is New for wiring code where a broken embedded dataset is a
// programming error.
func MustNew() *KnowledgeBase {
	k, err := New()
	if err != nil {
		panic(err)
	}
	return k
}

// ResolveRegion maps a free-text location to a known region key, falling back
// to the national table. Matching is case-insensitive substring containment
// over region names and aliases.
func (k *KnowledgeBase) ResolveRegion(location string) string {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return k.defaultRegion
	}
	for name := range k.regions {
		if strings.Contains(loc, name) {
			return name
		}
	}
	for alias, name := range k.aliases {
		if strings.Contains(loc, alias) {
			return name
		}
	}
	return k.defaultRegion
}

// Contacts returns the static contact list for a region, filtered to entries
// relevant for the hazard (hazard-less entries always apply). Every record is
// flagged as fallback data.
func (k *KnowledgeBase) Contacts(region string, hazard core.Hazard) []core.ContactRecord {
	r, ok := k.regions[region]
	if !ok {
		r = k.regions[k.defaultRegion]
	}
	var out []core.ContactRecord
	for _, c := range r.Contacts {
		if len(c.Hazards) > 0 && !hazardListed(c.Hazards, hazard) {
			continue
		}
		out = append(out, core.ContactRecord{
			Kind:       core.ContactKind(c.Kind),
			Value:      c.Value,
			Label:      c.Label,
			Confidence: 1.0,
			Fallback:   true,
		})
	}
	return out
}

// Instructions returns the ordered safety steps for a hazard, defaulting to
// the general guidance when the hazard has no dedicated entry.
func (k *KnowledgeBase) Instructions(hazard core.Hazard) []string {
	if steps, ok := k.instructions[hazard.OrGeneral()]; ok {
		return steps
	}
	return k.instructions[core.HazardGeneral]
}

// Regions lists the known region keys, default first.
func (k *KnowledgeBase) Regions() []string {
	out := []string{k.defaultRegion}
	for name := range k.regions {
		if name != k.defaultRegion {
			out = append(out, name)
		}
	}
	return out
}

func hazardListed(list []string, hazard core.Hazard) bool {
	for _, h := range list {
		if core.Hazard(h) == hazard {
			return true
		}
	}
	return false
}
