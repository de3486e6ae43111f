// Package provider is the entry point for reading and writing dictionaries.
// It detects formats, groups the files of one logical dictionary, loads and
// merges them, and saves translations with backup and rollback.
package provider

import (
	"errors"
	"fmt"

	"github.com/minios-linux/txdict/batch"
	"github.com/minios-linux/txdict/dictionary"
	"github.com/minios-linux/txdict/format"
	"github.com/minios-linux/txdict/location"
	"github.com/minios-linux/txdict/merge"
)

// ErrCanceled is returned by Load when the prompter cancels.
var ErrCanceled = errors.New("load canceled")

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// Reporter receives status messages and non-fatal problems.
type Reporter interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopReporter struct{}

func (nopReporter) Infof(string, ...any) {}
func (nopReporter) Warnf(string, ...any) {}

// Decision answers the question whether related files that were not
// selected should be loaded too.
type Decision int

const (
	// LoadSelectedOnly loads the selected locations only.
	LoadSelectedOnly Decision = iota
	// LoadAll also loads the related locations.
	LoadAll
	// Cancel aborts the load.
	Cancel
)

func (d Decision) String() string {
	switch d {
	case LoadSelectedOnly:
		return "selected"
	case LoadAll:
		return "all"
	case Cancel:
		return "cancel"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Prompter decides about related locations found during a load.
type Prompter interface {
	AskLoadRelated(missed []location.Location) Decision
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(missed []location.Location) Decision

func (f PrompterFunc) AskLoadRelated(missed []location.Location) Decision { return f(missed) }

// ---------------------------------------------------------------------------
// Provider
// ---------------------------------------------------------------------------

// Provider dispatches between the dictionary formats. It is not safe for
// concurrent use.
type Provider struct {
	reporter Reporter
	forced   map[string]format.Version
}

// New returns a Provider reporting to r. A nil r discards all messages.
func New(r Reporter) *Provider {
	if r == nil {
		r = nopReporter{}
	}
	return &Provider{reporter: r, forced: make(map[string]format.Version)}
}

// Force makes the provider treat loc as format v instead of detecting it.
// format.Unknown removes a previous override.
func (p *Provider) Force(loc location.Location, v format.Version) {
	if v == format.Unknown {
		delete(p.forced, loc.ID())
		return
	}
	p.forced[loc.ID()] = v
}

// DetectSerializer returns the first format, in format.Versions order, that
// recognizes loc. A format set with Force is returned without detection.
func (p *Provider) DetectSerializer(loc location.Location) (format.Version, bool) {
	if v, ok := p.forced[loc.ID()]; ok {
		return v, true
	}
	for _, v := range format.Versions {
		if v.Detect(loc) {
			return v, true
		}
	}
	return format.Unknown, false
}

// DetectedTranslation is one logical dictionary found by discovery.
type DetectedTranslation struct {
	Description format.Description
	// Instructions read the related locations that were among the
	// candidates, the root location first.
	Instructions []format.DeserializeInstruction
	// Missed read related locations that were not among the candidates.
	Missed []format.DeserializeInstruction
}

// MissedLocations returns the locations of the missed instructions.
func (d DetectedTranslation) MissedLocations() []location.Location {
	locs := make([]location.Location, len(d.Missed))
	for i, in := range d.Missed {
		locs[i] = in.Location
	}
	return locs
}

// locationSet is a set of locations keyed by identity.
type locationSet map[string]bool

func (s locationSet) add(loc location.Location) { s[loc.ID()] = true }

func (s locationSet) has(loc location.Location) bool { return s[loc.ID()] }

func newLocationSet(locs []location.Location) locationSet {
	s := make(locationSet, len(locs))
	for _, loc := range locs {
		s.add(loc)
	}
	return s
}

// DetectUniqueTranslations groups locs into logical dictionaries. Each
// location ends up in at most one result; the related files of a v1 family
// fold into the result of the first family member in locs. Related files
// outside locs are returned as missed instructions. Locations in no known
// format are skipped.
func (p *Provider) DetectUniqueTranslations(locs []location.Location) []DetectedTranslation {
	available := newLocationSet(locs)
	processed := make(locationSet, len(locs))

	var result []DetectedTranslation
	for _, loc := range locs {
		if processed.has(loc) {
			continue
		}
		processed.add(loc)

		v, ok := p.DetectSerializer(loc)
		if !ok {
			p.reporter.Infof("skipping %s: no known dictionary format", loc)
			continue
		}

		d := DetectedTranslation{
			Description:  v.Describe(loc),
			Instructions: []format.DeserializeInstruction{v.Deserialize(loc)},
		}
		for _, rel := range v.Related(loc) {
			switch {
			case location.Equal(rel, loc):
			case available.has(rel):
				if !processed.has(rel) {
					processed.add(rel)
					d.Instructions = append(d.Instructions, v.Deserialize(rel))
				}
			default:
				d.Missed = append(d.Missed, v.Deserialize(rel))
			}
		}
		result = append(result, d)
	}
	return result
}

// LoadFrom returns the instruction that reads loc. With format.Unknown the
// format is detected.
func (p *Provider) LoadFrom(loc location.Location, v format.Version) (format.DeserializeInstruction, error) {
	if v == format.Unknown {
		detected, ok := p.DetectSerializer(loc)
		if !ok {
			return format.DeserializeInstruction{}, fmt.Errorf("%s: %w", loc, format.ErrUnsupportedFormat)
		}
		v = detected
	}
	return v.Deserialize(loc), nil
}

// SaveTo plans the writes that store t at loc in format v.
func (p *Provider) SaveTo(t *dictionary.Translation, loc location.Location, v format.Version) ([]format.SerializeInstruction, error) {
	return v.Serialize(loc, t)
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// Loaded is one dictionary read by Load.
type Loaded struct {
	Description format.Description
	Translation *dictionary.Translation
	// Sources lists the locations that were read successfully.
	Sources []location.Location
	// Missed lists related locations that were found but not loaded.
	Missed []location.Location
	// Err aggregates the locations that could not be read.
	Err error
}

// Load discovers the dictionaries in locs, reads them and merges the files
// of each dictionary into one translation. When related files outside locs
// exist, prompt decides whether they are loaded too; a nil prompt loads the
// selected files only. Files that fail to read are reported and recorded on
// the result without stopping the others.
func (p *Provider) Load(locs []location.Location, prompt Prompter) ([]Loaded, error) {
	detected := p.DetectUniqueTranslations(locs)

	var missed []location.Location
	for _, d := range detected {
		missed = append(missed, d.MissedLocations()...)
	}
	decision := LoadSelectedOnly
	if len(missed) > 0 && prompt != nil {
		decision = prompt.AskLoadRelated(missed)
	}
	if decision == Cancel {
		return nil, ErrCanceled
	}

	result := make([]Loaded, 0, len(detected))
	for _, d := range detected {
		l := Loaded{Description: d.Description, Translation: &dictionary.Translation{}}
		instructions := d.Instructions
		if decision == LoadAll {
			instructions = append(instructions[:len(instructions):len(instructions)], d.Missed...)
		} else {
			l.Missed = d.MissedLocations()
		}

		failures := batch.Run(instructions, func(in format.DeserializeInstruction) error {
			part, err := in.Deserialize()
			if err != nil {
				return err
			}
			merge.Into(l.Translation, part)
			l.Sources = append(l.Sources, in.Location)
			return nil
		})
		if l.Err = batch.Join("load", failures, nil); l.Err != nil {
			p.reporter.Warnf("%s: %v", d.Description.Name, l.Err)
		}
		result = append(result, l)
	}
	return result, nil
}
