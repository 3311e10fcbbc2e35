package catalog

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	"quickstart/internal/sections"
)

// Step is one entry of the wizard catalog.
type Step struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	// Position is the sortable catalog key, e.g. "010" or "01202".
	Position string `json:"position"`
	// Ordinal is the 1-based place of the step in the catalog.
	Ordinal int    `json:"ordinal"`
	Prev    string `json:"prev"`
	Next    string `json:"next"`
	// Terminal marks the synthetic final step.
	Terminal bool `json:"terminal,omitempty"`
}

// Catalog is an ordered, immutable list of steps ending in the final step.
type Catalog struct {
	steps []Step
	index map[string]int
}

// Build derives the catalog from the section definitions and the libraries
// selected for the run.
func Build(libraries []sections.Library) *Catalog {
	type entry struct {
		id, name, position string
	}
	entries := make([]entry, 0, len(sections.Definitions())+len(libraries))
	for _, def := range sections.Definitions() {
		entries = append(entries, entry{id: def.ID, name: def.DisplayName(), position: def.Prefix})
	}

	libraries = sections.UniqueLibraries(libraries)
	// Counters share one width so positions inside a group sort numerically.
	width := max(2, len(strconv.Itoa(len(libraries))))
	counters := make(map[sections.LibraryType]int, len(sections.LibraryTypes))
	for _, lib := range libraries {
		if lib.Type.GroupPrefix() == "" {
			continue
		}
		counters[lib.Type]++
		def := sections.LibraryDefinition(lib)
		entries = append(entries, entry{
			id:       lib.StepID(),
			name:     def.DisplayName(),
			position: fmt.Sprintf("%s%0*d", lib.Type.GroupPrefix(), width, counters[lib.Type]),
		})
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.position, b.position)
	})

	c := &Catalog{
		steps: make([]Step, 0, len(entries)+1),
		index: make(map[string]int, len(entries)+1),
	}
	for i, e := range entries {
		c.steps = append(c.steps, Step{ID: e.id, DisplayName: e.name, Position: e.position, Ordinal: i + 1})
		c.index[e.id] = i
	}
	c.steps = append(c.steps, Step{
		ID:          sections.FinalID,
		DisplayName: "Final Validation",
		Position:    sections.FinalPrefix,
		Ordinal:     len(entries) + 1,
		Terminal:    true,
	})
	c.index[sections.FinalID] = len(entries)

	last := len(c.steps) - 1
	for i := range c.steps {
		c.steps[i].Prev = c.steps[max(i-1, 0)].ID
		if i < last {
			c.steps[i].Next = c.steps[i+1].ID
		}
	}
	return c
}

// Steps returns a copy of the catalog including the terminal step.
func (c *Catalog) Steps() []Step {
	return slices.Clone(c.steps)
}

// Len counts the non-terminal steps.
func (c *Catalog) Len() int {
	return len(c.steps) - 1
}

// First returns the initial step.
func (c *Catalog) First() Step {
	return c.steps[0]
}

// Terminal returns the synthetic final step.
func (c *Catalog) Terminal() Step {
	return c.steps[len(c.steps)-1]
}

// Step looks up a step by id.
func (c *Catalog) Step(id string) (Step, bool) {
	i, ok := c.index[id]
	if !ok {
		return Step{}, false
	}
	return c.steps[i], true
}

// Contains reports whether id names a step of this catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Progress is the completion percentage shown while id is the current step.
// The terminal step reports 100; unknown ids report the initial step's value.
func (c *Catalog) Progress(id string) int {
	i, ok := c.index[id]
	if !ok {
		i = 0
	}
	if c.steps[i].Terminal {
		return 100
	}
	return int(math.Round(float64(i+1) / float64(c.Len()) * 100))
}
