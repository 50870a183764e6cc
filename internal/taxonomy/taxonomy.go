package taxonomy

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var embeddedTaxonomy []byte

// CutChoice is one orderable cut within a primal.
type CutChoice struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	Specialty     bool   `yaml:"specialty" json:"specialty"`
	AdditionalFee bool   `yaml:"additional_fee" json:"additional_fee"`
}

// SubSection is a nested grouping within a primal, one level deep.
type SubSection struct {
	ID   string      `yaml:"id" json:"id"`
	Name string      `yaml:"name" json:"name"`
	Cuts []CutChoice `yaml:"cuts" json:"cuts"`
}

type Primal struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Cuts        []CutChoice  `yaml:"cuts" json:"cuts"`
	SubSections []SubSection `yaml:"sub_sections,omitempty" json:"sub_sections,omitempty"`
}

type AnimalSchema struct {
	Animal  string   `yaml:"animal" json:"animal"`
	Primals []Primal `yaml:"primals" json:"primals"`
}

// Taxonomy is the static animal -> primal -> cut catalog. Cut ids are
// globally unique across all animals so they can be used as bare foreign
// keys from configuration and cut sheet rows.
type Taxonomy struct {
	animals []AnimalSchema
	byID    map[string]CutChoice
}

type CutCounts struct {
	Enabled int `json:"enabled"`
	Total   int `json:"total"`
}

func Load(data []byte) (*Taxonomy, error) {
	var doc struct {
		Animals []AnimalSchema `yaml:"animals"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if len(doc.Animals) == 0 {
		return nil, fmt.Errorf("taxonomy has no animals")
	}
	t := &Taxonomy{animals: doc.Animals, byID: make(map[string]CutChoice)}
	for _, animal := range doc.Animals {
		if animal.Animal == "" {
			return nil, fmt.Errorf("taxonomy animal with empty name")
		}
		for _, primal := range animal.Primals {
			for _, cut := range primal.Cuts {
				if err := t.register(cut); err != nil {
					return nil, err
				}
			}
			for _, sub := range primal.SubSections {
				for _, cut := range sub.Cuts {
					if err := t.register(cut); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return t, nil
}

func (t *Taxonomy) register(cut CutChoice) error {
	if cut.ID == "" {
		return fmt.Errorf("taxonomy cut %q has empty id", cut.Name)
	}
	if _, exists := t.byID[cut.ID]; exists {
		return fmt.Errorf("duplicate cut id %q in taxonomy", cut.ID)
	}
	t.byID[cut.ID] = cut
	return nil
}

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
	defaultErr  error
)

// Default returns the taxonomy compiled into the binary. The embedded data
// is validated once; a malformed build is a programming error.
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		defaultTax, defaultErr = Load(embeddedTaxonomy)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultTax
}

func (t *Taxonomy) Animals() []string {
	out := make([]string, 0, len(t.animals))
	for _, a := range t.animals {
		out = append(out, a.Animal)
	}
	return out
}

func (t *Taxonomy) AnimalSchema(animal string) (*AnimalSchema, bool) {
	for i := range t.animals {
		if t.animals[i].Animal == animal {
			return &t.animals[i], true
		}
	}
	return nil, false
}

// Primals returns the ordered primal list for an animal, nil if unknown.
func (t *Taxonomy) Primals(animal string) []Primal {
	schema, ok := t.AnimalSchema(animal)
	if !ok {
		return nil
	}
	return schema.Primals
}

func (t *Taxonomy) FindCut(cutID string) (CutChoice, bool) {
	cut, ok := t.byID[cutID]
	return cut, ok
}

// CountCuts reports how many cuts an animal offers and how many remain
// enabled under the given disabled set.
func (t *Taxonomy) CountCuts(animal string, disabled map[string]bool) CutCounts {
	var counts CutCounts
	schema, ok := t.AnimalSchema(animal)
	if !ok {
		return counts
	}
	tally := func(cuts []CutChoice) {
		for _, cut := range cuts {
			counts.Total++
			if !disabled[cut.ID] {
				counts.Enabled++
			}
		}
	}
	for _, primal := range schema.Primals {
		tally(primal.Cuts)
		for _, sub := range primal.SubSections {
			tally(sub.Cuts)
		}
	}
	return counts
}
