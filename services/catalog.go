// services/catalog.go
package services

import (
	"fmt"
	"os"
	"strings"

	"click-reward-system/models"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Catalog is the immutable game configuration loaded once at startup.
type Catalog struct {
	Table      *RewardTable
	Activities []models.ActivityDefinition
}

type prizeFile struct {
	Kind        string `yaml:"kind"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
}

type catalogFile struct {
	Levels []struct {
		Threshold int64     `yaml:"threshold"`
		Prize     prizeFile `yaml:"prize"`
	} `yaml:"levels"`
	Activities []struct {
		ID             string    `yaml:"id"`
		Name           string    `yaml:"name"`
		Description    string    `yaml:"description"`
		SponsorName    string    `yaml:"sponsor_name"`
		SponsorWebsite string    `yaml:"sponsor_website"`
		ClicksRequired int64     `yaml:"clicks_required"`
		Prize          prizeFile `yaml:"prize"`
	} `yaml:"activities"`
}

func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read catalog: %v", ErrConfiguration, err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates the reward table and activity list.
// Activities without an id get the slug of their name.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", ErrConfiguration, err)
	}

	levels := make([]models.RewardLevel, 0, len(f.Levels))
	for i, l := range f.Levels {
		prize, err := l.Prize.toPrize()
		if err != nil {
			return nil, fmt.Errorf("%w: level %d: %v", ErrConfiguration, i, err)
		}
		levels = append(levels, models.RewardLevel{Threshold: l.Threshold, Prize: prize})
	}
	table, err := NewRewardTable(levels)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(f.Activities))
	defs := make([]models.ActivityDefinition, 0, len(f.Activities))
	for i, a := range f.Activities {
		id := strings.TrimSpace(a.ID)
		if id == "" {
			id = slug.Make(a.Name)
		}
		if id == "" {
			return nil, fmt.Errorf("%w: activity %d has neither id nor name", ErrConfiguration, i)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate activity id %q", ErrConfiguration, id)
		}
		seen[id] = true
		if a.ClicksRequired <= 0 {
			return nil, fmt.Errorf("%w: activity %s needs clicks_required > 0", ErrConfiguration, id)
		}
		prize, err := a.Prize.toPrize()
		if err != nil {
			return nil, fmt.Errorf("%w: activity %s: %v", ErrConfiguration, id, err)
		}
		if err := prize.Validate(); err != nil {
			return nil, fmt.Errorf("%w: activity %s: %v", ErrConfiguration, id, err)
		}
		name := a.Name
		if name == "" {
			name = id
		}
		defs = append(defs, models.ActivityDefinition{
			ID:             id,
			Name:           name,
			Description:    a.Description,
			SponsorName:    a.SponsorName,
			SponsorWebsite: a.SponsorWebsite,
			ClicksRequired: a.ClicksRequired,
			Prize:          prize,
		})
	}

	return &Catalog{Table: table, Activities: defs}, nil
}

func (p prizeFile) toPrize() (models.Prize, error) {
	prize := models.Prize{
		Kind:        models.PrizeKind(strings.ToLower(strings.TrimSpace(p.Kind))),
		Description: p.Description,
	}
	if p.Amount != "" {
		amount, err := decimal.NewFromString(p.Amount)
		if err != nil {
			return models.Prize{}, fmt.Errorf("amount %q: %v", p.Amount, err)
		}
		prize.Amount = amount
	}
	return prize, nil
}
