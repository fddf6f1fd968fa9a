package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
)

// AbilityRef points at a Lua script backing an animal ability. The
// gameplay pipeline never invokes it (see internal/ability); it exists
// here purely as catalog data, mirroring the reference implementation
// where abilities are parsed but never triggered.
type AbilityRef struct {
	ID         string `json:"id"`
	ScriptPath string `json:"script_path"`
}

// AnimalStat is a read-only catalog entry: the template every spawned
// world instance copies its stats from.
type AnimalStat struct {
	ID             string       `json:"id"`
	HP             int          `json:"hp"`
	Damage         int          `json:"damage"`
	ResistancePct  int          `json:"resistance_pct"`
	Mobility       int          `json:"mobility"`
	ActionPoints   int          `json:"action_points"`
	APPerTurn      int          `json:"ap_per_turn"`
	Abilities      []AbilityRef `json:"abilities,omitempty"`
}

// AnimalLoader reads the animal catalog from a directory of JSON files,
// one file per animal, matching MapLoader's convention.
type AnimalLoader struct {
	logger  runtime.Logger
	baseDir string
}

// NewAnimalLoader constructs a loader rooted at baseDir.
func NewAnimalLoader(logger runtime.Logger, baseDir string) *AnimalLoader {
	return &AnimalLoader{logger: logger, baseDir: baseDir}
}

// LoadAll reads every "*.json" file in baseDir as an AnimalStat and
// validates the per-animal stat invariants.
func (al *AnimalLoader) LoadAll() ([]AnimalStat, error) {
	entries, err := os.ReadDir(al.baseDir)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading animal dir %s: %w", al.baseDir, err)
	}

	var animals []AnimalStat
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(al.baseDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: reading animal file %s: %w", path, err)
		}
		var a AnimalStat
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("catalog: parsing animal file %s: %w", path, err)
		}
		if err := validateAnimal(a); err != nil {
			return nil, fmt.Errorf("catalog: invalid animal %s: %w", a.ID, err)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("catalog: duplicate animal id %s", a.ID)
		}
		seen[a.ID] = true
		al.logger.Info("loaded animal %s (hp=%d damage=%d)", a.ID, a.HP, a.Damage)
		animals = append(animals, a)
	}

	sort.Slice(animals, func(i, j int) bool { return animals[i].ID < animals[j].ID })

	if len(animals) == 0 {
		return nil, fmt.Errorf("catalog: no animals found in %s", al.baseDir)
	}
	return animals, nil
}

func validateAnimal(a AnimalStat) error {
	if a.ID == "" {
		return fmt.Errorf("animal has no id")
	}
	if a.HP <= 0 {
		return fmt.Errorf("animal %s: hp must be positive", a.ID)
	}
	if a.Damage < 0 {
		return fmt.Errorf("animal %s: damage must be non-negative", a.ID)
	}
	if a.ResistancePct < 0 || a.ResistancePct > 100 {
		return fmt.Errorf("animal %s: resistance_pct must be in [0,100]", a.ID)
	}
	if a.Mobility < 0 {
		return fmt.Errorf("animal %s: mobility must be non-negative", a.ID)
	}
	return nil
}
