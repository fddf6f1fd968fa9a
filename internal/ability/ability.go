// Package ability loads and validates the Lua scripts referenced by an
// animal's abilities[] catalog entries. Execute exists on the registry
// for API completeness, but the battle engine's Gameplay stage never
// calls it, matching the reference implementation where
// action_points/ap_per_turn are parsed but no ability is ever
// triggered — abilities beyond basic melee damage are out of scope for
// this core, so Execute is exercised only by this package's own tests.
package ability

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
	lua "github.com/yuin/gopher-lua"

	"github.com/embergrid/animalcombat/internal/catalog"
)

// Registry records the source of every ability script that compiled
// cleanly, keyed by ability id, and holds a pool of Lua states for
// Execute to run one in.
type Registry struct {
	logger runtime.Logger
	pool   sync.Pool

	scripts map[string]string
}

// Load compiles every ability script referenced by the catalog's animals.
// scriptDir is resolved against each AbilityRef.ScriptPath. A missing or
// syntactically invalid script fails startup.
func Load(logger runtime.Logger, scriptDir string, animals []catalog.AnimalStat) (*Registry, error) {
	r := &Registry{
		logger:  logger,
		scripts: make(map[string]string),
		pool: sync.Pool{
			New: func() any {
				return lua.NewState(lua.Options{SkipOpenLibs: false})
			},
		},
	}

	for _, a := range animals {
		for _, ab := range a.Abilities {
			if _, ok := r.scripts[ab.ID]; ok {
				continue
			}
			source, err := r.compile(scriptDir, ab)
			if err != nil {
				return nil, fmt.Errorf("ability: %s (animal %s): %w", ab.ID, a.ID, err)
			}
			r.scripts[ab.ID] = source
			logger.Info("compiled ability script %s for animal %s", ab.ID, a.ID)
		}
	}

	return r, nil
}

func (r *Registry) compile(scriptDir string, ab catalog.AbilityRef) (string, error) {
	path := filepath.Join(scriptDir, ab.ScriptPath)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading script %s: %w", path, err)
	}
	if err := parse(string(data)); err != nil {
		return "", err
	}
	return string(data), nil
}

// parse reports whether source compiles as a Lua chunk, without running it.
func parse(source string) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	_, err := L.LoadString(source)
	return err
}

// Len reports how many distinct ability scripts were compiled. Exercised
// by this package's tests only.
func (r *Registry) Len() int {
	return len(r.scripts)
}

// Has reports whether an ability id was successfully compiled.
func (r *Registry) Has(abilityID string) bool {
	_, ok := r.scripts[abilityID]
	return ok
}

// Execute runs a compiled ability script to completion in a pooled Lua
// state. Unused by gameplay (see the package doc); exercised only by
// this package's own tests.
func (r *Registry) Execute(abilityID string) error {
	source, ok := r.scripts[abilityID]
	if !ok {
		return fmt.Errorf("ability: %s was never compiled", abilityID)
	}
	L := r.pool.Get().(*lua.LState)
	defer r.pool.Put(L)
	return L.DoString(source)
}
