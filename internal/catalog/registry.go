package catalog

import (
	"fmt"
	"math/rand"
)

// Registry is the immutable catalog of maps and animals, loaded once at
// startup and shared read-only by the matchmaker and battle engine.
type Registry struct {
	Maps    []Map
	Animals []AnimalStat

	animalByID map[string]AnimalStat
}

// NewRegistry builds a Registry from already-loaded maps and animals.
func NewRegistry(maps []Map, animals []AnimalStat) *Registry {
	byID := make(map[string]AnimalStat, len(animals))
	for _, a := range animals {
		byID[a.ID] = a
	}
	return &Registry{Maps: maps, Animals: animals, animalByID: byID}
}

// Animal looks up a catalog entry by id.
func (r *Registry) Animal(id string) (AnimalStat, bool) {
	a, ok := r.animalByID[id]
	return a, ok
}

// RandomMap returns a uniformly random map from the catalog.
func (r *Registry) RandomMap(rnd *rand.Rand) Map {
	return r.Maps[rnd.Intn(len(r.Maps))]
}

// RandomAvailableAnimal returns a uniformly random animal id from the catalog that
// is not present in taken.
func (r *Registry) RandomAvailableAnimal(rnd *rand.Rand, taken map[string]bool) (string, error) {
	var candidates []string
	for _, a := range r.Animals {
		if !taken[a.ID] {
			candidates = append(candidates, a.ID)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("catalog: no available animal to synthesize a pick from")
	}
	return candidates[rnd.Intn(len(candidates))], nil
}
