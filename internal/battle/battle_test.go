package battle

import (
	"math/rand"
	"time"

	"github.com/embergrid/animalcombat/internal/catalog"
	"github.com/embergrid/animalcombat/internal/config"
	"github.com/embergrid/animalcombat/internal/logging"
)

// testAnimals is a small, fixed catalog shared by every test in this
// package: six distinct stat ids, enough for a PickCount=4 world (two
// per player) plus spares for pick/timeout tests.
func testAnimals() []catalog.AnimalStat {
	return []catalog.AnimalStat{
		{ID: "wolf", HP: 30, Damage: 8, ResistancePct: 0, Mobility: 4},
		{ID: "bear", HP: 50, Damage: 12, ResistancePct: 20, Mobility: 2},
		{ID: "hare", HP: 12, Damage: 3, ResistancePct: 0, Mobility: 6},
		{ID: "fox", HP: 18, Damage: 6, ResistancePct: 10, Mobility: 5},
		{ID: "owl", HP: 15, Damage: 5, ResistancePct: 0, Mobility: 5},
		{ID: "boar", HP: 40, Damage: 10, ResistancePct: 15, Mobility: 3},
	}
}

func testRegistry() *catalog.Registry {
	m := catalog.Map{Name: "plain"}
	return catalog.NewRegistry([]catalog.Map{m}, testAnimals())
}

func testConfig() config.Config {
	return config.Config{
		PickTime:     5 * time.Second,
		PlaceTime:    5 * time.Second,
		TurnTime:     5 * time.Second,
		PickCount:    4,
		TickInterval: time.Second,
	}
}

// newTestWorld builds a World with a deterministic first turn (p1),
// bypassing NewWorld's random coin flip so pick-order tests don't need to
// branch on which player went first.
func newTestWorld() *World {
	w := NewWorld("m1", 1, 2, testRegistry().Maps[0], testRegistry(), testConfig(), logging.NewDefault(), rand.New(rand.NewSource(1)))
	w.CurrentTurn = w.Player1
	return w
}
