package catalog

import (
	"testing"

	"github.com/embergrid/animalcombat/internal/logging"
)

func TestLoadAllAnimals(t *testing.T) {
	animals, err := NewAnimalLoader(logging.NewDefault(), "../../testdata/animals").LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(animals) != 3 {
		t.Fatalf("expected 3 animals, got %d", len(animals))
	}
	if animals[0].ID != "bear" || animals[1].ID != "hare" || animals[2].ID != "wolf" {
		t.Fatalf("expected animals sorted by id, got %v, %v, %v", animals[0].ID, animals[1].ID, animals[2].ID)
	}
}

func TestValidateAnimalRejectsBadStats(t *testing.T) {
	cases := []AnimalStat{
		{ID: "", HP: 10},
		{ID: "x", HP: 0},
		{ID: "x", HP: 10, Damage: -1},
		{ID: "x", HP: 10, ResistancePct: 101},
		{ID: "x", HP: 10, ResistancePct: -1},
		{ID: "x", HP: 10, Mobility: -1},
	}
	for _, a := range cases {
		if err := validateAnimal(a); err == nil {
			t.Errorf("validateAnimal(%+v): expected an error", a)
		}
	}
}

func TestValidateAnimalAcceptsWellFormed(t *testing.T) {
	a := AnimalStat{ID: "wolf", HP: 30, Damage: 8, ResistancePct: 0, Mobility: 4}
	if err := validateAnimal(a); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
