// Package catalog holds the immutable, load-once-at-startup data: the map
// registry (obstacle layouts) and the animal registry (stat blocks). Both
// are read concurrently by the matchmaker and the battle engine after
// load and are never mutated, so no locking is needed once Load returns.
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

// GridWidth and GridHeight are the fixed battle board dimensions.
const (
	GridWidth  = 7
	GridHeight = 24
)

// ObjectKind classifies a map cell.
type ObjectKind string

const (
	KindWater    ObjectKind = "water"
	KindSolid    ObjectKind = "solid"
	KindWalkable ObjectKind = "walkable"
)

// GridObject is a single enumerated obstacle cell. Cells not listed are
// implicitly empty and walkable.
type GridObject struct {
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Kind   ObjectKind `json:"kind"`
	Sprite string     `json:"sprite,omitempty"`
}

// Map is a named obstacle layout.
type Map struct {
	Name    string       `json:"name"`
	Objects []GridObject `json:"objects"`
}

// InBounds reports whether (x,y) is within the fixed 7x24 grid.
func InBounds(x, y int) bool {
	return x >= 0 && x < GridWidth && y >= 0 && y < GridHeight
}

// Obstacle returns the object at (x,y) and whether one exists. Walkable
// objects are not considered obstacles for occupancy purposes, but are
// still returned (e.g. for sprite rendering).
func (m Map) Obstacle(x, y int) (GridObject, bool) {
	for _, o := range m.Objects {
		if o.X == x && o.Y == y {
			return o, true
		}
	}
	return GridObject{}, false
}

// Blocked reports whether (x,y) cannot be occupied by an animal: out of
// bounds, or a non-Walkable object sits there.
func (m Map) Blocked(x, y int) bool {
	if !InBounds(x, y) {
		return true
	}
	obj, ok := m.Obstacle(x, y)
	if !ok {
		return false
	}
	return obj.Kind != KindWalkable
}

// MapLoader reads the map registry from a directory of JSON files, one
// file per map, mirroring file-per-entity loading
// convention.
type MapLoader struct {
	logger  runtime.Logger
	baseDir string
}

// NewMapLoader constructs a loader rooted at baseDir.
func NewMapLoader(logger runtime.Logger, baseDir string) *MapLoader {
	return &MapLoader{logger: logger, baseDir: baseDir}
}

// LoadAll reads every "*.json" file in baseDir as a Map and validates the
// the map invariants: every object coordinate is in bounds, and no
// two non-Walkable objects share a cell.
func (ml *MapLoader) LoadAll() ([]Map, error) {
	entries, err := os.ReadDir(ml.baseDir)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading map dir %s: %w", ml.baseDir, err)
	}

	var maps []Map
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(ml.baseDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: reading map file %s: %w", path, err)
		}
		var m Map
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("catalog: parsing map file %s: %w", path, err)
		}
		if err := validateMap(m); err != nil {
			return nil, fmt.Errorf("catalog: invalid map %s: %w", m.Name, err)
		}
		ml.logger.Info("loaded map %s with %d objects", m.Name, len(m.Objects))
		maps = append(maps, m)
	}

	sort.Slice(maps, func(i, j int) bool { return maps[i].Name < maps[j].Name })

	if len(maps) == 0 {
		return nil, fmt.Errorf("catalog: no maps found in %s", ml.baseDir)
	}
	return maps, nil
}

func validateMap(m Map) error {
	if m.Name == "" {
		return fmt.Errorf("map has no name")
	}
	seen := make(map[[2]int]ObjectKind, len(m.Objects))
	for _, o := range m.Objects {
		if !InBounds(o.X, o.Y) {
			return fmt.Errorf("object at (%d,%d) is out of bounds", o.X, o.Y)
		}
		key := [2]int{o.X, o.Y}
		if prev, ok := seen[key]; ok {
			if prev != KindWalkable && o.Kind != KindWalkable {
				return fmt.Errorf("two non-walkable objects share cell (%d,%d)", o.X, o.Y)
			}
		}
		seen[key] = o.Kind
	}
	return nil
}
