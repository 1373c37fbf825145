package registry

import (
	"encoding/json"
	"fmt"
)

// Level identifies one rank of the taxonomy. Positions run 1 (Domain,
// broadest) through 8 (Species, most specific) and are fixed for the
// lifetime of the process.
type Level int

const (
	Domain Level = iota + 1
	Kingdom
	Phylum
	Class
	Order
	Family
	Genus
	Species
)

// LevelCount is the number of ranks every classified record carries.
const LevelCount = 8

// Unknown is the reserved category name present at every level.
const Unknown = "Unknown"

var levelNames = [...]string{
	Domain:  "Domain",
	Kingdom: "Kingdom",
	Phylum:  "Phylum",
	Class:   "Class",
	Order:   "Order",
	Family:  "Family",
	Genus:   "Genus",
	Species: "Species",
}

// Levels returns all taxonomy levels in rank order.
func Levels() []Level {
	return []Level{Domain, Kingdom, Phylum, Class, Order, Family, Genus, Species}
}

// ParseLevel resolves a level by its name.
func ParseLevel(name string) (Level, error) {
	for lv, n := range levelNames {
		if n == name {
			return Level(lv), nil
		}
	}
	return 0, fmt.Errorf("unknown taxonomy level %q", name)
}

// Position is the 1-based rank of the level, 1 = broadest.
func (l Level) Position() int { return int(l) }

// Valid reports whether the level is one of the eight defined ranks.
func (l Level) Valid() bool { return l >= Domain && l <= Species }

func (l Level) String() string {
	if l.Valid() {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// MarshalJSON encodes the level by name so serialized assignments stay
// readable and independent of internal numbering.
func (l Level) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid level %d", int(l))
	}
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	lv, err := ParseLevel(name)
	if err != nil {
		return err
	}
	*l = lv
	return nil
}
