package entity

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownRank is returned when a textual rank matches none of the known aliases.
var ErrUnknownRank = errors.New("unknown rank")

// Rank is an ordered affiliate tier. The zero value is not a valid rank.
type Rank int

const (
	RankBronze Rank = iota + 1
	RankSilver
	RankGold
	RankPlatinum
	RankDiamond
)

// DefaultRank is assigned to every new profile.
const DefaultRank = RankBronze

var rankNames = map[Rank]string{
	RankBronze:   "BRONZE",
	RankSilver:   "SILVER",
	RankGold:     "GOLD",
	RankPlatinum: "PLATINUM",
	RankDiamond:  "DIAMOND",
}

// rankAliases maps every accepted spelling (lower-case) to its canonical rank.
// Product configuration historically mixed English and Spanish names.
var rankAliases = map[string]Rank{
	"bronze":   RankBronze,
	"bronce":   RankBronze,
	"silver":   RankSilver,
	"plata":    RankSilver,
	"gold":     RankGold,
	"oro":      RankGold,
	"platinum": RankPlatinum,
	"platino":  RankPlatinum,
	"diamond":  RankDiamond,
	"diamante": RankDiamond,
}

// packWords may precede or follow the rank name, e.g. "Gold pack" or "Paquete Oro".
var packWords = map[string]bool{
	"pack":    true,
	"paquete": true,
	"kit":     true,
}

// ParseRank normalizes a textual rank. It is case-insensitive, ignores
// surrounding whitespace and pack words, and rejects anything it does not know.
func ParseRank(raw string) (Rank, error) {
	var found []string
	for _, word := range strings.Fields(strings.ToLower(raw)) {
		if packWords[word] {
			continue
		}
		found = append(found, word)
	}

	if len(found) != 1 {
		return 0, errors.Wrapf(ErrUnknownRank, "%q", raw)
	}

	rank, ok := rankAliases[found[0]]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownRank, "%q", raw)
	}

	return rank, nil
}

// MustParseRank is ParseRank for constants in tests and fixtures.
func MustParseRank(raw string) Rank {
	rank, err := ParseRank(raw)
	if err != nil {
		panic(err)
	}

	return rank
}

// IsValid reports whether r is one of the declared ranks.
func (r Rank) IsValid() bool {
	_, ok := rankNames[r]

	return ok
}

// Outranks reports whether r is strictly higher than other.
func (r Rank) Outranks(other Rank) bool {
	return r > other
}

// String returns the canonical upper-case name.
func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}

	return fmt.Sprintf("Rank(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Rank) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, errors.Wrapf(ErrUnknownRank, "%d", int(r))
	}

	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and accepts every alias.
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed

	return nil
}

// Value stores the canonical name.
func (r Rank) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, errors.Wrapf(ErrUnknownRank, "%d", int(r))
	}

	return r.String(), nil
}

// Scan reads a canonical name (or any alias) back from the database.
func (r *Rank) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return errors.Errorf("cannot scan %T into Rank", src)
	}
}

// HighestRank returns the highest of the given ranks and false when none is given.
func HighestRank(ranks ...Rank) (Rank, bool) {
	var highest Rank
	for _, rank := range ranks {
		if rank.Outranks(highest) {
			highest = rank
		}
	}

	return highest, highest.IsValid()
}
