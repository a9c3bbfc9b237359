// Package roster turns heterogeneous spreadsheet rows into canonical
// player records and projects the collection back out as CSV.
//
// Parsing policy is best-effort inclusion over strict rejection: bad
// ratings and prices normalize to safe defaults; only a missing name
// excludes a row.
package roster

import (
	"strconv"
	"strings"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/auctionconfig"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/models"
)

// Row is one loosely-typed spreadsheet record, keyed by header.
type Row map[string]string

// DefaultContact is the placeholder for rows without contact info.
const DefaultContact = "not provided"

// fieldSpec binds a logical field to its accepted header aliases, in
// resolution order. Keeping the alias lists in one table keeps them
// centrally testable.
type fieldSpec struct {
	field   string
	aliases []string
}

var (
	nameField    = fieldSpec{field: "name", aliases: []string{"player name", "name", "player"}}
	contactField = fieldSpec{field: "contact", aliases: []string{"contact no", "mobile", "contact"}}
	teamField    = fieldSpec{field: "team", aliases: []string{"team", "winning team"}}
	priceField   = fieldSpec{field: "price", aliases: []string{"auction value", "price"}}
)

// Normalizer converts spreadsheet rows into Player records for the
// configured category set.
type Normalizer struct {
	categories []auctionconfig.Category
}

// NewNormalizer creates a normalizer for the given categories.
func NewNormalizer(categories []auctionconfig.Category) *Normalizer {
	return &Normalizer{categories: categories}
}

// Normalize converts rows into players. Ids are assigned as the
// 1-based index among accepted rows, so re-importing a file reassigns
// ids deterministically from scratch: references held by id are
// invalidated by a re-import. The caller decides whether to commit the
// result.
func (n *Normalizer) Normalize(rows []Row) []models.Player {
	var players []models.Player
	for _, row := range rows {
		lower := lowerKeys(row)

		name := strings.TrimSpace(resolve(lower, nameField.aliases))
		if name == "" {
			continue
		}

		p := models.Player{
			ID:      len(players) + 1,
			Name:    name,
			Ratings: make(map[string]models.Grade, len(n.categories)),
		}

		for _, cat := range n.categories {
			p.Ratings[cat.Name] = models.ParseGrade(resolve(lower, categoryAliases(cat)))
		}

		if contact := strings.TrimSpace(resolve(lower, contactField.aliases)); contact != "" {
			p.ContactInfo = contact
		} else {
			p.ContactInfo = DefaultContact
		}

		// A re-imported sheet may carry auction results.
		if team := strings.TrimSpace(resolve(lower, teamField.aliases)); team != "" {
			p.Team = team
			p.Price = ParseCurrency(resolve(lower, priceField.aliases))
		}

		players = append(players, p)
	}
	return players
}

// MergeByName carries auction state (team, price, captaincy, sale
// time) from an existing collection onto a freshly imported roster,
// matching by case-insensitive exact name. Duplicate names in the
// existing collection resolve to the first occurrence by id.
func MergeByName(imported, existing []models.Player) []models.Player {
	index := make(map[string]models.Player, len(existing))
	for _, p := range existing {
		key := nameKey(p.Name)
		if _, seen := index[key]; !seen {
			index[key] = p
		}
	}

	merged := make([]models.Player, len(imported))
	copy(merged, imported)
	for i := range merged {
		prev, ok := index[nameKey(merged[i].Name)]
		if !ok || !prev.Sold() {
			continue
		}
		merged[i].Team = prev.Team
		merged[i].Price = prev.Price
		merged[i].CaptainFor = prev.CaptainFor
		merged[i].SoldAt = prev.SoldAt
	}
	return merged
}

// maxCurrency bounds a parsed price cell. No plausible auction value
// comes near it; anything larger is sheet garbage, and converting it
// to int would overflow.
const maxCurrency = 1_000_000_000

// ParseCurrency parses a currency-like cell down to integer units.
// Thousands separators, currency symbols and unit suffixes are
// stripped; unparseable or out-of-range values normalize to zero,
// never an error.
func ParseCurrency(raw string) int {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || f < 0 || f > maxCurrency {
		return 0
	}
	return int(f)
}

// resolve returns the value of the first alias present in the row.
func resolve(lower Row, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := lower[alias]; ok {
			return v
		}
	}
	return ""
}

func categoryAliases(cat auctionconfig.Category) []string {
	aliases := make([]string, 0, len(cat.Aliases)+1)
	aliases = append(aliases, strings.ToLower(cat.Name))
	for _, a := range cat.Aliases {
		aliases = append(aliases, strings.ToLower(a))
	}
	return aliases
}

func lowerKeys(row Row) Row {
	lower := make(Row, len(row))
	for k, v := range row {
		lower[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return lower
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
