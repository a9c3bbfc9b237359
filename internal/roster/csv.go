package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/models"
)

// DecodeCSV reads a header-first CSV stream into rows. Short records
// are tolerated; missing cells simply resolve to empty values.
func DecodeCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	headers := records[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ExportCSV writes the player collection as a tabular projection,
// sorted by team name with unsold players last. This is a view, not
// part of the authoritative store.
func ExportCSV(w io.Writer, players []models.Player, categories []string) error {
	sorted := make([]models.Player, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Sold() != b.Sold() {
			return a.Sold()
		}
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		return a.ID < b.ID
	})

	writer := csv.NewWriter(w)

	header := append([]string{"Name"}, categories...)
	header = append(header, "Contact No", "Winning Team", "Auction Value")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, p := range sorted {
		record := []string{p.Name}
		for _, cat := range categories {
			record = append(record, string(p.Rating(cat)))
		}
		price := ""
		if p.Sold() {
			price = strconv.Itoa(p.Price)
		}
		record = append(record, p.ContactInfo, p.Team, price)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to finalize csv: %w", err)
	}
	return nil
}
