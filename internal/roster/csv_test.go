package roster

import (
	"bytes"
	"strings"
	"testing"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/auctionconfig"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/models"
)

func TestDecodeCSVToleratesShortRecords(t *testing.T) {
	input := "Name,Cricket,Badminton,TT,Mobile\n" +
		"Asha,A,0,B,9999999999\n" +
		"Bilal,C\n"

	rows, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["Name"] != "Asha" || rows[0]["Mobile"] != "9999999999" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
	if rows[1]["Name"] != "Bilal" || rows[1]["Badminton"] != "" {
		t.Errorf("expected missing cells to resolve empty, got %v", rows[1])
	}
}

func TestDecodeCSVHeaderOnlyYieldsNoRows(t *testing.T) {
	rows, err := DecodeCSV(strings.NewReader("Name,Cricket\n"))
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if rows != nil {
		t.Errorf("expected nil rows, got %v", rows)
	}
}

// A registration sheet survives the normalize, export, re-normalize
// round trip with identity, ratings and contact intact.
func TestExportImportRoundTrip(t *testing.T) {
	tournament := auctionconfig.Default()
	n := NewNormalizer(tournament.Categories)

	original := n.Normalize([]Row{{
		"Name":      "Asha",
		"Cricket":   "A",
		"Badminton": "0",
		"TT":        "B",
		"Mobile":    "9999999999",
	}})

	var buf bytes.Buffer
	if err := ExportCSV(&buf, original, tournament.CategoryNames()); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	rows, err := DecodeCSV(&buf)
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	reimported := n.Normalize(rows)

	if len(reimported) != 1 {
		t.Fatalf("expected 1 player, got %d", len(reimported))
	}
	got, want := reimported[0], original[0]
	if got.Name != want.Name || got.ContactInfo != want.ContactInfo {
		t.Errorf("round trip changed identity: got %+v, want %+v", got, want)
	}
	for cat, grade := range want.Ratings {
		if got.Ratings[cat] != grade {
			t.Errorf("round trip changed %s grade: got %q, want %q", cat, got.Ratings[cat], grade)
		}
	}
}

func TestExportCSVOrdersSoldByTeamThenUnsold(t *testing.T) {
	tournament := auctionconfig.Default()
	players := []models.Player{
		{ID: 1, Name: "Asha"},
		{ID: 2, Name: "Bilal", Team: "Taluka Fighters", Price: 900},
		{ID: 3, Name: "Chirag", Team: "Alfen Royals", Price: 1200},
	}

	var buf bytes.Buffer
	if err := ExportCSV(&buf, players, tournament.CategoryNames()); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Chirag") || !strings.HasPrefix(lines[2], "Bilal") || !strings.HasPrefix(lines[3], "Asha") {
		t.Errorf("unexpected row order: %v", lines[1:])
	}
	// Unsold rows carry no price.
	if !strings.HasSuffix(lines[3], ",") {
		t.Errorf("expected empty price for unsold row, got %q", lines[3])
	}
}
