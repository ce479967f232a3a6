package register

import (
	"fmt"
	"os"

	"homefinances/internal/core"
	"homefinances/internal/csvimport"
)

// ParseSeedRows reads display-only rows from statement-style CSV text. The
// header follows the import rules; rows without a usable date or amount are
// dropped and account cells are kept verbatim.
func ParseSeedRows(text string) []SeedRow {
	rows := csvimport.Tokenize(text)
	if len(rows) < 2 {
		return nil
	}
	cols := csvimport.ResolveColumns(rows[0])
	if !cols.Valid() {
		return nil
	}
	var seeds []SeedRow
	for _, row := range rows[1:] {
		rec, ok := csvimport.ParseRecord(row, cols)
		if !ok {
			continue
		}
		seeds = append(seeds, SeedRow{
			Date:     rec.Date,
			Account:  rec.Account,
			Payee:    rec.Payee,
			Category: rec.Category,
			Memo:     rec.Memo,
			Type:     core.TypeForSign(rec.Signed),
			Amount:   rec.Signed,
		})
	}
	return seeds
}

// LoadSeedFile reads seed rows from path. A missing file yields no rows.
func LoadSeedFile(path string) ([]SeedRow, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed rows: %w", err)
	}
	return ParseSeedRows(string(data)), nil
}
