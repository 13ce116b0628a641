package findash

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestEncodeXLSX(t *testing.T) {
	var b bytes.Buffer
	if err := EncodeXLSX(&b, newTestDataset(t, 3)); err != nil {
		t.Fatalf("EncodeXLSX() failed: %v", err)
	}
	f, err := excelize.OpenReader(&b)
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Data")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("Data sheet has %d rows, want 4", len(rows))
	}
	if rows[0][9] != "Rent Expense" {
		t.Errorf("header[9] = %q, want Rent Expense", rows[0][9])
	}
	if rows[3][0] != "2025-01-03" || rows[3][1] != "300" {
		t.Errorf("last row = %v", rows[3])
	}

	kpis, err := f.GetRows("KPIs")
	if err != nil {
		t.Fatal(err)
	}
	if len(kpis) != 4 || kpis[0][0] != "Total Revenue" || kpis[0][2] != "$600.00" {
		t.Errorf("KPIs sheet = %v", kpis)
	}
}
