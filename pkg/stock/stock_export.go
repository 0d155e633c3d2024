package stock

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"Pantry-Service/domain"
)

var exportHeader = []interface{}{
	"name",
	"location",
	"storage_category",
	"nutritional_type",
	"quantity",
	"unit",
	"purchase_date",
	"expiry_date",
	"freshness",
}

// writeWorkbook renders items as a single-sheet xlsx file.
func writeWorkbook(items []domain.StockItemResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, item := range items {
		row := []interface{}{
			item.Name,
			item.Location,
			item.StorageCategory,
			item.NutritionalType,
			item.Quantity,
			item.Unit,
			formatDate(item.PurchaseDate),
			formatDate(item.ExpiryDate),
			item.Freshness,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
