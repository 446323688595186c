package fridge

import (
	"context"
	"fmt"
	"io"

	"fridge-inventory/internal/core/inventory"
	"fridge-inventory/internal/pkg/common"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

var exportHeaders = []string{
	"id", "standard_name", "detection_class", "quantity", "unit", "purchase_date",
	"expiry_date", "detected_by", "last_seen_date", "status", "notes",
}

// ExportXLSX 將庫存列表輸出為 xlsx
func (s *Service) ExportXLSX(ctx context.Context, status string, w io.Writer) error {
	records, err := s.List(ctx, status)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet(exportSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := writeRow(f, 1, header); err != nil {
		return err
	}
	for r, rec := range records {
		if err := writeRow(f, r+2, exportRow(rec)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// writeRow 寫入第 row 列，row 從 1 起算
func writeRow(f *excelize.File, row int, values []any) error {
	for c, v := range values {
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		if err != nil {
			return fmt.Errorf("failed to resolve cell: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, v); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

func exportRow(rec inventory.Record) []any {
	qty, _ := rec.Quantity.Float64()
	return []any{
		rec.ID,
		rec.StandardName,
		rec.DetectionClass,
		qty,
		common.DerefString(rec.Unit, ""),
		common.DerefString(rec.PurchaseDate, ""),
		common.DerefString(rec.ExpiryDate, ""),
		string(rec.DetectedBy),
		rec.LastSeenDate,
		string(rec.Status),
		common.DerefString(rec.Notes, ""),
	}
}
