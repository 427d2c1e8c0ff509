package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"bookrental-backend/internal/domains/rental/model"
	"bookrental-backend/internal/shared/utils"
)

const (
	exportSheetName = "Rentals"
	exportMaxRows   = 10000
)

var exportHeaders = []string{
	"ID",
	"Book ID",
	"Reader ID",
	"Status",
	"Issue Date",
	"Expected Return",
	"Actual Return",
	"Deposit",
	"Price Per Day",
	"Discount",
	"Fine",
	"Total",
	"Notes",
}

// ExportRentals builds a workbook of every rental matching filter, capped at
// exportMaxRows. Page and Limit of the filter are ignored.
func (s *rentalService) ExportRentals(ctx context.Context, filter model.RentalFilter) (*excelize.File, int, error) {
	rentals, err := s.collectForExport(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rentals: %w", err)
	}

	f, err := buildRentalsExcelFile(rentals)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, len(rentals), nil
}

func (s *rentalService) collectForExport(ctx context.Context, filter model.RentalFilter) ([]model.Rental, error) {
	filter.Page = 1
	filter.Limit = utils.MaxLimit

	all := make([]model.Rental, 0, utils.MaxLimit)
	for len(all) < exportMaxRows {
		page, total, err := s.ListRentals(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < filter.Limit || len(all) >= total {
			break
		}
		filter.Page++
	}

	if len(all) > exportMaxRows {
		all = all[:exportMaxRows]
	}
	return all, nil
}

func buildRentalsExcelFile(rentals []model.Rental) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	// Row 1: header
	for colIdx, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheetName, "A1", last, headerStyle)
	}

	for i := range rentals {
		r := &rentals[i]
		row := i + 2

		values := []interface{}{
			r.ID.String(),
			r.BookID.String(),
			r.ReaderID.String(),
			string(r.Status),
			r.IssueDate.Format(time.RFC3339),
			r.ExpectedReturnDate.Format(time.RFC3339),
			nil,
			r.DepositAmount.InexactFloat64(),
			r.RentalPricePerDay.InexactFloat64(),
			r.DiscountAmount.InexactFloat64(),
			r.FineAmount.InexactFloat64(),
			r.TotalAmount.InexactFloat64(),
			nil,
		}
		if r.ActualReturnDate != nil {
			values[6] = r.ActualReturnDate.Format(time.RFC3339)
		}
		if r.Notes != nil {
			values[12] = *r.Notes
		}

		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(exportSheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
	}

	return f, nil
}
