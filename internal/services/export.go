package services

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// bugExportHeader lists the spreadsheet columns, mirroring the fields of a
// full bug detail.
var bugExportHeader = []string{
	"ID", "Title", "Submitter", "Assignee", "Version", "Region",
	"Status", "Description", "Screenshot", "Log File",
	"Created At", "Resolved At",
}

const exportSheet = "Bugs"

// ExportService renders the bug list as a downloadable spreadsheet.
type ExportService struct {
	bugs *BugService
}

func NewExportService(bugs *BugService) *ExportService {
	return &ExportService{bugs: bugs}
}

// ExportBugs builds an xlsx workbook containing every bug with its full
// detail and returns the serialized bytes.
func (s *ExportService) ExportBugs() ([]byte, error) {
	summaries, err := s.bugs.List()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for col, title := range bugExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return nil, err
		}
	}

	for i, summary := range summaries {
		detail, err := s.bugs.GetByID(summary.ID)
		if err != nil {
			return nil, err
		}
		if detail == nil {
			continue
		}

		resolvedAt := ""
		if detail.ResolvedAt != nil {
			resolvedAt = detail.ResolvedAt.Format(time.RFC3339)
		}

		values := []interface{}{
			detail.ID, detail.Title, detail.Submitter, detail.Assignee,
			detail.Version, detail.Region, detail.Status, detail.Description,
			detail.Screenshot, detail.LogFile,
			detail.CreatedAt.Format(time.RFC3339), resolvedAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(exportSheet, "B", "B", 30)
	_ = f.SetColWidth(exportSheet, "H", "H", 50)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
