package export

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/sitestock/backend/internal/application/inventory"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of rendered workbooks
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DefaultSheet names the single sheet of the report workbook
const DefaultSheet = "Inventory"

var itemHeaders = []string{"Item Code", "Description", "Category", "Sub Category", "UOM", "Center"}

// ExcelRenderer writes the composed inventory report as an xlsx workbook.
// Every site gets an in-hand and an issued column.
type ExcelRenderer struct {
	sheet string
}

// NewExcelRenderer creates a renderer writing to DefaultSheet
func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{sheet: DefaultSheet}
}

// ContentType returns the MIME type of the rendered output
func (r *ExcelRenderer) ContentType() string {
	return ContentTypeXLSX
}

// FileExtension returns the extension of the rendered output
func (r *ExcelRenderer) FileExtension() string {
	return ".xlsx"
}

// Render writes report to w
func (r *ExcelRenderer) Render(w io.Writer, report *appinventory.InventoryReportResponse) error {
	if report == nil {
		return fmt.Errorf("render report: nil report")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), r.sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, 0, len(itemHeaders)+2*len(report.Sites)+2)
	for _, h := range itemHeaders {
		header = append(header, h)
	}
	for _, site := range report.Sites {
		header = append(header, site.SiteName+" In Hand", site.SiteName+" Issued")
	}
	header = append(header, "Total In Hand", "Total Issued")
	if err := f.SetSheetRow(r.sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := r.styleHeader(f, len(header)); err != nil {
		return err
	}

	for i, row := range report.Rows {
		cells := make(map[uuid.UUID]appinventory.ReportSiteCell, len(row.Sites))
		for _, c := range row.Sites {
			cells[c.SiteID] = c
		}

		values := make([]any, 0, len(header))
		values = append(values, row.ItemCode, row.Description, row.Category, row.SubCategory, row.UOM, number(row.Center))
		for _, site := range report.Sites {
			c := cells[site.SiteID]
			values = append(values, number(c.InHand), number(c.Issued))
		}
		values = append(values, number(row.TotalInHand), number(row.TotalIssued))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(r.sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(r.sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      2,
		YSplit:      1,
		TopLeftCell: "C2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (r *ExcelRenderer) styleHeader(f *excelize.File, columns int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(r.sheet, "A1", last, style)
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

var _ appinventory.ReportRenderer = (*ExcelRenderer)(nil)
