package export

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/sitestock/backend/internal/application/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *appinventory.InventoryReportResponse {
	towerA, towerB := uuid.New(), uuid.New()
	return &appinventory.InventoryReportResponse{
		Sites: []appinventory.ReportSiteColumn{
			{SiteID: towerA, SiteName: "Tower A"},
			{SiteID: towerB, SiteName: "Tower B"},
		},
		Rows: []appinventory.ReportRow{
			{
				ItemCode:    "CEM-001",
				Description: "OPC 53 cement",
				Category:    "Civil",
				SubCategory: "Binders",
				UOM:         "bag",
				Center:      decimal.NewFromInt(120),
				Sites: []appinventory.ReportSiteCell{
					// cells out of column order
					{SiteID: towerB, InHand: decimal.NewFromInt(5), Issued: decimal.NewFromInt(15)},
					{SiteID: towerA, InHand: decimal.NewFromInt(30), Issued: decimal.NewFromInt(40)},
				},
				TotalInHand: decimal.NewFromInt(155),
				TotalIssued: decimal.NewFromInt(55),
			},
			{
				ItemCode:    "STL-010",
				Description: "TMT bar 10mm",
				Category:    "Civil",
				UOM:         "kg",
				Center:      decimal.RequireFromString("12.5"),
				TotalInHand: decimal.RequireFromString("12.5"),
				TotalIssued: decimal.Zero,
			},
		},
		Total: 2,
	}
}

func TestExcelRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	r := NewExcelRenderer()
	require.NoError(t, r.Render(&buf, sampleReport()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"Item Code", "Description", "Category", "Sub Category", "UOM", "Center",
		"Tower A In Hand", "Tower A Issued", "Tower B In Hand", "Tower B Issued",
		"Total In Hand", "Total Issued",
	}, rows[0])
	assert.Equal(t, []string{
		"CEM-001", "OPC 53 cement", "Civil", "Binders", "bag", "120",
		"30", "40", "5", "15", "155", "55",
	}, rows[1])

	assert.Equal(t, "STL-010", rows[2][0])
	assert.Equal(t, "12.5", rows[2][5])
	assert.Equal(t, "0", rows[2][6], "sites without a cell render as zero")
}

func TestExcelRenderer_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelRenderer().Render(&buf, &appinventory.InventoryReportResponse{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Total Issued", rows[0][len(rows[0])-1])
}

func TestExcelRenderer_NilReport(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewExcelRenderer().Render(&buf, nil))
	assert.Zero(t, buf.Len())
}
