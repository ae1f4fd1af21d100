package persistence

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField maps an API sort key to its column through a whitelist.
// Returns defaultColumn if the input is empty or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]string, defaultColumn string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultColumn
	}
	if column, ok := allowedFields[trimmed]; ok {
		return column
	}
	return defaultColumn
}

// withBase adds the columns every table carries
func withBase(fields map[string]string) map[string]string {
	out := map[string]string{
		"id":         "id",
		"createdAt":  "created_at",
		"created_at": "created_at",
		"updatedAt":  "updated_at",
		"updated_at": "updated_at",
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = withBase(map[string]string{
	"name":        "name",
	"username":    "username",
	"email":       "email",
	"role":        "role",
	"status":      "status",
	"lastLoginAt": "last_login_at",
})

// ItemSortFields contains allowed sort fields for items
var ItemSortFields = withBase(map[string]string{
	"itemCode":    "item_code",
	"description": "description",
	"category":    "category",
	"subCategory": "sub_category",
	"uom":         "uom",
})

// SiteSortFields contains allowed sort fields for sites
var SiteSortFields = withBase(map[string]string{
	"siteName":    "site_name",
	"projectCode": "project_code",
	"city":        "city",
	"state":       "state",
	"hierarchy":   "hierarchy",
})

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = withBase(map[string]string{
	"supplierName": "supplier_name",
	"email":        "email",
	"city":         "city",
	"state":        "state",
})

// InventoryRecordSortFields contains allowed sort fields for inventory records
var InventoryRecordSortFields = withBase(map[string]string{
	"scope":           "scope",
	"inHand":          "in_hand",
	"open":            "open_qty",
	"requestQuantity": "request_quantity",
	"issuedQuantity":  "issued_quantity",
	"mip":             "mip",
	"pending":         "pending",
})

// MaterialRequestSortFields contains allowed sort fields for material requests
var MaterialRequestSortFields = withBase(map[string]string{
	"requestNo":  "request_no",
	"status":     "status",
	"approvedAt": "approved_at",
})

// MaterialIssueSortFields contains allowed sort fields for material issues
var MaterialIssueSortFields = withBase(map[string]string{
	"issueNumber":          "issue_number",
	"transferNo":           "transfer_no",
	"materialInwardStatus": "material_inward_status",
})

// TransferOrderSortFields contains allowed sort fields for transfer orders
var TransferOrderSortFields = withBase(map[string]string{
	"transferNo":  "transfer_no",
	"type":        "type",
	"referenceNo": "reference_no",
	"status":      "status",
})

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = withBase(map[string]string{
	"purchaseOrderNo":   "purchase_order_no",
	"materialRequestNo": "material_request_no",
	"status":            "status",
	"totalAmount":       "total_amount",
	"grandTotalIncGst":  "grand_total_inc_gst",
	"deliveryDate":      "delivery_date",
	"approvedAt":        "approved_at",
})

// GoodsReceiptSortFields contains allowed sort fields for GRNs
var GoodsReceiptSortFields = withBase(map[string]string{
	"grnNo":           "grn_no",
	"type":            "type",
	"purchaseOrderNo": "purchase_order_no",
	"materialIssueNo": "material_issue_no",
	"supplierName":    "supplier_name",
})

// ReportSortFields maps report sort keys to the columns of the report item query
var ReportSortFields = map[string]string{
	"itemCode":    "items.item_code",
	"description": "items.description",
	"category":    "items.category",
	"center":      "center",
}

// paginate applies ordering and paging from a filter. Invalid sort keys fall
// back to defaultOrder.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]string, defaultOrder string) *gorm.DB {
	if column := ValidateSortField(filter.OrderBy, allowed, ""); column != "" {
		query = query.Order(column + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order(defaultOrder)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

// containsPattern builds a lower-cased LIKE pattern; LOWER(col) LIKE works
// on both postgres and sqlite where ILIKE does not.
func containsPattern(search string) string {
	s := strings.ToLower(strings.TrimSpace(search))
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
	return "%" + s + "%"
}

// whereSearch matches pattern against any of the columns
func whereSearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	if strings.TrimSpace(search) == "" || len(columns) == 0 {
		return query
	}
	pattern := containsPattern(search)
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		clauses[i] = "LOWER(" + c + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return query.Where(strings.Join(clauses, " OR "), args...)
}

// whereUUID filters column by an id given as uuid.UUID, *uuid.UUID or
// string. A malformed string matches nothing.
func whereUUID(query *gorm.DB, column string, value any) *gorm.DB {
	switch v := value.(type) {
	case uuid.UUID:
		return query.Where(column+" = ?", v)
	case *uuid.UUID:
		if v == nil {
			return query.Where(column + " IS NULL")
		}
		return query.Where(column+" = ?", *v)
	case string:
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return query.Where("1 = 0")
		}
		return query.Where(column+" = ?", id)
	}
	return query.Where("1 = 0")
}
