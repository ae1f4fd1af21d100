package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"desc lowercase returns DESC", "desc", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE users;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "created_at"},
		{"camel case key maps to column", "itemCode", "item_code"},
		{"snake case base column accepted", "created_at", "created_at"},
		{"unknown field returns default", "password", "created_at"},
		{"column name itself is not a key", "item_code", "created_at"},
		{"whitespace around valid key", "  category  ", "category"},
		{"case sensitive", "ITEMCODE", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, ItemSortFields, "created_at"))
		})
	}
}

func TestSortFieldsWhitelists(t *testing.T) {
	whitelists := map[string]map[string]string{
		"UserSortFields":            UserSortFields,
		"ItemSortFields":            ItemSortFields,
		"SiteSortFields":            SiteSortFields,
		"SupplierSortFields":        SupplierSortFields,
		"InventoryRecordSortFields": InventoryRecordSortFields,
		"MaterialRequestSortFields": MaterialRequestSortFields,
		"MaterialIssueSortFields":   MaterialIssueSortFields,
		"TransferOrderSortFields":   TransferOrderSortFields,
		"PurchaseOrderSortFields":   PurchaseOrderSortFields,
		"GoodsReceiptSortFields":    GoodsReceiptSortFields,
	}

	for name, whitelist := range whitelists {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"id", "createdAt", "updatedAt"} {
				assert.Contains(t, whitelist, key)
			}
			assert.Greater(t, len(whitelist), 5)
		})
	}

	for _, key := range []string{"itemCode", "description", "category", "center"} {
		assert.Contains(t, ReportSortFields, key)
	}
}

func TestSQLInjectionPrevention(t *testing.T) {
	payloads := []string{
		"id; DROP TABLE users;--",
		"id' OR '1'='1",
		"id UNION SELECT * FROM users",
		"CASE WHEN 1=1 THEN id ELSE name END",
		"id\n; DROP TABLE users",
	}

	for _, payload := range payloads {
		assert.Equal(t, "created_at", ValidateSortField(payload, UserSortFields, "created_at"), payload)
		assert.Equal(t, "DESC", ValidateSortOrder(payload), payload)
	}
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%cement%", containsPattern("  Cement "))
	assert.Equal(t, `%50\%%`, containsPattern("50%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
}
