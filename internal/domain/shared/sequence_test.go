package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDocumentNumber(t *testing.T) {
	tests := []struct {
		kind DocumentKind
		seq  int64
		want string
	}{
		{KindMaterialRequest, 1, "MR-0001"},
		{KindMaterialIssue, 42, "MI-0042"},
		{KindGoodsReceipt, 9999, "GRN-9999"},
		{KindGoodsReceipt, 10000, "GRN-10000"},
		{KindTransferOrder, 7, "TO-0007"},
		{KindPurchaseOrder, 1, "PO-00001"},
		{KindItem, 12, "ITEM-0012"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDocumentNumber(tt.kind, tt.seq))
		})
	}
}

func TestDocumentKind_IsValid(t *testing.T) {
	assert.True(t, KindPurchaseOrder.IsValid())
	assert.False(t, DocumentKind("SO").IsValid())
}
