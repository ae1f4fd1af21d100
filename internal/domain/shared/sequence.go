package shared

import (
	"context"
	"fmt"
)

// DocumentKind names a numbered document series
type DocumentKind string

const (
	KindMaterialRequest DocumentKind = "MR"
	KindMaterialIssue   DocumentKind = "MI"
	KindGoodsReceipt    DocumentKind = "GRN"
	KindTransferOrder   DocumentKind = "TO"
	KindPurchaseOrder   DocumentKind = "PO"
	KindItem            DocumentKind = "ITEM"
)

// Width returns the zero-padded width of the numeric suffix
func (k DocumentKind) Width() int {
	if k == KindPurchaseOrder {
		return 5
	}
	return 4
}

// IsValid reports whether the kind is a known series
func (k DocumentKind) IsValid() bool {
	switch k {
	case KindMaterialRequest, KindMaterialIssue, KindGoodsReceipt,
		KindTransferOrder, KindPurchaseOrder, KindItem:
		return true
	}
	return false
}

// FormatDocumentNumber renders seq as e.g. MR-0001 or PO-00001.
// Numbers wider than the pad width are printed in full.
func FormatDocumentNumber(kind DocumentKind, seq int64) string {
	return fmt.Sprintf("%s-%0*d", kind, kind.Width(), seq)
}

// SequenceGenerator hands out document numbers by atomic fetch-and-add on a
// per-kind counter. Two concurrent callers never receive the same number.
type SequenceGenerator interface {
	Next(ctx context.Context, kind DocumentKind) (string, error)
	NextN(ctx context.Context, kind DocumentKind, n int) ([]string, error)
}
