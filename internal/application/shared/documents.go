package shared

import (
	"context"
	"fmt"
	"strings"
)

// DocumentLinker returns the link under which a rendered document is served
type DocumentLinker interface {
	Link(ctx context.Context, kind, number string) (string, error)
}

// PathLinker builds a static placeholder path under a base prefix
type PathLinker struct {
	Base string
}

// Link returns e.g. /documents/grn/GRN-0001.pdf
func (l PathLinker) Link(_ context.Context, kind, number string) (string, error) {
	base := strings.TrimRight(l.Base, "/")
	if base == "" {
		base = "/documents"
	}
	return fmt.Sprintf("%s/%s/%s.pdf", base, strings.ToLower(kind), number), nil
}

var _ DocumentLinker = PathLinker{}
