package partner

import (
	"regexp"
	"strings"

	"github.com/sitestock/backend/internal/domain/shared"
)

var (
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Supplier represents a material vendor
type Supplier struct {
	shared.BaseAggregateRoot
	SupplierName  string
	ContactPerson string
	Phone         string
	Email         string // Unique
	Address       string
	City          string
	State         string
	GSTIN         string
}

// SupplierContact groups the contact fields of a supplier
type SupplierContact struct {
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	City          string
	State         string
	GSTIN         string
}

// NewSupplier creates a new supplier
func NewSupplier(name string, contact SupplierContact) (*Supplier, error) {
	var errs shared.ValidationErrors
	if strings.TrimSpace(name) == "" {
		errs.Add("supplierName", "supplierName is required")
	}
	if contact.Phone != "" && !phoneRegex.MatchString(contact.Phone) {
		errs.Add("phone", "phone must be 10 digits")
	}
	if !emailRegex.MatchString(strings.TrimSpace(contact.Email)) {
		errs.Add("email", "email is invalid")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierName:      strings.TrimSpace(name),
		ContactPerson:     contact.ContactPerson,
		Phone:             contact.Phone,
		Email:             strings.ToLower(strings.TrimSpace(contact.Email)),
		Address:           contact.Address,
		City:              contact.City,
		State:             strings.TrimSpace(contact.State),
		GSTIN:             strings.ToUpper(contact.GSTIN),
	}, nil
}

// SameStateAs reports whether the supplier ships from the site's state,
// which decides between CGST+SGST and IGST.
func (s *Supplier) SameStateAs(site *Site) bool {
	if site == nil || s.State == "" || site.State == "" {
		return true
	}
	return strings.EqualFold(s.State, site.State)
}
