package inventory

import (
	"fmt"

	"github.com/google/uuid"
)

// Scope distinguishes the three kinds of inventory record an item can have
type Scope string

const (
	// ScopeGlobal is the item-wide roll-up record
	ScopeGlobal Scope = "global"
	// ScopeCentral is the central warehouse record
	ScopeCentral Scope = "central"
	// ScopeSite is a record held at a specific site
	ScopeSite Scope = "site"
)

// IsValid checks the scope value
func (s Scope) IsValid() bool {
	return s == ScopeGlobal || s == ScopeCentral || s == ScopeSite
}

// Location identifies where a record lives. SiteID is uuid.Nil unless
// Scope is ScopeSite, so (ItemID, Scope, SiteID) is a usable unique key.
type Location struct {
	Scope  Scope
	SiteID uuid.UUID
}

// GlobalLocation returns the item-wide roll-up location
func GlobalLocation() Location {
	return Location{Scope: ScopeGlobal}
}

// CentralLocation returns the central warehouse location
func CentralLocation() Location {
	return Location{Scope: ScopeCentral}
}

// SiteLocation returns the location of a site
func SiteLocation(siteID uuid.UUID) Location {
	return Location{Scope: ScopeSite, SiteID: siteID}
}

// LocationFor maps an optional site reference to a location; nil is central
func LocationFor(siteID *uuid.UUID) Location {
	if siteID == nil || *siteID == uuid.Nil {
		return CentralLocation()
	}
	return SiteLocation(*siteID)
}

// IsGlobal reports whether this is the roll-up location
func (l Location) IsGlobal() bool {
	return l.Scope == ScopeGlobal
}

// SitePtr returns the site reference, nil for central and global
func (l Location) SitePtr() *uuid.UUID {
	if l.Scope != ScopeSite {
		return nil
	}
	id := l.SiteID
	return &id
}

// Validate checks that the location is well formed
func (l Location) Validate() error {
	switch l.Scope {
	case ScopeSite:
		if l.SiteID == uuid.Nil {
			return fmt.Errorf("site location requires a site id")
		}
	case ScopeGlobal, ScopeCentral:
		if l.SiteID != uuid.Nil {
			return fmt.Errorf("%s location cannot carry a site id", l.Scope)
		}
	default:
		return fmt.Errorf("unknown location scope %q", l.Scope)
	}
	return nil
}

// String renders the location for logs
func (l Location) String() string {
	if l.Scope == ScopeSite {
		return "site:" + l.SiteID.String()
	}
	return string(l.Scope)
}
