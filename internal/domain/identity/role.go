package identity

import "github.com/google/uuid"

// Role is the single role a user holds. Roles are a fixed enumeration;
// the approval chain between them lives in the hierarchy table below.
type Role string

const (
	RoleAdmin               Role = "admin"
	RoleJuniorSiteEngineer  Role = "junior site engineer"
	RoleSiteEngineer        Role = "site engineer"
	RoleSiteStoreIncharge   Role = "site store incharge"
	RoleCenterStoreIncharge Role = "center store incharge"
	RolePurchaseManager     Role = "purchase manager"
	RolePurchaseVP          Role = "purchase VP"
	RoleAccountsOfficer     Role = "accounts officer"
	RoleSecurityGuard       Role = "security guard"
)

// AllRoles lists every valid role
var AllRoles = []Role{
	RoleAdmin,
	RoleJuniorSiteEngineer,
	RoleSiteEngineer,
	RoleSiteStoreIncharge,
	RoleCenterStoreIncharge,
	RolePurchaseManager,
	RolePurchaseVP,
	RoleAccountsOfficer,
	RoleSecurityGuard,
}

// IsValid checks if the role is a known role
func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// String returns the role label
func (r Role) String() string {
	return string(r)
}

// ApproverScope restricts which users holding the approver role may review
type ApproverScope string

const (
	ScopeSameSite ApproverScope = "same_site"
	ScopeAny      ApproverScope = "any"
)

// RequestCounter is the inventory counter a new request increments
type RequestCounter string

const (
	CounterRequestQuantity RequestCounter = "requestQuantity"
	CounterMIP             RequestCounter = "mip"
)

// HierarchyRule describes one link of the material request approval chain
type HierarchyRule struct {
	Requester Role
	Approver  Role
	Scope     ApproverScope
	Counter   RequestCounter
}

// approvalHierarchy is the directed request → approver table. A role
// missing from the table cannot raise material requests.
var approvalHierarchy = map[Role]HierarchyRule{
	RoleJuniorSiteEngineer: {
		Requester: RoleJuniorSiteEngineer,
		Approver:  RoleSiteStoreIncharge,
		Scope:     ScopeSameSite,
		Counter:   CounterRequestQuantity,
	},
	RoleSiteStoreIncharge: {
		Requester: RoleSiteStoreIncharge,
		Approver:  RoleCenterStoreIncharge,
		Scope:     ScopeAny,
		Counter:   CounterRequestQuantity,
	},
	RoleCenterStoreIncharge: {
		Requester: RoleCenterStoreIncharge,
		Approver:  RolePurchaseManager,
		Scope:     ScopeAny,
		Counter:   CounterMIP,
	},
}

// HierarchyFor returns the approval rule for a requester role
func HierarchyFor(requester Role) (HierarchyRule, bool) {
	rule, ok := approvalHierarchy[requester]
	return rule, ok
}

// CanRequest reports whether the role may raise material requests
func CanRequest(role Role) bool {
	_, ok := approvalHierarchy[role]
	return ok
}

// IsTopOfChain reports whether requests from this role land in the
// pipeline (mip) counter and still need an external approval.
func IsTopOfChain(role Role) bool {
	rule, ok := approvalHierarchy[role]
	return ok && rule.Counter == CounterMIP
}

// ReviewerOf returns the requester roles whose submissions the role reviews
func ReviewerOf(approver Role) []Role {
	roles := make([]Role, 0, 1)
	for _, r := range AllRoles {
		if rule, ok := approvalHierarchy[r]; ok && rule.Approver == approver {
			roles = append(roles, r)
		}
	}
	return roles
}

// CanApprove reports whether the approver may approve a request raised by
// requester. Admins may approve anything. Same-site rules also compare sites.
func CanApprove(approverRole Role, approverSite *uuid.UUID, requesterRole Role, requestSite *uuid.UUID) bool {
	if approverRole == RoleAdmin {
		return true
	}
	rule, ok := approvalHierarchy[requesterRole]
	if !ok || rule.Approver != approverRole {
		return false
	}
	if rule.Scope == ScopeSameSite {
		return approverSite != nil && requestSite != nil && *approverSite == *requestSite
	}
	return true
}
