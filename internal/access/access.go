// Package access decides what an authenticated caller may do.
//
// Permissions live in one table keyed by operation; handlers consult it
// through Authorize and never branch on roles themselves. Site scoping is
// separate: every role except ADMIN only sees and changes its home site.
package access

import (
	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/model"
)

// Operation names a guarded action.
type Operation string

const (
	PurchaseCreate   Operation = "purchase.create"
	PurchaseList     Operation = "purchase.list"
	TransferCreate   Operation = "transfer.create"
	TransferList     Operation = "transfer.list"
	AssignmentCreate Operation = "assignment.create"
	AssignmentList   Operation = "assignment.list"
	BalanceView      Operation = "balance.view"
	MovementList     Operation = "movement.list"
	ReferenceRead    Operation = "reference.read"
	ReferenceWrite   Operation = "reference.write"
	UserManage       Operation = "user.manage"
)

var (
	allRoles  = []string{model.RoleAdmin, model.RoleBaseCommander, model.RoleLogisticsOfficer}
	logistics = []string{model.RoleAdmin, model.RoleLogisticsOfficer}
	command   = []string{model.RoleAdmin, model.RoleBaseCommander}
	adminOnly = []string{model.RoleAdmin}
)

// capabilities maps each operation to the roles allowed to perform it.
var capabilities = map[Operation][]string{
	PurchaseCreate:   logistics,
	PurchaseList:     allRoles,
	TransferCreate:   logistics,
	TransferList:     allRoles,
	AssignmentCreate: command,
	AssignmentList:   command,
	BalanceView:      allRoles,
	MovementList:     allRoles,
	ReferenceRead:    allRoles,
	ReferenceWrite:   adminOnly,
	UserManage:       adminOnly,
}

// Operations returns every guarded operation.
func Operations() []Operation {
	ops := make([]Operation, 0, len(capabilities))
	for op := range capabilities {
		ops = append(ops, op)
	}
	return ops
}

// Allowed reports whether role may perform op. Unknown operations are denied.
func Allowed(role string, op Operation) bool {
	for _, r := range capabilities[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller.
type Actor struct {
	UserID   int64
	Username string
	Role     string
	SiteID   *int64
}

// IsAdmin reports whether the actor has unrestricted site scope.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// Authorize returns an authorization error unless the actor may perform op.
func (a Actor) Authorize(op Operation) error {
	if !Allowed(a.Role, op) {
		return apperr.Authorization("insufficient permissions")
	}
	return nil
}

// ScopeSite resolves the site filter for a read. Admins get the requested
// filter unchanged (0 means all sites). Everyone else is pinned to their
// home site and may not ask for another one.
func (a Actor) ScopeSite(requested int64) (int64, error) {
	if a.IsAdmin() {
		return requested, nil
	}
	if a.SiteID == nil {
		return 0, apperr.Authorization("no home site assigned")
	}
	if requested != 0 && requested != *a.SiteID {
		return 0, apperr.Authorization("access limited to home site")
	}
	return *a.SiteID, nil
}

// CheckSite returns an authorization error unless the actor may write at site.
func (a Actor) CheckSite(site int64) error {
	if a.IsAdmin() {
		return nil
	}
	if a.SiteID == nil || *a.SiteID != site {
		return apperr.Authorization("access limited to home site")
	}
	return nil
}
