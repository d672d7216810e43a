package permission

import (
	"errors"
	"strings"
	"sync"
)

// Capability is one UI affordance a role may hold, stored as a bit.
type Capability uint8

const (
	CapView Capability = 1 << iota
	CapAdd
	CapEdit
	CapDelete
	CapManageUsers
	CapViewBorrowingHistory
)

// Set is a bitmask of capabilities.
type Set uint8

// Has reports whether every bit of c is present in the set.
func (s Set) Has(c Capability) bool {
	return s&Set(c) == Set(c)
}

// Flags expands the mask into the named booleans the view layer binds to.
type Flags struct {
	CanView                 bool
	CanAdd                  bool
	CanEdit                 bool
	CanDelete               bool
	CanManageUsers          bool
	CanViewBorrowingHistory bool
}

func (s Set) Flags() Flags {
	return Flags{
		CanView:                 s.Has(CapView),
		CanAdd:                  s.Has(CapAdd),
		CanEdit:                 s.Has(CapEdit),
		CanDelete:               s.Has(CapDelete),
		CanManageUsers:          s.Has(CapManageUsers),
		CanViewBorrowingHistory: s.Has(CapViewBorrowingHistory),
	}
}

// Role names issued by the Shelf server.
const (
	RoleMember          = "Member"
	RoleMinorStaff      = "MinorStaff"
	RoleManagementStaff = "ManagementStaff"
	RoleAdministrator   = "Administrator"
)

// Table maps role names to capability sets. Register roles during setup,
// then Freeze; a frozen table is immutable and safe for concurrent reads.
type Table struct {
	mu     sync.RWMutex
	roles  map[string]Set
	frozen bool
}

func NewTable() *Table {
	return &Table{roles: make(map[string]Set)}
}

// DefaultTable returns the frozen table for the Shelf staff hierarchy.
// Members get nothing here: member-facing screens carry no management
// affordances, and anything they can do is server-verified anyway.
func DefaultTable() *Table {
	t := NewTable()
	_ = t.Register(RoleMember)
	_ = t.Register(RoleMinorStaff, CapView, CapViewBorrowingHistory)
	_ = t.Register(RoleManagementStaff, CapView, CapViewBorrowingHistory)
	_ = t.Register(RoleAdministrator,
		CapView, CapAdd, CapEdit, CapDelete, CapManageUsers, CapViewBorrowingHistory)
	t.Freeze()
	return t
}

// Register assigns capabilities to a role. Must precede Freeze.
func (t *Table) Register(role string, caps ...Capability) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return errors.New("table frozen")
	}

	role = strings.TrimSpace(role)
	if role == "" {
		return errors.New("role name cannot be empty")
	}
	if _, exists := t.roles[role]; exists {
		return errors.New("role already registered")
	}

	var set Set
	for _, c := range caps {
		set |= Set(c)
	}
	t.roles[role] = set
	return nil
}

// Freeze prevents further registrations.
func (t *Table) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

// Resolve returns the capability set for a role. Unknown or blank roles
// resolve to the empty set.
func (t *Table) Resolve(role string) Set {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.roles[strings.TrimSpace(role)]
}

// Known reports whether the role is registered.
func (t *Table) Known(role string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.roles[strings.TrimSpace(role)]
	return ok
}
