package permission

import "testing"

func TestDefaultTableMatrix(t *testing.T) {
	table := DefaultTable()

	cases := []struct {
		role string
		want Flags
	}{
		{RoleMember, Flags{}},
		{RoleMinorStaff, Flags{CanView: true, CanViewBorrowingHistory: true}},
		{RoleManagementStaff, Flags{CanView: true, CanViewBorrowingHistory: true}},
		{RoleAdministrator, Flags{
			CanView: true, CanAdd: true, CanEdit: true, CanDelete: true,
			CanManageUsers: true, CanViewBorrowingHistory: true,
		}},
	}

	for _, tc := range cases {
		if got := table.Resolve(tc.role).Flags(); got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.role, got, tc.want)
		}
	}
}

func TestResolveFailsClosed(t *testing.T) {
	table := DefaultTable()

	for _, role := range []string{"", "   ", "Superuser", "administrator"} {
		if got := table.Resolve(role); got != 0 {
			t.Errorf("role %q should resolve to the empty set, got %b", role, got)
		}
	}
	if table.Known("Superuser") {
		t.Fatal("unregistered role reported as known")
	}
	if !table.Known("Administrator") {
		t.Fatal("registered role not reported as known")
	}
}

func TestResolveTrimsRoleName(t *testing.T) {
	table := DefaultTable()
	if !table.Resolve("  Administrator  ").Has(CapManageUsers) {
		t.Fatal("surrounding whitespace should not defeat resolution")
	}
}

func TestRegisterValidation(t *testing.T) {
	table := NewTable()

	if err := table.Register(""); err == nil {
		t.Fatal("blank role name should be rejected")
	}
	if err := table.Register("Clerk", CapView); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := table.Register("Clerk", CapEdit); err == nil {
		t.Fatal("duplicate registration should be rejected")
	}

	table.Freeze()
	if err := table.Register("Auditor", CapView); err == nil {
		t.Fatal("registration after Freeze should be rejected")
	}
	if got := table.Resolve("Clerk"); !got.Has(CapView) || got.Has(CapEdit) {
		t.Fatalf("unexpected set for Clerk: %b", got)
	}
}

func TestSetHasRequiresAllBits(t *testing.T) {
	var s Set
	s |= Set(CapView) | Set(CapEdit)

	if !s.Has(CapView) || !s.Has(CapEdit) {
		t.Fatal("individual bits should be present")
	}
	if !s.Has(CapView | CapEdit) {
		t.Fatal("combined mask with all bits present should match")
	}
	if s.Has(CapView | CapDelete) {
		t.Fatal("combined mask with a missing bit should not match")
	}
}
