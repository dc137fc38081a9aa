package model

// Staff roles as stored in the staff directory and carried in JWT claims.
const (
	RoleWaiter  = "WAITER"
	RoleChef    = "CHEF"
	RoleCashier = "CASHIER"
	RoleManager = "MANAGER"
)

// Staff is the read model consumed from the staff directory.  The core only
// needs the role to validate chef/cashier actions; account management lives
// in an external service.
type Staff struct {
	ID       uint64 // staff.id
	Name     string // staff.name
	Role     string // staff.role
	IsActive bool   // staff.is_active
}
