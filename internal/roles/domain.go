// Package roles maps stored role strings to capability sets used for
// request gating. Resolution is a static table lookup: no hierarchy walk,
// no inheritance, and an absent role grants nothing.
package roles

// Role is the stored role string of a profile.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
	RoleAccountant Role = "accountant"
	RoleViewer     Role = "viewer"
)

// Capabilities is the immutable set of boolean flags consumed by handlers.
// Components never re-derive permissions from the role string.
type Capabilities struct {
	CanCreateOrders   bool `json:"can_create_orders"`
	CanApproveOrders  bool `json:"can_approve_orders"`
	CanManageUsers    bool `json:"can_manage_users"`
	CanManageWorkflow bool `json:"can_manage_workflow"`
	CanViewInvoices   bool `json:"can_view_invoices"`
	CanManageInvoices bool `json:"can_manage_invoices"`
	CanViewAllOrders  bool `json:"can_view_all_orders"`
}

var table = map[Role]Capabilities{
	RoleOwner: {
		CanCreateOrders:   true,
		CanApproveOrders:  true,
		CanManageUsers:    true,
		CanManageWorkflow: true,
		CanViewInvoices:   true,
		CanManageInvoices: true,
		CanViewAllOrders:  true,
	},
	RoleAdmin: {
		CanCreateOrders:   true,
		CanApproveOrders:  true,
		CanManageUsers:    true,
		CanManageWorkflow: true,
		CanViewInvoices:   true,
		CanManageInvoices: true,
		CanViewAllOrders:  true,
	},
	RoleEmployee: {
		CanCreateOrders:  true,
		CanViewInvoices:  true,
		CanViewAllOrders: true,
	},
	RoleAccountant: {
		CanViewInvoices:   true,
		CanManageInvoices: true,
		CanViewAllOrders:  true,
	},
	RoleViewer: {
		CanViewInvoices:  true,
		CanViewAllOrders: true,
	},
}

// Resolve returns the capabilities for the exact role string. Unknown or
// empty roles resolve to the zero value: every capability false.
func Resolve(role Role) Capabilities {
	return table[role]
}

// Known reports whether the role string appears in the table.
func Known(role Role) bool {
	_, ok := table[role]
	return ok
}
