package roles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveEmployee(t *testing.T) {
	caps := Resolve(RoleEmployee)
	require.True(t, caps.CanCreateOrders)
	require.False(t, caps.CanApproveOrders)
	require.False(t, caps.CanManageUsers)
	require.True(t, caps.CanViewAllOrders)
}

func TestResolveMissingRole(t *testing.T) {
	require.Equal(t, Capabilities{}, Resolve(""))
	require.Equal(t, Capabilities{}, Resolve("superuser"))
}

func TestResolveNoInheritance(t *testing.T) {
	// Accountants manage invoices but never orders or users.
	caps := Resolve(RoleAccountant)
	require.True(t, caps.CanManageInvoices)
	require.False(t, caps.CanCreateOrders)
	require.False(t, caps.CanManageUsers)

	require.True(t, Resolve(RoleOwner).CanManageWorkflow)
	require.False(t, Resolve(RoleViewer).CanManageWorkflow)
}
