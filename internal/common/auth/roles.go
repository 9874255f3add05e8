package auth

// Role is a CRM staff role carried in the access token.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleSales      Role = "SALES"
	RoleAccountant Role = "ACCOUNTANT"
	RoleMarketing  Role = "MARKETING"
)

// Permission is a single capability checked by handlers.
type Permission string

const (
	PermBookingCreate      Permission = "booking:create"
	PermBookingView        Permission = "booking:view"
	PermBookingViewAll     Permission = "booking:view_all"
	PermBookingUpdate      Permission = "booking:update"
	PermBookingApprove     Permission = "booking:approve"
	PermBookingCancel      Permission = "booking:cancel"
	PermBookingStatus      Permission = "booking:update_status"
	PermTransactionCreate  Permission = "transaction:create"
	PermTransactionCancel  Permission = "transaction:cancel"
	PermCustomerManage     Permission = "customer:manage"
	PermCustomerViewAll    Permission = "customer:view_all"
	PermDocumentUpload     Permission = "document:upload"
	PermDashboardView      Permission = "dashboard:view"
	PermNotificationPeople Permission = "notification:presence"
)

// capabilities is the single source of truth for role permissions.
var capabilities = map[Role]map[Permission]struct{}{
	RoleAdmin: set(
		PermBookingCreate, PermBookingView, PermBookingViewAll, PermBookingUpdate,
		PermBookingApprove, PermBookingCancel, PermBookingStatus,
		PermTransactionCreate, PermTransactionCancel,
		PermCustomerManage, PermCustomerViewAll, PermDocumentUpload,
		PermDashboardView, PermNotificationPeople,
	),
	RoleManager: set(
		PermBookingCreate, PermBookingView, PermBookingViewAll, PermBookingUpdate,
		PermBookingApprove, PermBookingCancel, PermBookingStatus,
		PermTransactionCreate, PermTransactionCancel,
		PermCustomerManage, PermCustomerViewAll, PermDocumentUpload,
		PermDashboardView, PermNotificationPeople,
	),
	RoleSales: set(
		PermBookingCreate, PermBookingView, PermBookingUpdate,
		PermCustomerManage, PermDocumentUpload,
	),
	RoleAccountant: set(
		PermBookingView, PermBookingViewAll,
		PermTransactionCreate, PermTransactionCancel,
		PermCustomerViewAll, PermDocumentUpload, PermDashboardView,
	),
	RoleMarketing: set(
		PermCustomerManage,
	),
}

func set(perms ...Permission) map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		m[p] = struct{}{}
	}
	return m
}

// Can reports whether role holds perm. Unknown roles hold nothing.
func Can(role Role, perm Permission) bool {
	perms, ok := capabilities[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}

// IsValid reports whether the role is known.
func (r Role) IsValid() bool {
	_, ok := capabilities[r]
	return ok
}

// SeesEverything reports whether the role may see records owned by others.
func (r Role) SeesEverything() bool {
	return Can(r, PermBookingViewAll)
}
