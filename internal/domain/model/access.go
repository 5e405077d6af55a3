package model

// Synthetic status and plan key reported for allow-listed admins. Admins are
// entitled by override, not by any stored subscription row.
const (
	AdminStatus  SubscriptionStatus = "admin"
	AdminPlanKey                    = "admin"
)

// ConsumerAccess is the resolved entitlement verdict for a consumer.
type ConsumerAccess struct {
	IsSubscribed bool               `json:"is_subscribed"`
	Status       SubscriptionStatus `json:"subscription_status,omitempty"`
	PlanKey      string             `json:"plan_key,omitempty"`
	IsAdmin      bool               `json:"is_admin"`
}

// VendorAccess is the resolved entitlement verdict for a vendor.
type VendorAccess struct {
	IsVendor     bool               `json:"is_vendor"`
	IsSubscribed bool               `json:"is_subscribed"`
	Status       SubscriptionStatus `json:"subscription_status,omitempty"`
	PlanKey      string             `json:"plan_key,omitempty"`
	VendorID     string             `json:"vendor_id,omitempty"`
	IsAdmin      bool               `json:"is_admin"`
}

// AdminConsumerAccess is the short-circuit verdict for an allow-listed email.
func AdminConsumerAccess() *ConsumerAccess {
	return &ConsumerAccess{IsSubscribed: true, Status: AdminStatus, PlanKey: AdminPlanKey, IsAdmin: true}
}

// AdminVendorAccess is the vendor-side short-circuit verdict.
func AdminVendorAccess() *VendorAccess {
	return &VendorAccess{IsVendor: true, IsSubscribed: true, Status: AdminStatus, PlanKey: AdminPlanKey, IsAdmin: true}
}
