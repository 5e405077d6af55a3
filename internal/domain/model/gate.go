package model

// Redirect targets used by the route gates. The fronting marketplace maps
// these onto its own URL space.
const (
	RouteLogin             = "/login"
	RouteOnboarding        = "/onboarding"
	RoutePlans             = "/plans"
	RouteVendorOnboarding  = "/vendor/onboarding"
	RouteVendorPlans       = "/vendor/plans"
	RouteVerificationStart = "/verification/start"
)

// GateResult is the discriminated verdict of a route gate: either allow, or a
// redirect target. Deny is a value, never an error; errors are reserved for
// infrastructure failure.
type GateResult struct {
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

func GateAllow() GateResult { return GateResult{Allow: true} }

func GateRedirect(to string) GateResult { return GateResult{RedirectTo: to} }

// Identity is the authenticated caller as asserted by the fronting gateway.
// A zero UserID means unauthenticated.
type Identity struct {
	UserID string
	Email  string
}

func (id Identity) Authenticated() bool { return id.UserID != "" }
