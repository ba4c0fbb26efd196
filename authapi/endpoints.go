package authapi

// Endpoints is the set of auth endpoint paths. The backend API has drifted
// between deployments (/auth/refresh vs /auth/refresh-token, /auth/register
// vs /auth/signup), so the paths are configuration rather than constants.
type Endpoints struct {
	Login          string
	Register       string
	Logout         string
	Refresh        string
	Verify         string
	ForgotPassword string
	ResetPassword  string
	ChangePassword string
	Profile        string
}

// DefaultEndpoints is the current endpoint set.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:          "/auth/login",
		Register:       "/auth/register",
		Logout:         "/auth/logout",
		Refresh:        "/auth/refresh",
		Verify:         "/auth/reauthenticate",
		ForgotPassword: "/auth/forgot-password",
		ResetPassword:  "/auth/reset-password",
		ChangePassword: "/auth/change-password",
		Profile:        "/users/profile",
	}
}

// LegacyEndpoints is the historical endpoint set still served by older
// deployments. The legacy refresh endpoint takes the refresh token as a
// query parameter in addition to the body.
func LegacyEndpoints() Endpoints {
	endpoints := DefaultEndpoints()
	endpoints.Register = "/auth/signup"
	endpoints.Refresh = "/auth/refresh-token"
	return endpoints
}
