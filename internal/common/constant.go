package common

// Session keys shared by the HTTP login routes and the restrict middleware.
const (
	SessionKeyUsername            = "username"
	SessionKeyEmail               = "email"
	SessionKeyFailedLoginAttempts = "failedLoginAttempts"
	SessionKeyRedirectAfterLogin  = "redirectUrlAfterLogin"
)

// AccessTokenHeaderName is the HTTP header used to carry the access token
// issued by the JSON login API.
const AccessTokenHeaderName = "access_token"
