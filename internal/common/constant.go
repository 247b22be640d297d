package common

// AuthHeaderName is the HTTP header used to carry the access token on
// outbound requests.
const AuthHeaderName = "Authorization"

// BearerPrefix is prepended to the token value in AuthHeaderName.
const BearerPrefix = "Bearer "
