package auth

// ScopeOpenID is requested with every service user token.
const ScopeOpenID = "openid"
