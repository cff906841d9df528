package domain

// Permission entries stored on an application, using the prefix scheme the
// authorization-server runtime expects.
const (
	PermissionEndpointAuthorization = "ept:authorization"
	PermissionEndpointToken         = "ept:token"
	PermissionEndpointEndSession    = "ept:endsession"

	PermissionGrantTypeAuthorizationCode = "gt:authorization_code"
	PermissionGrantTypeClientCredentials = "gt:client_credentials"
	PermissionGrantTypeRefreshToken      = "gt:refresh_token"

	PermissionResponseTypeCode = "rst:code"

	// PermissionPrefixScope prefixes scope names granted to a client.
	PermissionPrefixScope = "scp:"
)

// Requirement entries stored on an application.
const (
	RequirementPKCE = "ft:pkce"
)
