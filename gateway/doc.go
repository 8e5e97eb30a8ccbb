// Package gateway is the HTTP client for the remote identity service.
//
// Client implements goSession.Gateway and goSession.ProfileFetcher against
// the service's JSON API rooted at GatewayConfig.BaseURL:
//
//	POST /auth/authenticate            {"username","password"} -> {"jwt"}
//	POST /customers                    registration profile    -> {"jwt",...}
//	GET  /auth/validate-token?jwt=...  -> true | false
//	POST /auth/logout                  bearer token
//	GET  /auth/profile                 bearer token            -> user profile
//
// Failures are classified for the Store:
//
//   - 4xx responses become an *APIError matching goSession.ErrCredentialRejected
//   - 5xx responses, transport errors and unusable bodies match
//     goSession.ErrGatewayUnavailable
//
// The client never retries. Bearer tokens are attached with an
// oauth2.StaticTokenSource so the Authorization header is built in one place.
package gateway
