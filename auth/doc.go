// Package auth provides the authentication and authorization pipeline:
// account signup and signin, bcrypt password hashing, JWT issuance and
// verification, and the fiber handlers that guard routes.
//
// Tokens:
//   - TokenServiceImpl signs HS256 tokens carrying uid, email, username and
//     role. Previous keys can be kept for verification by kid while a new
//     signing key rolls out.
//   - RouteAuthenticator reads the token from exactly one transport, the
//     Authorization header or a named cookie, and reloads the live user
//     named by the email claim. A deleted account fails with
//     ErrPrincipalNotFound even while its token is unexpired.
//
// Authorization:
//   - RouteAccess declares the roles a route admits and Authorize applies
//     it to the request principal.
//   - CheckOwnership compares a resource owner to the principal. Admins may
//     delete resources they do not own but never update them.
//
// Activity sinks:
//   - ActivitySink receives signup and login events. Sinks run best-effort
//     (errors are logged) so they never block authentication.
package auth
