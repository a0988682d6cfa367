// Package session implements the login routine that Twitter identities are handed to,
// and the signed cookie that carries a logged-in session back to the browser.
//
// Host.Login consults each configured Authenticator in order; the first one that
// handles the login action decides whether the credentials are accepted. Accepted
// credentials that don't match any local account are registered on the spot. Sessions
// are stateless: each is encoded as an HS256-signed JWT by Issuer and stored in a
// cookie.
package session
