// Package userauth contains the HTTP endpoints that let a user log in with their
// Twitter account, using the OAuth 1.0a flow described here:
//
// - https://developer.twitter.com/en/docs/authentication/guides/log-in-with-twitter
//
// GET /login/start obtains a request token from Twitter, stashes the token secret in a
// pending store (the secret must never reach the browser), sets a short-lived cookie
// naming the request token, and redirects the user to Twitter.
//
// Once the user has signed in on Twitter and granted access, Twitter redirects them to
// GET /login/finish with the request token and a single-use verifier. We check the
// request token against the cookie, claim the pending credential, and hand both to the
// login bridge, which exchanges them for an access token, reads the user's profile, and
// logs them in as "twitter/<screen_name>". A successful login sets the session cookie
// and redirects to the configured success URL; any failure redirects to the login page
// with an 'error' query param. There are no retries: the verifier can't be reused, so
// the user must start over.
//
// GET /session returns the current session as JSON, and DELETE /session logs out.
package userauth
