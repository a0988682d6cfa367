// Package oauth implements both legs of Twitter's OAuth 1.0a handshake, as described
// in https://developer.twitter.com/en/docs/authentication/oauth-1-0a/obtaining-user-access-tokens
//
// Begin obtains a temporary request token (signed with our app's consumer key and
// secret, and carrying the callback URL that Twitter should send the user back to) and
// resolves the URL that the user should be redirected to in order to grant access.
//
// Complete is called once Twitter redirects the user back to us with an oauth_verifier:
// it exchanges the request token, its secret, and the verifier for a long-lived access
// token, then uses that access token to fetch the account settings of the user who
// just logged in.
//
// Request signing is handled by github.com/dghubble/oauth1, which always sends OAuth
// parameters in the Authorization header rather than in the query string, as Twitter
// requires. Both legs are built from the same oauth1.Config so that the consumer
// credentials are guaranteed to match.
package oauth
