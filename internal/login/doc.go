// Package login maps Twitter identities onto local accounts.
//
// AccountChecker sits in the authentication chain and is consulted on every login: it
// rejects credentials with no username, and denies access to local accounts that have
// been blocked or are still pending activation.
//
// Bridge runs once Twitter has sent the user back to us: it completes the OAuth
// handshake, derives local credentials from the user's Twitter profile (username
// "twitter/<screen_name>", with a placeholder email address if Twitter doesn't share
// one), hands them to the login routine, and on success stores the user's access token
// pair as the "twitter.token.key" and "twitter.token.secret" parameters.
package login
