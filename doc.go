// Package accounts provides the credential and session authorization core
// for a two-tier (end-user / administrator) account platform: password
// hashing, JWT session issuance and verification, per-request authorization,
// and the registration/login/lifecycle rules that feed them.
//
// Principals:
//   - End users are account rows resolved through the Users repository. Every
//     authenticated request re-reads the account, so an administrator block
//     takes effect immediately for all outstanding tokens.
//   - The administrator is NOT an account row. It is a configuration-held
//     credential pair that authenticates by exact match and authorizes as a
//     synthetic AdminPrincipal carrying a fixed sentinel subject id. It is
//     never looked up in the store and cannot be blocked.
//
// Known limitation: tokens are self-contained and expire by time only. There
// is no server-side revocation list, so nothing force-expires an outstanding
// token early (for example after a password change). Blocking works despite
// this because the Authorizer performs a live store read per request.
package accounts
