// Package account provides account security primitives: brute-force lock
// counters, email confirmation and password reset link lifecycles, and JWT
// session tokens with server-side revocation.
//
// Locking:
//   - Accounts carry a failed login counter and a lock deadline persisted
//     via Bun. The counter increments atomically in the store; reaching the
//     threshold engages a timed lock and resets the counter. Expired locks
//     are cleared lazily on the next check, no sweeper required.
//
// Links:
//   - Email confirmation and password reset both ride single-use random
//     link tokens with an expiry deadline. Granting a link replaces any
//     outstanding one; presenting a link after confirmation reports the
//     confirmed state without mutation so clients can retry safely.
//
// Tokens:
//   - TokenService mints HS-family JWTs and keeps exactly one valid token
//     per account on file. Load verifies the signature and expiry, then the
//     account's lock and confirmation state, and finally requires an exact
//     match against the token on file; clearing that column revokes every
//     outstanding token at once.
//
// Events:
//   - EventSink is a light-weight audit emitter describing registration,
//     login, confirmation, and password events. Sinks run best-effort
//     (errors are logged) so you can forward to a database or queue without
//     blocking the security flow.
package account
