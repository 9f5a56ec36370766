// Package password turns human secrets into storage-safe material.
//
// Two derivations are provided, both deliberately slow and salted:
//   - DeriveKey: scrypt over the NFC-normalized password with a caller-supplied
//     salt and tunable cost, hex-encoded. Useful when the salt is stored next
//     to the digest (or derived from an account identifier).
//   - Config.Hash / Config.Verify: Argon2id with a random salt in a PHC-like
//     self-describing string, with policy checks and anti-DoS bounds on verify.
//
// Neither is used for session secrets; those are high-entropy random values
// and are digested with the fast hasher in package token.
package password
