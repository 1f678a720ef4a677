// Package interactions authenticates and answers Discord [interactions]
// received over HTTP: payload parsing, [Ed25519 request verification],
// command key derivation, and canned responses stored in configuration.
//
// [interactions]: https://discord.com/developers/docs/interactions/receiving-and-responding
// [Ed25519 request verification]: https://discord.com/developers/docs/interactions/receiving-and-responding#security-and-authorization
package interactions
