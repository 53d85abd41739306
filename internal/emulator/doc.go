// Package emulator is an in-memory stand-in for an NE101 camera's
// configuration server.
//
// It serves every /api/v1 endpoint the client uses from seeded parameter
// groups, and it reproduces the one property of the real device that the
// client is built around: the embedded HTTP server cannot handle two
// requests at once. A request that arrives while another is being served is
// answered 503 and counted as a violation, so tests can assert the client
// never overlaps requests.
//
// Failures can be injected per endpoint, either as an HTTP status with a
// JSON body or as a well-formed acknowledgement carrying a failure result
// code.
package emulator
