package main

// OpCode identifies the payload shape of a MatchData frame exchanged over
// a session match, mirroring game.go OpCode convention.
const (
	// OpCodeCommand is sent client -> server: one JSON-encoded clientMessage.
	OpCodeCommand int64 = 1
	// OpCodeResponse is sent server -> client: one JSON-encoded serverMessage.
	OpCodeResponse int64 = 2
	// OpCodeMatchFound is sent server -> client: one JSON-encoded
	// wireMatchFound, delivered at most once per matchmaking pairing.
	OpCodeMatchFound int64 = 3
)
