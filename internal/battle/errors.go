package battle

// ErrorKind is the internal engine error taxonomy (spec §7). It is
// distinct from the RPC-layer status codes the session/RPC glue maps it
// to (see Code below) because the mapping is not one-to-one: both
// InvalidCommand and OutOfTurn surface as PermissionDenied.
type ErrorKind string

const (
	KindInvalidCommand    ErrorKind = "invalid_command"
	KindOutOfTurn         ErrorKind = "out_of_turn"
	KindUnknown           ErrorKind = "unknown"
	KindPersistenceFailure ErrorKind = "persistence_failure"
	KindDisconnected      ErrorKind = "disconnected"
)

// Code maps an engine error kind to the external RPC status code name
// from the error-kind table below. Session/RPC glue uses this when translating a
// battle.Response carrying an error into the wire status.
func (k ErrorKind) Code() string {
	switch k {
	case KindInvalidCommand:
		return "PermissionDenied"
	case KindOutOfTurn:
		return "PermissionDenied"
	case KindUnknown:
		return "NotFound"
	case KindPersistenceFailure:
		return "DataLoss"
	case KindDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}
