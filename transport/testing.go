package transport

// NewForTesting builds a Transport over caller-supplied control/bulk
// fakes, letting higher layers (netmd) exercise the response FSM without
// a physical device. Not used by production code paths.
func NewForTesting(ctrl controller, in bulkReader, out bulkWriter) *Transport {
	return &Transport{ctrl: ctrl, in: in, out: out}
}
