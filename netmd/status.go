package netmd

// StatusBlock is the raw 9-byte OperatingStatusBlock reply.
type StatusBlock [9]byte

// DiscPresent reports whether the device sees media inserted.
func (s StatusBlock) DiscPresent() bool { return s[4] == 0x40 }

// Status reads the OperatingStatusBlock descriptor.
func (i *Interface) Status() (StatusBlock, error) {
	var out StatusBlock
	err := i.withDescriptor(OperatingStatusBlock, actionOpenRead, func() error {
		reply, err := i.send("00 18 09 80 01 00 ff", false)
		if err != nil {
			return err
		}
		vals, err := scanReply(reply, "18 09 00 %*")
		if err != nil {
			return err
		}
		body, _ := vals[0].([]byte)
		if len(body) < len(out) {
			return newErr(KindInvalidStatus, "short status block")
		}
		copy(out[:], body[:len(out)])
		return nil
	})
	return out, err
}

// OperatingStatus reads the device's high-level player state.
func (i *Interface) OperatingStatus() (OperatingStatus, error) {
	reply, err := i.send("00 18 09 80 01 00 00", false)
	if err != nil {
		return 0, err
	}
	vals, err := scanReply(reply, "18 09 00 %w")
	if err != nil {
		return 0, err
	}
	return OperatingStatus(vals[0].(uint64)), nil
}

// Position is the current playback position.
type Position struct {
	Track          int
	Hour           uint64
	Minute, Second uint64
	Frame          uint64
}

// Position reads the current playback position. Per spec.md §7, a
// Rejected reply (the device is simply idle) yields a zeroed result
// instead of an error.
func (i *Interface) Position() (Position, error) {
	reply, err := i.send("00 18 09 80 01 10 00", false)
	if ie, ok := err.(*InterfaceError); ok && ie.Kind == KindRejected {
		return Position{}, nil
	}
	if err != nil {
		return Position{}, err
	}
	vals, err := scanReply(reply, "18 09 10 00 %w %W %W %W %W") // track, hour, minute, second, frame (BCD)
	if err != nil {
		return Position{}, err
	}
	return Position{
		Track:  int(vals[0].(uint64)),
		Hour:   vals[1].(uint64),
		Minute: vals[2].(uint64),
		Second: vals[3].(uint64),
		Frame:  vals[4].(uint64),
	}, nil
}
