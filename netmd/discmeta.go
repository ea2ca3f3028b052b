package netmd

import "fmt"

// DiscFlags reads the RootTD disc flags byte.
func (i *Interface) DiscFlags() (byte, error) {
	var out byte
	err := i.withDescriptor(RootTD, actionOpenRead, func() error {
		reply, err := i.send("00 18 01 80 01 00 30 80 04", false)
		if err != nil {
			return err
		}
		vals, err := scanReply(reply, "18 01 00 30 80 04 %b")
		if err != nil {
			return err
		}
		out = byte(vals[0].(uint64))
		return nil
	})
	return out, err
}

// DiscFlagSet reads and decodes the RootTD disc flags byte.
func (i *Interface) DiscFlagSet() (DiscFlagSet, error) {
	raw, err := i.DiscFlags()
	if err != nil {
		return DiscFlagSet{}, err
	}
	return DecodeDiscFlags(raw), nil
}

// TrackCount reads the number of recorded tracks.
func (i *Interface) TrackCount() (int, error) {
	var out int
	err := i.withDescriptor(AudioContentsTD, actionOpenRead, func() error {
		reply, err := i.send("00 18 02 80 01 00 10 00", false)
		if err != nil {
			return err
		}
		vals, err := scanReply(reply, "18 02 00 10 00 %w")
		if err != nil {
			return err
		}
		out = int(vals[0].(uint64))
		return nil
	})
	return out, err
}

// rawTimeFromBCD decodes a 5-byte BCD time tuple (hours, minutes,
// seconds, and a 2-byte frame count) as scanned by %B %B %B %W.
func rawTimeFromBCD(h, m, s, f uint64) RawTime {
	return RawTime{Hours: h, Minutes: m, Seconds: s, Frames: f}
}

// DiscCapacity reads used/total/left recording time. Sharp devices are
// known to report capacity relative to the currently selected recording
// mode; the halve-until-plausible loop below is prior-art behavior kept
// unchanged per spec.md §9.
func (i *Interface) DiscCapacity() (used, total, left RawTime, err error) {
	err = i.withDescriptor(RootTD, actionOpenRead, func() error {
		reply, serr := i.send("00 18 06 80 01 00 30 80 03 00", false)
		if serr != nil {
			return serr
		}
		vals, serr := scanReply(reply, "18 06 00 30 80 03 00 %B %B %B %W %B %B %B %W %B %B %B %W")
		if serr != nil {
			return serr
		}
		used = rawTimeFromBCD(vals[0].(uint64), vals[1].(uint64), vals[2].(uint64), vals[3].(uint64))
		total = rawTimeFromBCD(vals[4].(uint64), vals[5].(uint64), vals[6].(uint64), vals[7].(uint64))
		left = rawTimeFromBCD(vals[8].(uint64), vals[9].(uint64), vals[10].(uint64), vals[11].(uint64))
		return nil
	})
	if err != nil {
		return RawTime{}, RawTime{}, RawTime{}, err
	}
	const implausibleCeiling = 512 * 60 * 82
	for used.FramesTotal() > implausibleCeiling {
		used = halveTime(used)
	}
	for total.FramesTotal() > implausibleCeiling {
		total = halveTime(total)
	}
	for left.FramesTotal() > implausibleCeiling {
		left = halveTime(left)
	}
	return used, total, left, nil
}

func halveTime(t RawTime) RawTime {
	total := t.FramesTotal() / 2
	h := total / (512 * 3600)
	total -= h * 512 * 3600
	m := total / (512 * 60)
	total -= m * 512 * 60
	s := total / 512
	f := total % 512
	return RawTime{Hours: h, Minutes: m, Seconds: s, Frames: f}
}

// TrackLengths reads each track's recorded duration.
func (i *Interface) TrackLengths(count int) ([]RawTime, error) {
	out := make([]RawTime, count)
	err := i.withDescriptor(AudioContentsTD, actionOpenRead, func() error {
		for n := 0; n < count; n++ {
			reply, serr := i.send("00 18 07 80 01 00 10 10 %w", false, uint64(n))
			if serr != nil {
				return serr
			}
			vals, serr := scanReply(reply, "18 07 00 10 10 %w %B %B %B %W")
			if serr != nil {
				return serr
			}
			out[n] = rawTimeFromBCD(vals[1].(uint64), vals[2].(uint64), vals[3].(uint64), vals[4].(uint64))
		}
		return nil
	})
	return out, err
}

// TrackEncoding reads a track's codec and channel layout.
func (i *Interface) TrackEncoding(track int) (Encoding, Channels, error) {
	reply, err := i.send("00 18 08 80 01 00 10 11 %w", false, uint64(track))
	if err != nil {
		return 0, 0, err
	}
	vals, err := scanReply(reply, "18 08 00 10 11 %w %b %b")
	if err != nil {
		return 0, 0, err
	}
	return decodeTrackEncoding(byte(vals[1].(uint64)), byte(vals[2].(uint64)))
}

// TrackFlags reads a track's copy-protection flag byte.
func (i *Interface) TrackFlags(track int) (TrackFlag, error) {
	reply, err := i.send("00 18 08 80 01 00 10 12 %w", false, uint64(track))
	if err != nil {
		return 0, err
	}
	vals, err := scanReply(reply, "18 08 00 10 12 %w %b")
	if err != nil {
		return 0, err
	}
	flagByte := byte(vals[1].(uint64))
	if flagByte == 0 {
		return TrackUnprotected, nil
	}
	return TrackProtected, nil
}

// MoveTrack relocates the track at src to dst, renumbering in between.
func (i *Interface) MoveTrack(src, dst int) error {
	_, err := i.send("00 18 43 ff 00 00 %w %w", false, uint64(src), uint64(dst))
	return err
}

// EraseTrack deletes the track at the given index.
func (i *Interface) EraseTrack(track int) error {
	_, err := i.send("00 18 40 ff 01 00 %w", false, uint64(track))
	return err
}

// EraseDisc erases the entire disc.
func (i *Interface) EraseDisc() error {
	_, err := i.send("00 18 40 ff 00 00 00 00", false)
	return err
}

func invalidDiscFormat(codec byte) error {
	return newErr(KindInvalidDiscFormat, fmt.Sprintf("unrecognized disc format codec byte 0x%02x", codec))
}
