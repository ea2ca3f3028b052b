package netmd

// Play starts, pauses, fast-forwards, or rewinds playback, per action.
func (i *Interface) Play(action PlaybackAction) error {
	_, err := i.send("00 18 c3 ff %b 00 00 00", false, uint64(action.code()))
	return err
}

// Stop halts playback entirely.
func (i *Interface) Stop() error {
	_, err := i.send("00 18 c5 ff 00 00 00", false)
	return err
}

// GoToTrack seeks to the start of the given zero-based track index.
func (i *Interface) GoToTrack(track int) error {
	_, err := i.send("00 18 50 ff 10 00 01 %w", false, uint64(track))
	return err
}

// GoToTime seeks within track to the given timecode, hours/minutes/seconds
// BCD-encoded per spec.md §4.4.
func (i *Interface) GoToTime(track int, h, m, s, frames uint64) error {
	_, err := i.send("00 18 50 ff 30 00 01 %w %B %B %B %W", false,
		uint64(track), h, m, s, frames)
	return err
}

// TrackChange moves to the previous, next, or current (restart) track.
// The earlier revision's Previous/Restart-erroneously-sends-Next bug is
// not reproduced; see TrackChange's doc comment.
func (i *Interface) TrackChange(dir TrackChange) error {
	_, err := i.send("00 18 50 ff 00 %b", false, uint64(dir.code()))
	return err
}

// Acquire requests exclusive device lock, required around Download.
func (i *Interface) Acquire() error {
	_, err := i.send("00 ff 01 0c ff 00 00 00", false)
	return err
}

// Release gives up the exclusive device lock taken by Acquire.
func (i *Interface) Release() error {
	_, err := i.send("00 ff 01 00 ff 00 00 00", false)
	return err
}
