package netmd

import (
	"fmt"

	"github.com/bdube/netmd/internal/bitutil"
)

// RawTime is a disc/track timecode where one frame is 1/512 second.
type RawTime struct {
	Hours, Minutes, Seconds, Frames uint64
}

// FramesTotal returns the timecode expressed as a frame count.
func (t RawTime) FramesTotal() uint64 {
	return ((t.Hours*60+t.Minutes)*60+t.Seconds)*512 + t.Frames
}

func (t RawTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d+%03d", t.Hours, t.Minutes, t.Seconds, t.Frames)
}

// Channels is a track's channel layout.
type Channels int

const (
	ChannelsMono Channels = iota
	ChannelsStereo
)

func (c Channels) String() string {
	if c == ChannelsMono {
		return "mono"
	}
	return "stereo"
}

// Encoding is a track's on-disc audio codec.
type Encoding int

const (
	EncodingSP Encoding = iota
	EncodingLP2
	EncodingLP4
)

func (e Encoding) String() string {
	switch e {
	case EncodingSP:
		return "SP"
	case EncodingLP2:
		return "LP2"
	case EncodingLP4:
		return "LP4"
	}
	return "Encoding(unknown)"
}

// decodeTrackEncoding maps the raw on-wire byte to (Encoding, Channels)
// per spec.md §4.4: 0x90/0x92/0x93 -> SP/LP2/LP4; 0x00/0x01 -> stereo/mono.
func decodeTrackEncoding(codecByte, chanByte byte) (Encoding, Channels, error) {
	var enc Encoding
	switch codecByte {
	case 0x90:
		enc = EncodingSP
	case 0x92:
		enc = EncodingLP2
	case 0x93:
		enc = EncodingLP4
	default:
		return 0, 0, newErr(KindInvalidEncoding, fmt.Sprintf("unrecognized codec byte 0x%02x", codecByte))
	}
	var ch Channels
	switch chanByte {
	case 0x00:
		ch = ChannelsStereo
	case 0x01:
		ch = ChannelsMono
	default:
		return 0, 0, newErr(KindInvalidEncoding, fmt.Sprintf("unrecognized channel byte 0x%02x", chanByte))
	}
	return enc, ch, nil
}

// TrackFlag is a track's copy-protection flag.
type TrackFlag int

const (
	TrackUnprotected TrackFlag = iota
	TrackProtected
)

func (f TrackFlag) String() string {
	if f == TrackProtected {
		return "protected"
	}
	return "unprotected"
}

// Bit positions of the named flags within the RootTD disc flags byte.
const (
	discFlagWritableBit       = 4
	discFlagWriteProtectedBit = 6
)

// DiscFlagSet is the decoded form of the raw disc_flags byte.
type DiscFlagSet struct {
	Writable       bool
	WriteProtected bool
}

// DecodeDiscFlags splits the raw disc_flags byte into its named bits.
func DecodeDiscFlags(raw byte) DiscFlagSet {
	return DiscFlagSet{
		Writable:       bitutil.GetBit(raw, discFlagWritableBit),
		WriteProtected: bitutil.GetBit(raw, discFlagWriteProtectedBit),
	}
}

// Track is one entry in a disc's audio contents.
type Track struct {
	Index          int
	Title          string
	FullWidthTitle string
	Duration       RawTime
	Channels       Channels
	Encoding       Encoding
	Flag           TrackFlag
}

// Group is a contiguous run of track indices sharing a title, or the
// untitled default group that every disc has.
type Group struct {
	Index          int
	Title          *string
	FullWidthTitle *string
	Tracks         []int
}

// Disc is the aggregate disc-level state: title, write protection,
// capacity, and the track/group partition.
type Disc struct {
	Title          string
	FullWidthTitle string
	Writable       bool
	WriteProtected bool
	Used           RawTime
	Total          RawTime
	Left           RawTime
	Groups         []Group
}

// OperatingStatus is the device's high-level player state (spec.md §4.4).
type OperatingStatus uint16

const (
	StatusReady            OperatingStatus = 50687
	StatusPlaying          OperatingStatus = 50037
	StatusPaused           OperatingStatus = 50045
	StatusFastForward      OperatingStatus = 49983
	StatusRewind           OperatingStatus = 49999
	StatusReadingTOC       OperatingStatus = 65315
	StatusNoDisc           OperatingStatus = 65296
	StatusDiscBlank        OperatingStatus = 65535
	StatusReadyForTransfer OperatingStatus = 65319
)

func (s OperatingStatus) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	case StatusFastForward:
		return "FastForward"
	case StatusRewind:
		return "Rewind"
	case StatusReadingTOC:
		return "ReadingTOC"
	case StatusNoDisc:
		return "NoDisc"
	case StatusDiscBlank:
		return "DiscBlank"
	case StatusReadyForTransfer:
		return "ReadyForTransfer"
	}
	return fmt.Sprintf("OperatingStatus(%d)", uint16(s))
}

// PlaybackAction selects the transport-control direction for Play-family
// commands.
type PlaybackAction int

const (
	ActionPlay PlaybackAction = iota
	ActionPause
	ActionFastForward
	ActionRewind
)

func (a PlaybackAction) code() byte {
	switch a {
	case ActionPlay:
		return 0x75
	case ActionPause:
		return 0x7d
	case ActionFastForward:
		return 0x39
	case ActionRewind:
		return 0x49
	}
	return 0
}

// TrackChange selects the direction for the track-change command. The
// earlier revision of the reference implementation this module is
// grounded on sent Next for both Previous and Restart; the corrected
// codes below are preserved deliberately (spec.md §9 Open Questions).
type TrackChange int

const (
	TrackNext TrackChange = iota
	TrackPrevious
	TrackRestart
)

func (t TrackChange) code() byte {
	switch t {
	case TrackNext:
		return 0x01
	case TrackPrevious:
		return 0x02
	case TrackRestart:
		return 0x00
	}
	return 0
}

// WireFormat is the codec/bitrate tag used when uploading a track to the
// device (distinct from the on-disc DiscFormat).
type WireFormat int

const (
	WireFormatPcm WireFormat = iota
	WireFormatL105kbps
	WireFormatLP2
	WireFormatLP4
)

// FrameSize returns the audio frame size in bytes for this wire format.
func (w WireFormat) FrameSize() int {
	switch w {
	case WireFormatPcm:
		return 2048
	case WireFormatL105kbps:
		return 192
	case WireFormatLP2:
		return 152
	case WireFormatLP4:
		return 96
	}
	return 0
}

// DiscFormat is the on-disc codec tag, distinct from WireFormat.
type DiscFormat int

const (
	DiscFormatSPStereo DiscFormat = iota
	DiscFormatLP2
	DiscFormatLP4
	DiscFormatSPMono
)

// DiscFormat returns the on-disc DiscFormat this wire format is recorded
// as (spec.md §3).
func (w WireFormat) DiscFormat() DiscFormat {
	switch w {
	case WireFormatPcm:
		return DiscFormatSPStereo
	case WireFormatL105kbps, WireFormatLP2:
		return DiscFormatLP2
	case WireFormatLP4:
		return DiscFormatLP4
	}
	return DiscFormatSPStereo
}

// decodeUploadCodec maps save_track_to_array's codec byte to a DiscFormat
// per spec.md §4.4: codec&6 -> {0:LP4, 2:LP2, 4:SPMono, 6:SPStereo}. Bit 0
// is reserved and must be clear; a set bit indicates a codec byte the
// device never actually produces, surfaced as KindInvalidDiscFormat
// rather than silently mapped.
func decodeUploadCodec(codec byte) (DiscFormat, error) {
	if codec&1 != 0 {
		return 0, invalidDiscFormat(codec)
	}
	switch codec & 6 {
	case 0:
		return DiscFormatLP4, nil
	case 2:
		return DiscFormatLP2, nil
	case 4:
		return DiscFormatSPMono, nil
	default:
		return DiscFormatSPStereo, nil
	}
}
