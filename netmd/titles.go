package netmd

import (
	"github.com/bdube/netmd/title"
)

// sharpVendorID is Sharp's USB vendor ID; Sharp firmware stores the disc
// title under AudioUTOC1TD instead of DiscTitleTD (spec.md §4.4).
const sharpVendorID = 0x04dd

const titleChunkCap = 28

func (i *Interface) titleDescriptor() Descriptor {
	if i.Device.VendorID == sharpVendorID {
		return AudioUTOC1TD
	}
	return DiscTitleTD
}

func wcharFlag(wide bool) uint64 {
	if wide {
		return 1
	}
	return 0
}

// rawTitleBlob reads the full delimited title string in chunkCap-byte
// windows, accounting for the 6-byte header that counts against the
// first chunk's requested window only.
func (i *Interface) rawTitleBlob(d Descriptor, wide bool) ([]byte, error) {
	var raw []byte
	err := i.withDescriptor(d, actionOpenRead, func() error {
		offset := 0
		first := true
		for {
			want := titleChunkCap
			if first {
				want -= 6
			}
			reply, err := i.send("00 18 06 80 01 00 30 00 0a 00 %b 00 %w 00 %w 00 00",
				false, wcharFlag(wide), uint64(offset), uint64(want))
			if err != nil {
				return err
			}
			vals, err := scanReply(reply, "18 06 00 30 00 0a 00 %b 00 %w 00 %w 00 00 %*")
			if err != nil {
				return err
			}
			chunk, _ := vals[len(vals)-1].([]byte)
			raw = append(raw, chunk...)
			offset += len(chunk)
			first = false
			if len(chunk) < want {
				return nil
			}
		}
	})
	return raw, err
}

// RawDiscTitle reads and decodes the composite disc/group title string
// (half-width unless wide is set).
func (i *Interface) RawDiscTitle(wide bool) (string, error) {
	raw, err := i.rawTitleBlob(i.titleDescriptor(), wide)
	if err != nil {
		return "", err
	}
	decoded, err := title.DecodeShiftJIS(raw)
	if err != nil {
		return "", wrapErr(KindTitleError, err)
	}
	return decoded, nil
}

// discTitleAndGroups decomposes the raw disc title string into a disc
// title and its groups, claiming track indices 0..trackCount-1.
func (i *Interface) discTitleAndGroups(wide bool, trackCount int) (string, []title.Group, error) {
	decoded, err := i.RawDiscTitle(wide)
	if err != nil {
		return "", nil, err
	}
	discTitle, groups, err := title.ParseDiscTitle(decoded, wide, trackCount)
	if err != nil {
		return "", nil, wrapErr(KindGroup, err)
	}
	return discTitle, groups, nil
}

// trackTitleDescriptor selects the per-track title region: Sharp stores
// under AudioUTOC1TD like the disc title, everyone else uses AudioUTOC4TD.
func (i *Interface) trackTitleDescriptor() Descriptor {
	if i.Device.VendorID == sharpVendorID {
		return AudioUTOC1TD
	}
	return AudioUTOC4TD
}

// TrackTitle reads one track's title.
func (i *Interface) TrackTitle(track int, wide bool) (string, error) {
	var out string
	err := i.withDescriptor(i.trackTitleDescriptor(), actionOpenRead, func() error {
		reply, err := i.send("00 18 07 80 01 00 30 00 0a 00 %b 00 %w 00 1c 00 00",
			false, wcharFlag(wide), uint64(track))
		if err != nil {
			return err
		}
		vals, err := scanReply(reply, "18 07 00 30 00 0a 00 %b 00 %w 00 1c 00 00 %*")
		if err != nil {
			return err
		}
		raw, _ := vals[len(vals)-1].([]byte)
		decoded, derr := title.DecodeShiftJIS(raw)
		if derr != nil {
			return wrapErr(KindTitleError, derr)
		}
		out = decoded
		return nil
	})
	return out, err
}

// TrackTitles reads the titles for every index in tracks.
func (i *Interface) TrackTitles(tracks []int, wide bool) ([]string, error) {
	out := make([]string, len(tracks))
	for n, t := range tracks {
		title, err := i.TrackTitle(t, wide)
		if err != nil {
			return nil, err
		}
		out[n] = title
	}
	return out, nil
}

// writeTitleBlob writes a title string region, then cycles the
// descriptor closed/open to force non-Sharp firmware to reload its
// in-memory TOC (spec.md §4.4 "close-open-close reload cycle").
func (i *Interface) writeTitleBlob(d Descriptor, wide bool, raw []byte) error {
	err := i.withDescriptor(d, actionOpenWrite, func() error {
		_, err := i.send("00 18 06 80 01 00 30 00 0a 00 %b 00 00 00 %w 00 00 %x",
			true, wcharFlag(wide), uint64(len(raw)), raw)
		return err
	})
	if err != nil {
		return err
	}
	if d != AudioUTOC1TD {
		if err := i.changeDescriptorState(d, actionOpenRead); err != nil {
			return err
		}
		return i.changeDescriptorState(d, actionClose)
	}
	return nil
}

// SetDiscTitle overwrites the disc title, re-composing the groups passed
// in around the new title and enforcing the 255-cell budget — an
// overflowing encode is dropped (empty string), never truncated
// (spec.md §4.7, §8 property 3). The groups already stored on the disc
// are not read: a nil groups argument writes a title with no group data.
func (i *Interface) SetDiscTitle(newTitle string, groups []title.Group, wide bool) error {
	half := newTitle
	if wide {
		half = title.FullWidth(newTitle)
	} else {
		half = title.HalfWidth(newTitle)
	}
	composed, ok := title.CompileDiscTitle(half, groups, wide)
	if !ok {
		composed = ""
	}
	raw, err := title.EncodeShiftJIS(composed)
	if err != nil {
		raw, err = title.EncodeShiftJIS(title.SanitizeASCII(composed))
		if err != nil {
			return wrapErr(KindTitleError, err)
		}
	}
	return i.writeTitleBlob(i.titleDescriptor(), wide, raw)
}

// SetTrackTitle overwrites one track's title.
func (i *Interface) SetTrackTitle(track int, newTitle string, wide bool) error {
	normalized := newTitle
	if wide {
		normalized = title.FullWidth(newTitle)
	} else {
		normalized = title.HalfWidth(newTitle)
	}
	raw, err := title.EncodeShiftJIS(normalized)
	if err != nil {
		raw, err = title.EncodeShiftJIS(title.SanitizeASCII(normalized))
		if err != nil {
			return wrapErr(KindTitleError, err)
		}
	}
	return i.writeTitleBlob(i.trackTitleDescriptor(), wide, raw)
}
