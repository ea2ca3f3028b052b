package netmd

// Descriptor is a named structured region on the device that must be
// bracketed with Open/Close around reads and writes (spec.md §4.3).
type Descriptor int

const (
	DiscTitleTD Descriptor = iota
	AudioUTOC1TD
	AudioUTOC4TD
	DSTID
	AudioContentsTD
	RootTD
	DiscSubunitIdentifier
	OperatingStatusBlock
)

// selector is the fixed byte sequence identifying a descriptor.
func (d Descriptor) selector() []byte {
	switch d {
	case DiscTitleTD:
		return []byte{0x10, 0x18, 0x01}
	case AudioUTOC1TD:
		return []byte{0x10, 0x18, 0x02}
	case AudioUTOC4TD:
		return []byte{0x10, 0x18, 0x03}
	case DSTID:
		return []byte{0x10, 0x18, 0x04}
	case AudioContentsTD:
		return []byte{0x10, 0x10, 0x01}
	case RootTD:
		return []byte{0x10, 0x10, 0x00}
	case DiscSubunitIdentifier:
		return []byte{0x00}
	case OperatingStatusBlock:
		return []byte{0x80, 0x00}
	}
	return nil
}

func (d Descriptor) String() string {
	switch d {
	case DiscTitleTD:
		return "DiscTitleTD"
	case AudioUTOC1TD:
		return "AudioUTOC1TD"
	case AudioUTOC4TD:
		return "AudioUTOC4TD"
	case DSTID:
		return "DSTID"
	case AudioContentsTD:
		return "AudioContentsTD"
	case RootTD:
		return "RootTD"
	case DiscSubunitIdentifier:
		return "DiscSubunitIdentifier"
	case OperatingStatusBlock:
		return "OperatingStatusBlock"
	}
	return "Descriptor(unknown)"
}

type descriptorAction byte

const (
	actionOpenRead  descriptorAction = 1
	actionOpenWrite descriptorAction = 3
	actionClose     descriptorAction = 0
)

// changeDescriptorState issues the "change descriptor state" command
// (AV/C opcode 0x1808) bracketing every structured read/write.
func (i *Interface) changeDescriptorState(d Descriptor, action descriptorAction) error {
	sel := d.selector()
	_, err := i.send("00 18 08 80 01 00 00 %x %b", false, sel, uint64(action))
	return err
}

// withDescriptor opens d with action, runs fn, and always closes d
// afterward, returning fn's error if fn failed and the close error
// otherwise.
func (i *Interface) withDescriptor(d Descriptor, action descriptorAction, fn func() error) error {
	if err := i.changeDescriptorState(d, action); err != nil {
		return err
	}
	ferr := fn()
	cerr := i.changeDescriptorState(d, actionClose)
	if ferr != nil {
		return ferr
	}
	return cerr
}
