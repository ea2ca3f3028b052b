// Package deviceid holds the static table of recognized NetMD/Hi-MD USB
// vendor/product IDs used to match and name a connected recorder.
//
// The table is data, not protocol: it carries no bit-significant meaning
// and is consulted only for device matching and display (spec.md §6).
package deviceid

import "fmt"

// ID identifies a NetMD-family USB device by its vendor and product ID.
type ID struct {
	VendorID  uint16
	ProductID uint16

	// Name is a friendly display name, empty if unknown.
	Name string
}

// String renders the ID the way a lab bench tool would print it.
func (d ID) String() string {
	if d.Name == "" {
		return fmt.Sprintf("unknown NetMD device %04x:%04x", d.VendorID, d.ProductID)
	}
	return fmt.Sprintf("%s (%04x:%04x)", d.Name, d.VendorID, d.ProductID)
}

// Table is the process-wide, immutable set of recognized devices. It is
// derived once from the literal list below.
var Table = buildTable()

func buildTable() []ID {
	out := make([]ID, len(known))
	copy(out, known)
	return out
}

// Lookup returns the entry matching vid/pid. The second return is false
// if the pair is not in Table; callers should still attempt to open and
// drive the device, since many working clones under-report themselves.
func Lookup(vid, pid uint16) (ID, bool) {
	for _, d := range Table {
		if d.VendorID == vid && d.ProductID == pid {
			return d, true
		}
	}
	return ID{VendorID: vid, ProductID: pid}, false
}

// Filters returns the (vendor, product) pairs in Table, suitable for
// building a USB hotplug/enumeration filter list.
func Filters() [][2]uint16 {
	out := make([][2]uint16, len(Table))
	for i, d := range Table {
		out[i] = [2]uint16{d.VendorID, d.ProductID}
	}
	return out
}

// known is the literal recognized-device list. Values are taken from the
// long-standing libnetmd/netmd-exchange vendor/product catalog; they are
// not derived or computed and must not be "tidied".
var known = []ID{
	{0x04dd, 0x7202, "Sharp IM-MT899H"},
	{0x04dd, 0x9013, "Sharp IM-DR400"},
	{0x04dd, 0x9014, "Sharp IM-DR80"},
	{0x054c, 0x0034, "Sony PCLK-XX"},
	{0x054c, 0x0036, "Sony"},
	{0x054c, 0x0075, "Sony MZ-N1"},
	{0x054c, 0x007c, "Sony"},
	{0x054c, 0x0080, "Sony LAM-1"},
	{0x054c, 0x0081, "Sony MDS-JB980"},
	{0x054c, 0x0084, "Sony MZ-N505"},
	{0x054c, 0x0085, "Sony MZ-S1"},
	{0x054c, 0x0086, "Sony MZ-N707"},
	{0x054c, 0x008e, "Sony CMT-C7NT"},
	{0x054c, 0x0097, "Sony PCGA-MDN1"},
	{0x054c, 0x00ad, "Sony CMT-L7HD"},
	{0x054c, 0x00c6, "Sony MZ-N10"},
	{0x054c, 0x00c7, "Sony MZ-N910"},
	{0x054c, 0x00c8, "Sony MZ-N710/NE810"},
	{0x054c, 0x00c9, "Sony MZ-N510/610"},
	{0x054c, 0x00ca, "Sony MZ-NE410/NF810"},
	{0x054c, 0x00eb, "Sony MZ-NE810/NE910"},
	{0x054c, 0x0101, "Sony LAM"},
	{0x054c, 0x0113, "Aiwa AM-NX1"},
	{0x054c, 0x013f, "Sony MDS-S500"},
	{0x054c, 0x014c, "Aiwa AM-NX9"},
	{0x054c, 0x0197, "Sony MZ-NH1"},
	{0x054c, 0x0198, "Sony MZ-NH3D"},
	{0x054c, 0x019c, "Sony MZ-NH900"},
	{0x054c, 0x019d, "Sony MZ-NH700/NH800"},
	{0x054c, 0x019e, "Sony MZ-NH600"},
	{0x054c, 0x01e9, "Sony MZ-DH10P"},
	{0x054c, 0x0219, "Sony MZ-RH10"},
	{0x054c, 0x021a, "Sony MZ-RH710/910"},
	{0x054c, 0x021b, "Sony CMT-AH10"},
	{0x054c, 0x022c, "Sony CMT-AH10"},
	{0x054c, 0x023c, "Sony DS-HMD1"},
	{0x054c, 0x0286, "Sony MZ-RH1"},
	{0x054c, 0x011a, "Sony CMT-M333NT"},
	{0x0b28, 0x1004, "Kenwood MDX-J9"},
	{0x04da, 0x23b3, "Panasonic SJ-MR250"},
	{0x04da, 0x23b6, "Panasonic SJ-MR270"},
	{0x0584, 0x0010, "Sharp IM-MT880H/IM-DR420/DR580"},
	{0x0584, 0x0011, "Sharp IM-DR420"},
	{0x0584, 0x0012, "Sharp IM-DR80"},
}
