package main

import (
	"log"
	"time"

	"github.com/google/gousb"

	"github.com/bdube/netmd/deviceid"
	"github.com/bdube/netmd/netmd"
	"github.com/bdube/netmd/transport"
)

// openDevice finds and opens the configured (or first recognized) NetMD
// device and returns a ready-to-use Interface plus a cleanup func the
// caller must defer.
func openDevice(c Config) (*netmd.Interface, func(), error) {
	candidates := deviceid.Table
	if c.VendorID != 0 || c.ProductID != 0 {
		id, _ := deviceid.Lookup(c.VendorID, c.ProductID)
		candidates = []deviceid.ID{id}
	}
	var lastErr error
	for _, id := range candidates {
		tr, cleanup, err := transport.OpenWithRetry(gousb.ID(id.VendorID), gousb.ID(id.ProductID), 2*time.Second)
		if err != nil {
			lastErr = err
			continue
		}
		return netmd.New(tr, id), cleanup, nil
	}
	if lastErr == nil {
		lastErr = errNoDevice
	}
	return nil, nil, lastErr
}

var errNoDevice = errDeviceNotFound{}

type errDeviceNotFound struct{}

func (errDeviceNotFound) Error() string { return "netmdctl: no recognized NetMD device found" }

func mustOpenDevice(c Config) (*netmd.Interface, func()) {
	iface, cleanup, err := openDevice(c)
	if err != nil {
		log.Fatalf("netmdctl: %v", err)
	}
	return iface, cleanup
}
