package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/theckman/yacspin"

	"github.com/bdube/netmd/statussrv"
)

// Version is the version number, typically injected via ldflags with git build.
var Version = "dev"

func root() {
	fmt.Println(`netmdctl drives a Sony/Sharp/Panasonic/Aiwa/Kenwood NetMD or Hi-MD
recorder over USB.

Usage:
	netmdctl <command>

Commands:
	status    print the device's operating status and position
	disc      print disc title, track count, and track titles
	rename    set the disc title ("netmdctl rename <title>")
	serve     start a read-only JSON status HTTP server
	mkconf    write netmdctl.yml with default settings
	conf      print the active configuration
	version`)
}

func spin(suffix string) *yacspin.Spinner {
	cfg := yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[9],
		Suffix:          " " + suffix,
		SuffixAutoColon: true,
		StopCharacter:   "✓",
		StopColors:      []string{"fgGreen"},
	}
	s, err := yacspin.New(cfg)
	if err != nil {
		// spinner is cosmetic; never fail the command over it
		return nil
	}
	s.Start()
	return s
}

func stopSpin(s *yacspin.Spinner, msg string) {
	if s == nil {
		return
	}
	s.StopMessage(msg)
	s.Stop()
}

func cmdStatus(c Config) {
	iface, cleanup := mustOpenDevice(c)
	defer cleanup()
	s := spin("reading device status")
	op, err := iface.OperatingStatus()
	if err != nil {
		stopSpin(s, "failed")
		log.Fatalf("netmdctl: status: %v", err)
	}
	stopSpin(s, "done")
	color.Green("operating status: %s", op)
	pos, err := iface.Position()
	if err != nil {
		log.Fatalf("netmdctl: position: %v", err)
	}
	fmt.Printf("position: track %d @ %02d:%02d:%02d\n", pos.Track, pos.Hour, pos.Minute, pos.Second)
}

func cmdDisc(c Config) {
	iface, cleanup := mustOpenDevice(c)
	defer cleanup()
	s := spin("reading disc contents")
	title, err := iface.RawDiscTitle(false)
	if err != nil {
		stopSpin(s, "failed")
		log.Fatalf("netmdctl: disc title: %v", err)
	}
	count, err := iface.TrackCount()
	if err != nil {
		stopSpin(s, "failed")
		log.Fatalf("netmdctl: track count: %v", err)
	}
	stopSpin(s, "done")
	color.Cyan("%s (%d tracks)", title, count)
	tracks := make([]int, count)
	for i := range tracks {
		tracks[i] = i
	}
	titles, err := iface.TrackTitles(tracks, false)
	if err != nil {
		log.Fatalf("netmdctl: track titles: %v", err)
	}
	for n, t := range titles {
		fmt.Printf("  %3d  %s\n", n+1, t)
	}
}

func cmdRename(c Config, newTitle string) {
	iface, cleanup := mustOpenDevice(c)
	defer cleanup()
	s := spin("renaming disc")
	if err := iface.SetDiscTitle(newTitle, nil, false); err != nil {
		stopSpin(s, "failed")
		log.Fatalf("netmdctl: rename: %v", err)
	}
	stopSpin(s, "done")
}

func cmdServe(c Config) {
	iface, cleanup := mustOpenDevice(c)
	defer cleanup()
	srv := statussrv.New(iface, log.Default())
	log.Printf("netmdctl: serving read-only status at %s", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, srv.Router()))
}

func main() {
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	cmd := strings.ToLower(args[1])
	switch cmd {
	case "help":
		root()
	case "version":
		fmt.Printf("netmdctl version %s\n", Version)
	case "mkconf":
		writeDefaultConfig()
	case "conf":
		printConfig(loadConfig())
	case "status":
		cmdStatus(loadConfig())
	case "disc":
		cmdDisc(loadConfig())
	case "rename":
		if len(args) < 3 {
			log.Fatal("netmdctl: rename requires a title argument")
		}
		cmdRename(loadConfig(), strings.Join(args[2:], " "))
	case "serve":
		cmdServe(loadConfig())
	default:
		log.Fatalf("netmdctl: unknown command %q", cmd)
	}
}
