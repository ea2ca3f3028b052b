package main

import (
	"log"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	yml "gopkg.in/yaml.v2"
)

// ConfigFileName is the default config file netmdctl looks for in the
// working directory, same convention as multiserver.yml.
var ConfigFileName = "netmdctl.yml"

// Config holds the settings netmdctl needs to find a device and, when
// running "serve", where to listen.
type Config struct {
	// VendorID/ProductID pick the USB device out of the attached set
	// when more than one NetMD-class device is plugged in. Both 0 means
	// "try each entry of deviceid.Table in order and use the first one
	// that opens."
	VendorID  uint16 `koanf:"VendorID" yaml:"VendorID"`
	ProductID uint16 `koanf:"ProductID" yaml:"ProductID"`

	// Addr is the listen address for "netmdctl serve".
	Addr string `koanf:"Addr" yaml:"Addr"`
}

// DefaultConfig mirrors the defaults a fresh "netmdctl mkconf" writes out.
var DefaultConfig = Config{Addr: ":8080"}

var k = koanf.New(".")

func loadConfig() Config {
	if err := k.Load(structs.Provider(DefaultConfig, "koanf"), nil); err != nil {
		log.Fatalf("netmdctl: loading defaults: %v", err)
	}
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		if !strings.Contains(err.Error(), "no such") {
			log.Fatalf("netmdctl: loading %s: %v", ConfigFileName, err)
		}
	}
	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		log.Fatalf("netmdctl: unmarshal config: %v", err)
	}
	return c
}

func writeDefaultConfig() {
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatalf("netmdctl: creating %s: %v", ConfigFileName, err)
	}
	defer f.Close()
	if err := yml.NewEncoder(f).Encode(DefaultConfig); err != nil {
		log.Fatalf("netmdctl: writing %s: %v", ConfigFileName, err)
	}
}

func printConfig(c Config) {
	if err := yml.NewEncoder(os.Stdout).Encode(c); err != nil {
		log.Fatalf("netmdctl: printing config: %v", err)
	}
}
