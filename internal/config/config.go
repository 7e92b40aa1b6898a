// Package config loads runtime settings from environment variables and
// command line flags. Flags take precedence over the environment.
package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/wavelayer/mlme/internal/wire/mac"
)

// Config holds all application configuration.
type Config struct {
	Iface    string
	Addr     string
	MockMode bool
	Debug    bool
	SSID     string
	BSSID    mac.BSSID
	StaAddr  mac.MAC
}

// Load parses command line flags and environment variables to populate Config.
func Load() (*Config, error) {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Iface = getEnv("MLME_INTERFACE", "wlan0")
	cfg.Addr = getEnv("MLME_ADDR", ":8080")
	cfg.MockMode = getEnvBool("MLME_MOCK", false)
	cfg.Debug = getEnvBool("MLME_DEBUG", false)
	cfg.SSID = getEnv("MLME_SSID", "mlme-test")
	bssidStr := getEnv("MLME_BSSID", "02:00:00:00:00:01")
	staStr := getEnv("MLME_STA", "02:00:00:00:00:02")

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.Iface, "i", cfg.Iface, "Network interface in monitor mode")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Diagnostics HTTP server address")
	flag.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Run against a scripted AP instead of a radio")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	flag.StringVar(&cfg.SSID, "ssid", cfg.SSID, "SSID of the target BSS")
	flag.StringVar(&bssidStr, "bssid", bssidStr, "BSSID of the target BSS")
	flag.StringVar(&staStr, "sta", staStr, "MAC address of the local station")

	flag.Parse()

	bssid, err := ParseMAC(bssidStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BSSID %q: %w", bssidStr, err)
	}
	cfg.BSSID = mac.BSSID(bssid)

	cfg.StaAddr, err = ParseMAC(staStr)
	if err != nil {
		return nil, fmt.Errorf("invalid station address %q: %w", staStr, err)
	}

	return cfg, nil
}

// ParseMAC parses a colon separated hardware address into a 6-byte MAC.
func ParseMAC(s string) (mac.MAC, error) {
	var m mac.MAC
	hw, err := net.ParseMAC(s)
	if err != nil {
		return m, err
	}
	if len(hw) != 6 {
		return m, fmt.Errorf("expected a 48-bit address, got %d bytes", len(hw))
	}
	copy(m[:], hw)
	return m, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
