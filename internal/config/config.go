package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/ism330_computer/internal/ism330dhcx"
)

// Read modes for IMU_READ_MODE.
const (
	ReadModePoll = "poll"
	ReadModeFIFO = "fifo"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicIMULeft   string
	TopicIMURight  string
	TopicFIFOLeft  string
	TopicFIFORight string

	// IMU Hardware
	IMUI2CBus    string // periph bus name, "" opens the first one
	IMULeftAddr  uint16 // 0 disables the side
	IMURightAddr uint16
	IMUSimulate  bool

	// IMU Output Configuration
	IMUAccelODRHz       float64
	IMUGyroODRHz        float64
	IMUAccelRangeG      int // 2, 4, 8, 16
	IMUGyroRangeDPS     int // 125, 250, 500, 1000, 2000, 4000
	IMUBDU              bool
	IMUAccelLPF2        bool
	IMUGyroHPF          bool
	IMUGyroHPFCutoffMHz int // 16, 65, 260, 1040
	IMURefreshScale     bool

	// IMU FIFO Configuration
	IMUReadMode      string // "poll" or "fifo"
	IMUFIFOMode      string // see ism330dhcx.ParseFifoMode
	IMUFIFOBDRHz     float64
	IMUFIFOWatermark int

	// Timing
	IMUSampleInterval  int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Register Debugger
	RegisterDebugPort          int
	RegisterDebugAllowedRanges string // e.g. "0x07-0x0A,0x10-0x19"

	// Display
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int    // milliseconds
	DisplayContent        string // "imu_left", "imu_right" or "fifo"
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through Get, so nobody modifies config
//     without holding the lock.
//   - configOnce: InitGlobal() only runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// defaults returns the values used for keys the file does not set.
func defaults() *Config {
	return &Config{
		TopicIMULeft:               "inertial/imu/left",
		TopicIMURight:              "inertial/imu/right",
		TopicFIFOLeft:              "inertial/fifo/left",
		TopicFIFORight:             "inertial/fifo/right",
		IMULeftAddr:                ism330dhcx.AltAddr,
		IMURightAddr:               ism330dhcx.DefaultAddr,
		IMUAccelODRHz:              104,
		IMUGyroODRHz:               104,
		IMUAccelRangeG:             4,
		IMUGyroRangeDPS:            500,
		IMUBDU:                     true,
		IMUGyroHPFCutoffMHz:        16,
		IMUReadMode:                ReadModePoll,
		IMUFIFOMode:                "continuous",
		IMUFIFOBDRHz:               104,
		WebServerPort:              8080,
		RegisterDebugPort:          8081,
		RegisterDebugAllowedRanges: "0x07-0x0A,0x10-0x19",
		DisplayI2CAddr:             0x3C,
		DisplayUpdateInterval:      500,
		DisplayContent:             "imu_left",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads KEY=VALUE lines from r. Empty lines and lines starting with #
// are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := defaults()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseBool(key, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 7)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return uint16(addr), nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_IMU_LEFT":
		c.TopicIMULeft = value
	case "TOPIC_IMU_RIGHT":
		c.TopicIMURight = value
	case "TOPIC_FIFO_LEFT":
		c.TopicFIFOLeft = value
	case "TOPIC_FIFO_RIGHT":
		c.TopicFIFORight = value

	// IMU Hardware
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_LEFT_ADDR":
		c.IMULeftAddr, err = parseAddr(key, value)
	case "IMU_RIGHT_ADDR":
		c.IMURightAddr, err = parseAddr(key, value)
	case "IMU_SIMULATE":
		c.IMUSimulate, err = parseBool(key, value)

	// IMU Output Configuration
	case "IMU_ACCEL_ODR_HZ":
		if c.IMUAccelODRHz, err = parseFloat(key, value); err == nil {
			_, err = ism330dhcx.ParseDataRate(c.IMUAccelODRHz)
		}
	case "IMU_GYRO_ODR_HZ":
		if c.IMUGyroODRHz, err = parseFloat(key, value); err == nil {
			_, err = ism330dhcx.ParseDataRate(c.IMUGyroODRHz)
		}
	case "IMU_ACCEL_RANGE_G":
		if c.IMUAccelRangeG, err = parseInt(key, value); err == nil {
			_, err = ism330dhcx.ParseAccelScale(c.IMUAccelRangeG)
		}
	case "IMU_GYRO_RANGE_DPS":
		if c.IMUGyroRangeDPS, err = parseInt(key, value); err == nil {
			_, err = ism330dhcx.ParseGyroScale(c.IMUGyroRangeDPS)
		}
	case "IMU_BDU":
		c.IMUBDU, err = parseBool(key, value)
	case "IMU_ACCEL_LPF2":
		c.IMUAccelLPF2, err = parseBool(key, value)
	case "IMU_GYRO_HPF":
		c.IMUGyroHPF, err = parseBool(key, value)
	case "IMU_GYRO_HPF_CUTOFF_MHZ":
		if c.IMUGyroHPFCutoffMHz, err = parseInt(key, value); err == nil {
			_, err = ism330dhcx.ParseHPCutoff(c.IMUGyroHPFCutoffMHz)
		}
	case "IMU_REFRESH_SCALE":
		c.IMURefreshScale, err = parseBool(key, value)

	// IMU FIFO Configuration
	case "IMU_READ_MODE":
		if value != ReadModePoll && value != ReadModeFIFO {
			return fmt.Errorf("IMU_READ_MODE must be %q or %q, got %q", ReadModePoll, ReadModeFIFO, value)
		}
		c.IMUReadMode = value
	case "IMU_FIFO_MODE":
		if _, err = ism330dhcx.ParseFifoMode(value); err == nil {
			c.IMUFIFOMode = value
		}
	case "IMU_FIFO_BDR_HZ":
		if c.IMUFIFOBDRHz, err = parseFloat(key, value); err == nil {
			var bdr ism330dhcx.BatchRate
			// One rate drives both streams.
			if bdr, err = ism330dhcx.ParseBatchRate(c.IMUFIFOBDRHz); err == nil && !bdr.AccelCapable() {
				return fmt.Errorf("IMU_FIFO_BDR_HZ %g is gyroscope only", c.IMUFIFOBDRHz)
			}
		}
	case "IMU_FIFO_WATERMARK":
		if c.IMUFIFOWatermark, err = parseInt(key, value); err == nil && (c.IMUFIFOWatermark < 0 || c.IMUFIFOWatermark > 511) {
			return fmt.Errorf("IMU_FIFO_WATERMARK must be 0-511, got %d", c.IMUFIFOWatermark)
		}

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		c.IMUSampleInterval, err = parseInt(key, value)
	case "CONSOLE_LOG_INTERVAL":
		c.ConsoleLogInterval, err = parseInt(key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	// Register Debugger
	case "REGISTER_DEBUG_PORT":
		c.RegisterDebugPort, err = parseInt(key, value)
	case "REGISTER_DEBUG_ALLOWED_RANGES":
		if _, err = ParseRanges(value); err == nil {
			c.RegisterDebugAllowedRanges = value
		}

	// Display
	case "DISPLAY_I2C_ADDR":
		c.DisplayI2CAddr, err = parseAddr(key, value)
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value)
	case "DISPLAY_CONTENT":
		c.DisplayContent = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.IMULeftAddr == 0 && c.IMURightAddr == 0 {
		return fmt.Errorf("at least one of IMU_LEFT_ADDR and IMU_RIGHT_ADDR must be set")
	}
	if c.IMULeftAddr == c.IMURightAddr {
		return fmt.Errorf("IMU_LEFT_ADDR and IMU_RIGHT_ADDR are both %#02x", c.IMULeftAddr)
	}
	if c.IMUSampleInterval <= 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL is required")
	}
	if c.ConsoleLogInterval <= 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL is required")
	}
	return nil
}

// Range is an inclusive register sub-address range.
type Range struct {
	Lo, Hi byte
}

// ParseRanges parses a comma separated list of sub-addresses or lo-hi
// ranges, e.g. "0x07-0x0A,0x10-0x19,0x5E".
func ParseRanges(s string) ([]Range, error) {
	var out []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		l, err := strconv.ParseUint(strings.TrimSpace(lo), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid register range %q: %w", part, err)
		}
		h := l
		if isRange {
			if h, err = strconv.ParseUint(strings.TrimSpace(hi), 0, 8); err != nil {
				return nil, fmt.Errorf("invalid register range %q: %w", part, err)
			}
		}
		if h < l {
			return nil, fmt.Errorf("invalid register range %q: end before start", part)
		}
		out = append(out, Range{Lo: byte(l), Hi: byte(h)})
	}
	return out, nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
