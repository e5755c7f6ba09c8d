package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimal = `
# broker
MQTT_BROKER=tcp://localhost:1883
IMU_SAMPLE_INTERVAL=20
CONSOLE_LOG_INTERVAL=1000
`

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(minimal))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("broker = %q", cfg.MQTTBroker)
	}
	if cfg.IMULeftAddr != 0x6A || cfg.IMURightAddr != 0x6B {
		t.Errorf("addresses = %#x %#x", cfg.IMULeftAddr, cfg.IMURightAddr)
	}
	if cfg.IMUReadMode != ReadModePoll || !cfg.IMUBDU || cfg.IMUAccelRangeG != 4 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestParseAllKeys(t *testing.T) {
	in := minimal + `
MQTT_CLIENT_ID_PRODUCER=prod
TOPIC_FIFO_LEFT=fifo/l
IMU_I2C_BUS=/dev/i2c-1
IMU_LEFT_ADDR=0
IMU_RIGHT_ADDR=0x6B
IMU_SIMULATE=true
IMU_ACCEL_ODR_HZ=12.5
IMU_GYRO_ODR_HZ=6660
IMU_ACCEL_RANGE_G=16
IMU_GYRO_RANGE_DPS=4000
IMU_BDU=false
IMU_ACCEL_LPF2=true
IMU_GYRO_HPF=true
IMU_GYRO_HPF_CUTOFF_MHZ=1040
IMU_REFRESH_SCALE=true
IMU_READ_MODE=fifo
IMU_FIFO_MODE=bypass-to-continuous
IMU_FIFO_BDR_HZ=3333
IMU_FIFO_WATERMARK=511
REGISTER_DEBUG_ALLOWED_RANGES=0x10-0x12, 0x19
DISPLAY_I2C_ADDR=0x3D
DISPLAY_CONTENT=fifo
`
	cfg, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.IMULeftAddr != 0 || cfg.IMURightAddr != 0x6B || !cfg.IMUSimulate || cfg.IMUI2CBus != "/dev/i2c-1" {
		t.Errorf("hardware = %+v", cfg)
	}
	if cfg.IMUAccelODRHz != 12.5 || cfg.IMUGyroODRHz != 6660 || cfg.IMUAccelRangeG != 16 || cfg.IMUGyroRangeDPS != 4000 {
		t.Errorf("output = %+v", cfg)
	}
	if cfg.IMUBDU || !cfg.IMUAccelLPF2 || !cfg.IMUGyroHPF || cfg.IMUGyroHPFCutoffMHz != 1040 || !cfg.IMURefreshScale {
		t.Errorf("filters = %+v", cfg)
	}
	if cfg.IMUReadMode != ReadModeFIFO || cfg.IMUFIFOMode != "bypass-to-continuous" || cfg.IMUFIFOBDRHz != 3333 || cfg.IMUFIFOWatermark != 511 {
		t.Errorf("fifo = %+v", cfg)
	}
	if cfg.DisplayI2CAddr != 0x3D || cfg.DisplayContent != "fifo" || cfg.TopicFIFOLeft != "fifo/l" {
		t.Errorf("display = %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown key", "FOO=1"},
		{"no equals", "IMU_BDU"},
		{"bad range", "IMU_ACCEL_RANGE_G=3"},
		{"bad gyro range", "IMU_GYRO_RANGE_DPS=245"},
		{"bad odr", "IMU_ACCEL_ODR_HZ=100"},
		{"bad bdr", "IMU_FIFO_BDR_HZ=1666"},
		{"gyro only bdr", "IMU_FIFO_BDR_HZ=6.5"},
		{"bad cutoff", "IMU_GYRO_HPF_CUTOFF_MHZ=100"},
		{"bad mode", "IMU_READ_MODE=irq"},
		{"bad fifo mode", "IMU_FIFO_MODE=stream"},
		{"watermark", "IMU_FIFO_WATERMARK=512"},
		{"address", "IMU_LEFT_ADDR=0x80"},
		{"bool", "IMU_BDU=maybe"},
		{"ranges", "REGISTER_DEBUG_ALLOWED_RANGES=0x19-0x10"},
		{"same address", "IMU_LEFT_ADDR=0x6B"},
	}
	for _, tc := range tests {
		if _, err := Parse(strings.NewReader(minimal + tc.line + "\n")); err == nil {
			t.Errorf("%s: %q accepted", tc.name, tc.line)
		}
	}
	if _, err := Parse(strings.NewReader("IMU_SAMPLE_INTERVAL=20\nCONSOLE_LOG_INTERVAL=1\n")); err == nil {
		t.Error("missing MQTT_BROKER accepted")
	}
}

func TestParseRanges(t *testing.T) {
	got, err := ParseRanges("0x07-0x0A, 0x10-0x19,0x5E,")
	if err != nil {
		t.Fatal(err)
	}
	want := []Range{{0x07, 0x0A}, {0x10, 0x19}, {0x5E, 0x5E}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range %d = %v, want %v", i, got[i], want[i])
		}
	}
	if _, err := ParseRanges("0x100"); err == nil {
		t.Error("0x100 accepted")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inertial_config.txt")
	if err := os.WriteFile(path, []byte(minimal), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("missing file accepted")
	}
}
