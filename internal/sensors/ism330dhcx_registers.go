// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// BitField describes one field inside a register.
type BitField struct {
	Bits        string `json:"bits"` // "7:4" or "2"
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo describes one register for the debugger UI.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

const (
	odrValues = "0=Off, 1=12.5Hz, 2=26Hz, 3=52Hz, 4=104Hz, 5=208Hz, 6=416Hz, 7=833Hz, 8=1.66kHz, 9=3.33kHz, 10=6.66kHz"
	bdrValues = "0=Off, 1=12.5Hz, 2=26Hz, 3=52Hz, 4=104Hz, 5=208Hz, 6=417Hz, 7=833Hz, 8=1667Hz, 9=3333Hz, 10=6667Hz"
	onOff     = "0=Disabled, 1=Enabled"
)

// ism330dhcxRegisterMap returns metadata for the ISM330DHCX registers the
// debugger exposes.
func ism330dhcxRegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// FIFO Control
		{Address: "0x07", Name: "FIFO_CTRL1", Description: "FIFO watermark threshold, low byte", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "WTM", Description: "Watermark bits 7:0 (1 LSB = one 7-byte FIFO word)", Values: "0-255"},
			}},
		{Address: "0x08", Name: "FIFO_CTRL2", Description: "FIFO watermark high bit, compression and stop-on-watermark", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "STOP_ON_WTM", Description: "Limit FIFO depth to the watermark", Values: onOff},
				{Bits: "6", Name: "FIFO_COMPR_RT_EN", Description: "Run-time compression", Values: onOff},
				{Bits: "4", Name: "ODRCHG_EN", Description: "Store CTRL register changes in the FIFO", Values: onOff},
				{Bits: "2:1", Name: "UNCOPTR_RATE", Description: "Non-compressed data rate", Values: "0=Not forced, 1=8, 2=16, 3=32 BDR"},
				{Bits: "0", Name: "WTM8", Description: "Watermark bit 8", Values: "0-1"},
			}},
		{Address: "0x09", Name: "FIFO_CTRL3", Description: "FIFO batch data rates", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:4", Name: "BDR_GY", Description: "Gyroscope batch data rate", Values: bdrValues + ", 11=6.5Hz"},
				{Bits: "3:0", Name: "BDR_XL", Description: "Accelerometer batch data rate", Values: bdrValues + ", 11=1.6Hz"},
			}},
		{Address: "0x0A", Name: "FIFO_CTRL4", Description: "FIFO mode and timestamp/temperature batching", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "DEC_TS_BATCH", Description: "Timestamp batching decimation", Values: "0=Off, 1=1, 2=8, 3=32"},
				{Bits: "5:4", Name: "ODR_T_BATCH", Description: "Temperature batch data rate", Values: "0=Off, 1=1.6Hz, 2=12.5Hz, 3=52Hz"},
				{Bits: "2:0", Name: "FIFO_MODE", Description: "FIFO mode", Values: "0=Bypass, 1=FIFO, 3=Continuous-to-FIFO, 4=Bypass-to-continuous, 6=Continuous, 7=Bypass-to-FIFO"},
			}},

		// Identification
		{Address: "0x0F", Name: "WHO_AM_I", Description: "Device identification", Access: "R", Default: "0x6B",
			BitFields: []BitField{
				{Bits: "7:0", Name: "WHO_AM_I", Description: "Fixed device ID", Values: "0x6B"},
			}},

		// Control
		{Address: "0x10", Name: "CTRL1_XL", Description: "Accelerometer control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:4", Name: "ODR_XL", Description: "Accelerometer output data rate", Values: odrValues},
				{Bits: "3:2", Name: "FS_XL", Description: "Accelerometer full scale", Values: "0=±2g, 1=±16g, 2=±4g, 3=±8g"},
				{Bits: "1", Name: "LPF2_XL_EN", Description: "Output from the LPF2 stage", Values: "0=First stage, 1=LPF2"},
			}},
		{Address: "0x11", Name: "CTRL2_G", Description: "Gyroscope control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:4", Name: "ODR_G", Description: "Gyroscope output data rate", Values: odrValues},
				{Bits: "3:2", Name: "FS_G", Description: "Gyroscope full scale", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
				{Bits: "1", Name: "FS_125", Description: "Select ±125°/s, overrides FS_G", Values: onOff},
				{Bits: "0", Name: "FS_4000", Description: "Select ±4000°/s, overrides FS_G and FS_125", Values: onOff},
			}},
		{Address: "0x12", Name: "CTRL3_C", Description: "General control", Access: "RW", Default: "0x04",
			BitFields: []BitField{
				{Bits: "7", Name: "BOOT", Description: "Reboot memory content", Values: "0=Normal, 1=Reboot"},
				{Bits: "6", Name: "BDU", Description: "Block data update", Values: "0=Continuous, 1=Hold until MSB and LSB read"},
				{Bits: "5", Name: "H_LACTIVE", Description: "Interrupt polarity", Values: "0=Active high, 1=Active low"},
				{Bits: "4", Name: "PP_OD", Description: "INT pin drive", Values: "0=Push-pull, 1=Open drain"},
				{Bits: "3", Name: "SIM", Description: "SPI mode", Values: "0=4-wire, 1=3-wire"},
				{Bits: "2", Name: "IF_INC", Description: "Register address auto-increment", Values: onOff},
				{Bits: "0", Name: "SW_RESET", Description: "Software reset, self-clearing", Values: "0=Normal, 1=Reset"},
			}},
		{Address: "0x13", Name: "CTRL4_C", Description: "Control 4", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "SLEEP_G", Description: "Gyroscope sleep", Values: onOff},
				{Bits: "5", Name: "INT2_on_INT1", Description: "All interrupts on INT1", Values: onOff},
				{Bits: "3", Name: "DRDY_MASK", Description: "Mask data-ready until filters settle", Values: onOff},
				{Bits: "2", Name: "I2C_disable", Description: "Disable I²C interface", Values: "0=I²C+SPI, 1=SPI only"},
				{Bits: "1", Name: "LPF1_SEL_G", Description: "Gyroscope LPF1 enable", Values: onOff},
			}},
		{Address: "0x14", Name: "CTRL5_C", Description: "Control 5 (rounding, self-test)", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6:5", Name: "ROUNDING", Description: "Output register rounding", Values: "0=None, 1=XL, 2=G, 3=XL+G"},
				{Bits: "3:2", Name: "ST_G", Description: "Gyroscope self-test", Values: "0=Normal, 1=Positive, 3=Negative"},
				{Bits: "1:0", Name: "ST_XL", Description: "Accelerometer self-test", Values: "0=Normal, 1=Positive, 2=Negative"},
			}},
		{Address: "0x15", Name: "CTRL6_C", Description: "Control 6", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "XL_HM_MODE", Description: "Accelerometer high-performance disable", Values: "0=Enabled, 1=Disabled"},
				{Bits: "3", Name: "USR_OFF_W", Description: "User offset weight", Values: "0=2^-10 g/LSB, 1=2^-6 g/LSB"},
				{Bits: "2:0", Name: "FTYPE", Description: "Gyroscope LPF1 bandwidth", Values: "0-7"},
			}},
		{Address: "0x16", Name: "CTRL7_G", Description: "Gyroscope filter control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "G_HM_MODE", Description: "Gyroscope high-performance disable", Values: "0=Enabled, 1=Disabled"},
				{Bits: "6", Name: "HP_EN_G", Description: "Gyroscope high-pass filter", Values: onOff},
				{Bits: "5:4", Name: "HPM_G", Description: "High-pass cutoff", Values: "0=16mHz, 1=65mHz, 2=260mHz, 3=1.04Hz"},
				{Bits: "1", Name: "USR_OFF_ON_OUT", Description: "Apply accelerometer user offsets to output", Values: onOff},
			}},
		{Address: "0x17", Name: "CTRL8_XL", Description: "Accelerometer filter control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:5", Name: "HPCF_XL", Description: "Accelerometer LPF2/HP bandwidth", Values: "0-7"},
				{Bits: "2", Name: "HP_SLOPE_XL_EN", Description: "Slope / high-pass selection", Values: "0=LPF path, 1=HP path"},
			}},
		{Address: "0x18", Name: "CTRL9_XL", Description: "Data-enable (DEN) configuration", Access: "RW", Default: "0xE0",
			BitFields: []BitField{
				{Bits: "7", Name: "DEN_X", Description: "DEN stored in X LSB", Values: onOff},
				{Bits: "6", Name: "DEN_Y", Description: "DEN stored in Y LSB", Values: onOff},
				{Bits: "5", Name: "DEN_Z", Description: "DEN stored in Z LSB", Values: onOff},
				{Bits: "4", Name: "DEN_XL_G", Description: "DEN stamping sensor", Values: "0=Gyroscope, 1=Accelerometer"},
				{Bits: "3", Name: "DEN_XL_EN", Description: "Extend DEN to accelerometer", Values: onOff},
				{Bits: "2", Name: "DEN_LH", Description: "DEN polarity", Values: "0=Active low, 1=Active high"},
				{Bits: "1", Name: "DEVICE_CONF", Description: "Device configuration, must be set", Values: onOff},
			}},
		{Address: "0x19", Name: "CTRL10_C", Description: "Timestamp control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5", Name: "TIMESTAMP_EN", Description: "Timestamp counter", Values: onOff},
			}},

		// Status
		{Address: "0x1E", Name: "STATUS_REG", Description: "Data-ready status", Access: "R",
			BitFields: []BitField{
				{Bits: "2", Name: "TDA", Description: "Temperature data available"},
				{Bits: "1", Name: "GDA", Description: "Gyroscope data available"},
				{Bits: "0", Name: "XLDA", Description: "Accelerometer data available"},
			}},

		// Output Registers (Read-Only)
		{Address: "0x20", Name: "OUT_TEMP_L", Description: "Temperature low byte (256 LSB/°C, 0 = 25°C)", Access: "R"},
		{Address: "0x21", Name: "OUT_TEMP_H", Description: "Temperature high byte", Access: "R"},
		{Address: "0x22", Name: "OUTX_L_G", Description: "Gyroscope X low byte", Access: "R"},
		{Address: "0x23", Name: "OUTX_H_G", Description: "Gyroscope X high byte", Access: "R"},
		{Address: "0x24", Name: "OUTY_L_G", Description: "Gyroscope Y low byte", Access: "R"},
		{Address: "0x25", Name: "OUTY_H_G", Description: "Gyroscope Y high byte", Access: "R"},
		{Address: "0x26", Name: "OUTZ_L_G", Description: "Gyroscope Z low byte", Access: "R"},
		{Address: "0x27", Name: "OUTZ_H_G", Description: "Gyroscope Z high byte", Access: "R"},
		{Address: "0x28", Name: "OUTX_L_A", Description: "Accelerometer X low byte", Access: "R"},
		{Address: "0x29", Name: "OUTX_H_A", Description: "Accelerometer X high byte", Access: "R"},
		{Address: "0x2A", Name: "OUTY_L_A", Description: "Accelerometer Y low byte", Access: "R"},
		{Address: "0x2B", Name: "OUTY_H_A", Description: "Accelerometer Y high byte", Access: "R"},
		{Address: "0x2C", Name: "OUTZ_L_A", Description: "Accelerometer Z low byte", Access: "R"},
		{Address: "0x2D", Name: "OUTZ_H_A", Description: "Accelerometer Z high byte", Access: "R"},

		// FIFO Status
		{Address: "0x3A", Name: "FIFO_STATUS1", Description: "Unread FIFO words, low byte", Access: "R",
			BitFields: []BitField{
				{Bits: "7:0", Name: "DIFF_FIFO", Description: "Unread words bits 7:0"},
			}},
		{Address: "0x3B", Name: "FIFO_STATUS2", Description: "FIFO flags and unread words high bits", Access: "R",
			BitFields: []BitField{
				{Bits: "7", Name: "FIFO_WTM_IA", Description: "Watermark reached"},
				{Bits: "6", Name: "FIFO_OVR_IA", Description: "FIFO overrun"},
				{Bits: "5", Name: "FIFO_FULL_IA", Description: "FIFO full at next ODR"},
				{Bits: "4", Name: "COUNTER_BDR_IA", Description: "Batch counter threshold reached"},
				{Bits: "3", Name: "FIFO_OVR_LATCHED", Description: "Latched overrun, cleared on read"},
				{Bits: "1:0", Name: "DIFF_FIFO", Description: "Unread words bits 9:8"},
			}},

		// FIFO Output
		{Address: "0x78", Name: "FIFO_DATA_OUT_TAG", Description: "FIFO tag; reading pops one word", Access: "R",
			BitFields: []BitField{
				{Bits: "7:3", Name: "TAG_SENSOR", Description: "Sensor tag", Values: "1=Gyroscope, 2=Accelerometer, 3=Temperature, 4=Timestamp, 5=CFG change, 6-25=Compressed/sensor hub"},
				{Bits: "2:1", Name: "TAG_CNT", Description: "2-bit word counter"},
				{Bits: "0", Name: "TAG_PARITY", Description: "Tag parity"},
			}},
	}
}
