package imu

import (
	"time"

	"github.com/relabs-tech/ism330_computer/internal/ism330dhcx"
)

// Sample is one polled reading of an ISM330DHCX, as published on
// TOPIC_IMU_LEFT / TOPIC_IMU_RIGHT.
type Sample struct {
	Source    string    `json:"source"` // "left" or "right"
	Timestamp time.Time `json:"timestamp"`

	TempC float64 `json:"temp_c"`

	Accel ism330dhcx.Vector `json:"accel"` // m/s²
	Gyro  ism330dhcx.Vector `json:"gyro"`  // rad/s

	AccelRaw     [3]int16 `json:"accel_raw"`
	GyroRaw      [3]int16 `json:"gyro_raw"`
	AccelRangeG  int      `json:"accel_range_g"`
	GyroRangeDPS int      `json:"gyro_range_dps"`
}

// FifoBatch is the content of one FIFO drain, as published on
// TOPIC_FIFO_LEFT / TOPIC_FIFO_RIGHT.
type FifoBatch struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`

	Unread  int  `json:"unread"` // words reported by FIFO_STATUS before draining
	Overrun bool `json:"overrun"`
	Full    bool `json:"full"`

	Accel []ism330dhcx.Vector `json:"accel"` // m/s², in FIFO order
	Gyro  []ism330dhcx.Vector `json:"gyro"`  // rad/s, in FIFO order
	Other int                 `json:"other"` // words with any other tag
	Empty int                 `json:"empty"`
}
