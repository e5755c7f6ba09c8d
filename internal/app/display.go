package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/ism330_computer/internal/config"
	"github.com/relabs-tech/ism330_computer/internal/imu"
)

// ssd1306.NewI2C always talks to 0x3C.
const ssd1306DefaultAddr = 0x3C

// remapBus redirects transfers for one address to another, so a display
// strapped to 0x3D can be driven through ssd1306.NewI2C.
type remapBus struct {
	i2c.Bus
	from, to uint16
}

func (b remapBus) Tx(addr uint16, w, r []byte) error {
	if addr == b.from {
		addr = b.to
	}
	return b.Bus.Tx(addr, w, r)
}

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	sampleLeft      imu.Sample
	haveSampleLeft  bool
	sampleRight     imu.Sample
	haveSampleRight bool

	fifoLeft      imu.FifoBatch
	haveFifoLeft  bool
	fifoRight     imu.FifoBatch
	haveFifoRight bool
}

func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.IMUI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(remapBus{Bus: bus, from: ssd1306DefaultAddr, to: cfg.DisplayI2CAddr}, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	// Data storage
	data := &DisplayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeForContent(client, cfg.DisplayContent, data, cfg); err != nil {
		return fmt.Errorf("failed to subscribe for display: %w", err)
	}

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		img, err := data.render(cfg.DisplayContent)
		if err != nil {
			return err
		}
		if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func subscribeOne(client mqtt.Client, topic string, store func([]byte) error) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := store(msg.Payload()); err != nil {
			log.Printf("display: %s unmarshal error: %v", topic, err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", topic)
	return nil
}

func subscribeForContent(client mqtt.Client, content string, data *DisplayData, cfg *config.Config) error {
	switch content {
	case "imu_left":
		return subscribeOne(client, cfg.TopicIMULeft, data.storeSample)
	case "imu_right":
		return subscribeOne(client, cfg.TopicIMURight, data.storeSample)
	case "fifo":
		if err := subscribeOne(client, cfg.TopicFIFOLeft, data.storeBatch); err != nil {
			return err
		}
		return subscribeOne(client, cfg.TopicFIFORight, data.storeBatch)
	default:
		return fmt.Errorf("unknown display content type: %s", content)
	}
}

func (d *DisplayData) storeSample(payload []byte) error {
	var s imu.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	switch s.Source {
	case "left":
		d.sampleLeft, d.haveSampleLeft = s, true
	case "right":
		d.sampleRight, d.haveSampleRight = s, true
	}
	return nil
}

func (d *DisplayData) storeBatch(payload []byte) error {
	var b imu.FifoBatch
	if err := json.Unmarshal(payload, &b); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	switch b.Source {
	case "left":
		d.fifoLeft, d.haveFifoLeft = b, true
	case "right":
		d.fifoRight, d.haveFifoRight = b, true
	}
	return nil
}

// render draws the current data for content into a 128x64 frame.
func (d *DisplayData) render(content string) (*image1bit.VerticalLSB, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch content {
	case "imu_left":
		return renderSample("Left", d.sampleLeft, d.haveSampleLeft), nil
	case "imu_right":
		return renderSample("Right", d.sampleRight, d.haveSampleRight), nil
	case "fifo":
		return renderFifo(d.fifoLeft, d.haveFifoLeft, d.fifoRight, d.haveFifoRight), nil
	default:
		return nil, fmt.Errorf("unknown display content type: %s", content)
	}
}

// newFrame returns a blank frame and a drawer writing into it.
func newFrame() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLines(drawer *font.Drawer, lines ...string) {
	for i, l := range lines {
		drawer.Dot = fixed.P(0, 12*i+13)
		drawer.DrawString(l)
	}
}

func renderSample(label string, s imu.Sample, haveData bool) *image1bit.VerticalLSB {
	img, drawer := newFrame()
	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawString("IMU " + label)
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawString("Waiting...")
		return img
	}
	drawLines(drawer,
		fmt.Sprintf("%s %5.1fC", label, s.TempC),
		fmt.Sprintf("A:%5.2f %5.2f", s.Accel.X, s.Accel.Y),
		fmt.Sprintf("  %5.2f m/s2", s.Accel.Z),
		fmt.Sprintf("G:%5.2f %5.2f", s.Gyro.X, s.Gyro.Y),
		fmt.Sprintf("  %5.2f rad/s", s.Gyro.Z),
	)
	return img
}

func fifoLine(label string, b imu.FifoBatch, have bool) string {
	if !have {
		return label + ": waiting"
	}
	line := fmt.Sprintf("%s:%3d a%3d g%3d", label, b.Unread, len(b.Accel), len(b.Gyro))
	if b.Overrun {
		line += "!"
	}
	return line
}

func renderFifo(left imu.FifoBatch, haveLeft bool, right imu.FifoBatch, haveRight bool) *image1bit.VerticalLSB {
	img, drawer := newFrame()
	drawLines(drawer,
		"FIFO",
		fifoLine("L", left, haveLeft),
		fifoLine("R", right, haveRight),
	)
	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, drawer := newFrame()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawString("ISM330DHCX")

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawString("Waiting for")

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawString("data")

	return img
}
