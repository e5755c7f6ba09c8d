package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/ism330_computer/internal/config"
	"github.com/relabs-tech/ism330_computer/internal/imu"
)

func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	subs := []struct {
		topic string
		label string
		fifo  bool
	}{
		{cfg.TopicIMULeft, "IMU-L", false},
		{cfg.TopicIMURight, "IMU-R", false},
		{cfg.TopicFIFOLeft, "FIFO-L", true},
		{cfg.TopicFIFORight, "FIFO-R", true},
	}
	for _, s := range subs {
		label, fifo := s.label, s.fifo
		token := client.Subscribe(s.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var line string
			var err error
			if fifo {
				line, err = formatFifoMessage(label, msg.Payload())
			} else {
				line, err = formatSampleMessage(label, msg.Payload())
			}
			if err != nil {
				log.Printf("console: %s unmarshal error: %v", label, err)
				return
			}
			fmt.Println(line)
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("console: subscribed to %s", s.topic)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

func formatSampleMessage(label string, payload []byte) (string, error) {
	var s imu.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return "", err
	}
	return formatSample(label, s), nil
}

func formatSample(label string, s imu.Sample) string {
	return fmt.Sprintf(
		"[%s] T=%5.1f°C  a=(%7.3f %7.3f %7.3f) m/s²  g=(%7.4f %7.4f %7.4f) rad/s  ±%dg ±%ddps",
		label, s.TempC,
		s.Accel.X, s.Accel.Y, s.Accel.Z,
		s.Gyro.X, s.Gyro.Y, s.Gyro.Z,
		s.AccelRangeG, s.GyroRangeDPS,
	)
}

func formatFifoMessage(label string, payload []byte) (string, error) {
	var b imu.FifoBatch
	if err := json.Unmarshal(payload, &b); err != nil {
		return "", err
	}
	line := fmt.Sprintf("[%s] unread=%d accel=%d gyro=%d other=%d empty=%d",
		label, b.Unread, len(b.Accel), len(b.Gyro), b.Other, b.Empty)
	if n := len(b.Accel); n > 0 {
		a := b.Accel[n-1]
		line += fmt.Sprintf("  last a=(%7.3f %7.3f %7.3f)", a.X, a.Y, a.Z)
	}
	if b.Overrun {
		line += "  OVERRUN"
	}
	return line, nil
}
