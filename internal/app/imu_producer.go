package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/relabs-tech/ism330_computer/internal/config"
	"github.com/relabs-tech/ism330_computer/internal/imu"
	"github.com/relabs-tech/ism330_computer/internal/sensors"
	"go.uber.org/multierr"
)

// imuReader is the part of sensors.IMUManager the producer needs.
type imuReader interface {
	IsLeftIMUAvailable() bool
	IsRightIMUAvailable() bool
	ReadIMU(side string) (imu.Sample, error)
	DrainFIFO(side string) (imu.FifoBatch, error)
}

// publisher sends one retained message.
type publisher interface {
	Publish(topic string, payload []byte) error
}

type mqttPublisher struct {
	client mqtt.Client
}

func (p mqttPublisher) Publish(topic string, payload []byte) error {
	if token := p.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// RunIMUProducer polls or drains both ISM330DHCX every IMU_SAMPLE_INTERVAL
// and publishes the result as JSON.
func RunIMUProducer() error {
	log.Println("starting ISM330DHCX producer")

	cfg := config.Get()

	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		log.Fatalf("failed to initialize IMU manager: %v", err)
		return err
	}
	defer imuManager.Close()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Printf("connected to MQTT, starting %s loop", cfg.IMUReadMode)

	pub := mqttPublisher{client: client}
	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	lastLog := time.Time{}
	for t := range ticker.C {
		n, err := publishOnce(pub, imuManager, cfg)
		if err != nil {
			log.Printf("producer: %v", err)
		}
		if t.Sub(lastLog) >= time.Duration(cfg.ConsoleLogInterval)*time.Millisecond {
			log.Printf("%s tick: %d messages published", t.Format(time.RFC3339), n)
			lastLog = t
		}
	}
	return nil
}

// publishOnce reads every available side once and publishes what it got.
// It returns the number of messages published; read and publish failures of
// one side do not stop the other.
func publishOnce(pub publisher, src imuReader, cfg *config.Config) (int, error) {
	type side struct {
		name      string
		available bool
		imuTopic  string
		fifoTopic string
	}
	sides := []side{
		{sensors.Left, src.IsLeftIMUAvailable(), cfg.TopicIMULeft, cfg.TopicFIFOLeft},
		{sensors.Right, src.IsRightIMUAvailable(), cfg.TopicIMURight, cfg.TopicFIFORight},
	}

	var errs error
	published := 0
	for _, s := range sides {
		if !s.available {
			continue
		}

		var msg any
		topic := s.imuTopic
		if cfg.IMUReadMode == config.ReadModeFIFO {
			batch, err := src.DrainFIFO(s.name)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if batch.Overrun {
				log.Printf("%s IMU: FIFO overrun, samples were lost", s.name)
			}
			msg, topic = batch, s.fifoTopic
		} else {
			sample, err := src.ReadIMU(s.name)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			msg = sample
		}

		payload, err := json.Marshal(msg)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s IMU marshal: %w", s.name, err))
			continue
		}
		if err := pub.Publish(topic, payload); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("MQTT publish error (%s): %w", topic, err))
			continue
		}
		published++
	}
	return published, errs
}
