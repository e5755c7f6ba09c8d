package app

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/relabs-tech/ism330_computer/internal/imu"
	"github.com/relabs-tech/ism330_computer/internal/ism330dhcx"
)

type message struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	msgs []message
	err  error
}

func (p *fakePublisher) Publish(topic string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, message{topic, payload})
	return nil
}

type fakeReader struct {
	left, right bool
	readErr     error
}

func (r fakeReader) IsLeftIMUAvailable() bool  { return r.left }
func (r fakeReader) IsRightIMUAvailable() bool { return r.right }

func (r fakeReader) ReadIMU(side string) (imu.Sample, error) {
	if r.readErr != nil && side == "right" {
		return imu.Sample{}, r.readErr
	}
	return imu.Sample{Source: side, Accel: ism330dhcx.Vector{Z: 9.8}}, nil
}

func (r fakeReader) DrainFIFO(side string) (imu.FifoBatch, error) {
	return imu.FifoBatch{Source: side, Unread: 2, Accel: []ism330dhcx.Vector{{Z: 9.8}}, Gyro: []ism330dhcx.Vector{{}}}, nil
}

func TestPublishOncePoll(t *testing.T) {
	cfg := testConfig(t, "")
	pub := &fakePublisher{}
	n, err := publishOnce(pub, fakeReader{left: true, right: true}, cfg)
	if err != nil || n != 2 {
		t.Fatalf("published %d, %v", n, err)
	}
	want := []string{cfg.TopicIMULeft, cfg.TopicIMURight}
	for i, m := range pub.msgs {
		if m.topic != want[i] {
			t.Errorf("message %d on %q, want %q", i, m.topic, want[i])
		}
		var s imu.Sample
		if err := json.Unmarshal(m.payload, &s); err != nil {
			t.Fatal(err)
		}
		if s.Accel.Z != 9.8 {
			t.Errorf("payload %s", m.payload)
		}
	}
}

func TestPublishOnceFIFO(t *testing.T) {
	cfg := testConfig(t, "IMU_READ_MODE=fifo\n")
	pub := &fakePublisher{}
	n, err := publishOnce(pub, fakeReader{right: true}, cfg)
	if err != nil || n != 1 {
		t.Fatalf("published %d, %v", n, err)
	}
	if pub.msgs[0].topic != cfg.TopicFIFORight {
		t.Errorf("topic = %q", pub.msgs[0].topic)
	}
	var b imu.FifoBatch
	if err := json.Unmarshal(pub.msgs[0].payload, &b); err != nil {
		t.Fatal(err)
	}
	if b.Source != "right" || b.Unread != 2 || len(b.Accel) != 1 || len(b.Gyro) != 1 {
		t.Errorf("batch = %+v", b)
	}
}

func TestPublishOnceErrors(t *testing.T) {
	cfg := testConfig(t, "")
	errRead := errors.New("bus fault")
	pub := &fakePublisher{}
	n, err := publishOnce(pub, fakeReader{left: true, right: true, readErr: errRead}, cfg)
	if n != 1 || !errors.Is(err, errRead) {
		t.Errorf("published %d, err %v", n, err)
	}

	errPub := errors.New("broker gone")
	n, err = publishOnce(&fakePublisher{err: errPub}, fakeReader{left: true}, cfg)
	if n != 0 || !errors.Is(err, errPub) {
		t.Errorf("published %d, err %v", n, err)
	}
}
