package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/relabs-tech/ism330_computer/internal/config"
	"github.com/relabs-tech/ism330_computer/internal/imu"
)

// latest keeps the most recent message per side and serves it as JSON.
type latest struct {
	mu      sync.RWMutex
	samples map[string]imu.Sample
	batches map[string]imu.FifoBatch
}

func newLatest() *latest {
	return &latest{
		samples: map[string]imu.Sample{},
		batches: map[string]imu.FifoBatch{},
	}
}

func (l *latest) storeSample(payload []byte) error {
	var s imu.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return err
	}
	l.mu.Lock()
	l.samples[s.Source] = s
	l.mu.Unlock()
	return nil
}

func (l *latest) storeBatch(payload []byte) error {
	var b imu.FifoBatch
	if err := json.Unmarshal(payload, &b); err != nil {
		return err
	}
	l.mu.Lock()
	l.batches[b.Source] = b
	l.mu.Unlock()
	return nil
}

// sideParam returns ?imu=, defaulting to left.
func sideParam(r *http.Request) (string, bool) {
	side := r.URL.Query().Get("imu")
	if side == "" {
		side = "left"
	}
	return side, side == "left" || side == "right"
}

func (l *latest) handleIMU(w http.ResponseWriter, r *http.Request) {
	side, ok := sideParam(r)
	if !ok {
		http.Error(w, "invalid imu parameter, use 'left' or 'right'", http.StatusBadRequest)
		return
	}
	l.mu.RLock()
	s, have := l.samples[side]
	l.mu.RUnlock()
	writeLatest(w, s, have)
}

func (l *latest) handleFIFO(w http.ResponseWriter, r *http.Request) {
	side, ok := sideParam(r)
	if !ok {
		http.Error(w, "invalid imu parameter, use 'left' or 'right'", http.StatusBadRequest)
		return
	}
	l.mu.RLock()
	b, have := l.batches[side]
	l.mu.RUnlock()
	writeLatest(w, b, have)
}

func writeLatest(w http.ResponseWriter, v any, have bool) {
	if !have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func (l *latest) routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/imu", l.handleIMU)
	mux.HandleFunc("/api/fifo", l.handleFIFO)
}

func RunWeb() error {
	cfg := config.Get()
	state := newLatest()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Keep the latest message of every IMU and FIFO topic
	subs := map[string]func([]byte) error{
		cfg.TopicIMULeft:   state.storeSample,
		cfg.TopicIMURight:  state.storeSample,
		cfg.TopicFIFOLeft:  state.storeBatch,
		cfg.TopicFIFORight: state.storeBatch,
	}
	for topic, store := range subs {
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			if err := store(msg.Payload()); err != nil {
				log.Printf("MQTT payload unmarshal error (%s): %v", msg.Topic(), err)
			}
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("subscribed to MQTT topic %s", topic)
	}

	// 3) JSON API endpoints and static files from ./web
	mux := http.NewServeMux()
	state.routes(mux)
	mux.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
