// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/ism330_computer/internal/config"
	"github.com/relabs-tech/ism330_computer/internal/imu"
	"github.com/relabs-tech/ism330_computer/internal/sensors"
)

const registerDevice = "ism330dhcx"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// registerBackend is the part of sensors.IMUManager the debugger drives.
type registerBackend interface {
	ReadRegister(side string, addr byte) (byte, error)
	WriteRegister(side string, addr, value byte) error
	ReadAllRegisters(side string) (map[byte]byte, error)
	ExportRegisterConfig(side string) (map[byte]byte, error)
	ReinitializeIMU(side string) error
	GetRegisterMap() []sensors.RegisterInfo
	ReadIMU(side string) (imu.Sample, error)
}

// RegisterDebugSession holds WebSocket connection state for register debugging
type RegisterDebugSession struct {
	Conn    *websocket.Conn
	mgr     registerBackend
	allowed []config.Range
}

// Response types
type RegisterResponse struct {
	Type        string                 `json:"type"`             // "register_data", "register_map", "status", "error"
	Device      string                 `json:"device,omitempty"` // always "ism330dhcx"
	IMU         string                 `json:"imu,omitempty"`
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
}

// RegisterConfigFile represents the JSON structure for exported register configuration
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	IMU       string            `json:"imu"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// HandleRegisterDebugWS handles the WebSocket connection for register
// debugging against the process-wide IMU manager.
func HandleRegisterDebugWS(w http.ResponseWriter, r *http.Request) {
	allowed, err := config.ParseRanges(config.Get().RegisterDebugAllowedRanges)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	NewRegisterDebugHandler(sensors.GetIMUManager(), allowed)(w, r)
}

// NewRegisterDebugHandler returns a WebSocket handler driving mgr. Writes are
// refused outside the allowed ranges.
func NewRegisterDebugHandler(mgr registerBackend, allowed []config.Range) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("register_debug: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		session := &RegisterDebugSession{Conn: conn, mgr: mgr, allowed: allowed}

		// Send register map on connection
		if err := session.sendRegisterMap(); err != nil {
			log.Printf("register_debug: error sending register map: %v", err)
			return
		}

		session.loop()
	}
}

func (s *RegisterDebugSession) loop() {
	for {
		var rawMsg map[string]interface{}
		err := s.Conn.ReadJSON(&rawMsg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			return
		}

		action, ok := rawMsg["action"].(string)
		if !ok {
			s.sendError("missing or invalid action field")
			continue
		}

		// Route based on action
		switch action {
		case "get_map":
			s.sendRegisterMap()
		case "read":
			s.handleRead(rawMsg)
		case "read_all":
			s.handleReadAll(rawMsg)
		case "write":
			s.handleWrite(rawMsg)
		case "init":
			s.handleInit(rawMsg)
		case "export_config":
			s.handleExportConfig(rawMsg)
		case "import_config":
			s.handleImportConfig(rawMsg)
		default:
			s.sendError(fmt.Sprintf("unknown action: %s", action))
		}
	}
}

// parseHexByte accepts "0x1A" or "0x1a".
func parseHexByte(s string) (byte, error) {
	var b byte
	if _, err := fmt.Sscanf(s, "0x%X", &b); err != nil {
		return 0, err
	}
	return b, nil
}

func hexByte(b byte) string {
	return fmt.Sprintf("0x%02X", b)
}

func hexMap(regs map[byte]byte) map[string]string {
	out := make(map[string]string, len(regs))
	for addr, value := range regs {
		out[hexByte(addr)] = hexByte(value)
	}
	return out
}

func (s *RegisterDebugSession) handleRead(rawMsg map[string]interface{}) {
	imu, _ := rawMsg["imu"].(string)
	addr, _ := rawMsg["addr"].(string)

	if imu == "" || addr == "" {
		s.sendError("missing imu or addr field")
		return
	}

	addrByte, err := parseHexByte(addr)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", addr))
		return
	}

	value, err := s.mgr.ReadRegister(imu, addrByte)
	if err != nil {
		s.sendError(fmt.Sprintf("read error: %v", err))
		return
	}

	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    registerDevice,
		IMU:       imu,
		Address:   hexByte(addrByte),
		Value:     hexByte(value),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleReadAll(rawMsg map[string]interface{}) {
	imu, _ := rawMsg["imu"].(string)
	if imu == "" {
		s.sendError("missing imu field")
		return
	}

	registers, err := s.mgr.ReadAllRegisters(imu)
	if err != nil {
		s.sendError(fmt.Sprintf("read all error: %v", err))
		return
	}

	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    registerDevice,
		IMU:       imu,
		Registers: hexMap(registers),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleWrite(rawMsg map[string]interface{}) {
	imu, _ := rawMsg["imu"].(string)
	addr, _ := rawMsg["addr"].(string)
	valueStr, _ := rawMsg["value"].(string)

	if imu == "" || addr == "" || valueStr == "" {
		s.sendError("missing imu, addr, or value field")
		return
	}

	addrByte, err := parseHexByte(addr)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", addr))
		return
	}
	valueByte, err := parseHexByte(valueStr)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid value format: %s", valueStr))
		return
	}

	if !isRegisterWritable(addrByte, s.allowed) {
		s.sendError(fmt.Sprintf("register 0x%02X not in allowed write ranges", addrByte))
		return
	}
	if err := s.mgr.WriteRegister(imu, addrByte, valueByte); err != nil {
		s.sendError(fmt.Sprintf("write error: %v", err))
		return
	}

	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    registerDevice,
		IMU:       imu,
		Address:   hexByte(addrByte),
		Value:     hexByte(valueByte),
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	})
}

func (s *RegisterDebugSession) handleInit(rawMsg map[string]interface{}) {
	imu, _ := rawMsg["imu"].(string)
	if imu == "" {
		s.sendError("missing imu field")
		return
	}

	if err := s.mgr.ReinitializeIMU(imu); err != nil {
		s.sendError(fmt.Sprintf("reinit error: %v", err))
		return
	}

	s.Conn.WriteJSON(RegisterResponse{
		Type:    "status",
		IMU:     imu,
		Status:  "initialized",
		Message: "IMU reinitialized successfully",
	})
}

func (s *RegisterDebugSession) handleExportConfig(rawMsg map[string]interface{}) {
	imu, _ := rawMsg["imu"].(string)
	if imu == "" {
		s.sendError("missing imu field")
		return
	}

	registers, err := s.mgr.ExportRegisterConfig(imu)
	if err != nil {
		s.sendError(fmt.Sprintf("export error: %v", err))
		return
	}

	configFile := RegisterConfigFile{
		Version:   1,
		IMU:       imu,
		Timestamp: time.Now().Format(time.RFC3339),
		Registers: hexMap(registers),
	}

	// Send as download
	configJSON, _ := json.Marshal(configFile)
	rawResp := map[string]interface{}{
		"type":     "export_config",
		"imu":      imu,
		"message":  "config exported",
		"config":   string(configJSON),
		"filename": fmt.Sprintf("%s_%s_registers.json", imu, time.Now().Format("20060102_150405")),
	}
	s.Conn.WriteJSON(rawResp)
}

// handleImportConfig writes back a file produced by export_config. Registers
// outside the allowed ranges are skipped, the rest are written in address
// order.
func (s *RegisterDebugSession) handleImportConfig(rawMsg map[string]interface{}) {
	imu, _ := rawMsg["imu"].(string)
	raw, _ := rawMsg["config"].(string)
	if imu == "" || raw == "" {
		s.sendError("missing imu or config field")
		return
	}

	var file RegisterConfigFile
	if err := json.Unmarshal([]byte(raw), &file); err != nil {
		s.sendError(fmt.Sprintf("invalid config: %v", err))
		return
	}
	if file.Version != 1 {
		s.sendError(fmt.Sprintf("unsupported config version %d", file.Version))
		return
	}

	type write struct{ addr, value byte }
	var writes []write
	for a, v := range file.Registers {
		addr, err := parseHexByte(a)
		if err != nil {
			s.sendError(fmt.Sprintf("invalid address format: %s", a))
			return
		}
		value, err := parseHexByte(v)
		if err != nil {
			s.sendError(fmt.Sprintf("invalid value format: %s", v))
			return
		}
		writes = append(writes, write{addr, value})
	}
	sort.Slice(writes, func(i, j int) bool { return writes[i].addr < writes[j].addr })

	written := map[byte]byte{}
	skipped := 0
	for _, w := range writes {
		if !isRegisterWritable(w.addr, s.allowed) {
			skipped++
			continue
		}
		if err := s.mgr.WriteRegister(imu, w.addr, w.value); err != nil {
			s.sendError(fmt.Sprintf("write 0x%02X error: %v", w.addr, err))
			return
		}
		written[w.addr] = w.value
	}

	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    registerDevice,
		IMU:       imu,
		Registers: hexMap(written),
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   fmt.Sprintf("config imported, %d written, %d skipped", len(written), skipped),
	})
}

func (s *RegisterDebugSession) sendRegisterMap() error {
	return s.Conn.WriteJSON(RegisterResponse{
		Type:        "register_map",
		Device:      registerDevice,
		RegisterMap: s.mgr.GetRegisterMap(),
	})
}

func (s *RegisterDebugSession) sendError(message string) {
	resp := RegisterResponse{
		Type:    "error",
		Message: message,
	}
	s.Conn.WriteJSON(resp)
}

// HandleIMUData serves live IMU data via REST API
// Query parameter: ?imu=left or ?imu=right (defaults to left)
func HandleIMUData(w http.ResponseWriter, r *http.Request) {
	serveIMUData(sensors.GetIMUManager(), w, r)
}

func serveIMUData(mgr registerBackend, w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	imuID, ok := sideParam(r)
	if !ok {
		http.Error(w, `{"error": "invalid imu parameter, use 'left' or 'right'"}`, http.StatusBadRequest)
		return
	}

	sample, err := mgr.ReadIMU(imuID)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error": %q}`, err.Error()), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(sample)
}

// isRegisterWritable checks if a register address is in the allowed write
// ranges. No ranges means no writes.
func isRegisterWritable(addr byte, allowed []config.Range) bool {
	for _, r := range allowed {
		if addr >= r.Lo && addr <= r.Hi {
			return true
		}
	}
	return false
}
