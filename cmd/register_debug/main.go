// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/ism330_computer/internal/app"
	"github.com/relabs-tech/ism330_computer/internal/config"
	"github.com/relabs-tech/ism330_computer/internal/sensors"
)

func main() {
	log.Println("starting ISM330DHCX register debug tool (standalone)")

	if err := config.InitGlobal("inertial_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	log.Println("Initializing IMU manager...")
	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		log.Fatalf("IMU initialization failed: %v", err)
	}
	defer imuManager.Close()

	if imuManager.IsLeftIMUAvailable() {
		log.Println("Left IMU available")
	} else {
		log.Println("Warning: Left IMU not available")
	}

	if imuManager.IsRightIMUAvailable() {
		log.Println("Right IMU available")
	} else {
		log.Println("Warning: Right IMU not available")
	}

	http.HandleFunc("/ws", app.HandleRegisterDebugWS)

	// API endpoint for live IMU data
	http.HandleFunc("/api/imu", app.HandleIMUData)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", cfg.RegisterDebugPort)
	log.Printf("Register debug tool listening on %s", addr)
	log.Printf("Open http://localhost%s in your browser", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
