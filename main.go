package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"i4.energy/across/espat/esp"
)

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func newDialer(config *Config) esp.Dialer {
	if config.SerialDriver == "tarm" {
		return esp.TarmDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		}
	}
	return esp.SerialDialer{
		PortName: config.SerialPort,
		BaudRate: config.BaudRate,
	}
}

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port the ESP-AT module is attached to")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("serial-driver", "bugst", "Serial backend (bugst, tarm)")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Duration("at-timeout", 10*time.Second, "Timeout for a single AT command (0 waits forever)")
	flag.Bool("echo", false, "Keep command echo enabled on the module")
	flag.String("mqtt-broker", "", "MQTT broker URL (e.g. mqtt://localhost:1883); disabled when empty")
	flag.String("mqtt-topic", "espat", "MQTT topic prefix")
	flag.String("mqtt-client-id", "", "MQTT client ID (derived from the machine ID by default)")
	flag.String("jwt-secret", "", "HS256 secret; enables bearer authentication on the HTTP API")
	flag.Bool("shell", false, "Run an interactive console instead of the HTTP server")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(config.LogLevel)}))

	espConfig, err := esp.NewConfigBuilder().
		WithATTimeout(config.ATTimeout).
		WithInitTimeout(30 * time.Second).
		WithEchoOn(config.Echo).
		WithLogger(logger.With("component", "esp")).
		WithDialer(newDialer(config)).
		Build()
	if err != nil {
		logger.Error("Failed to create driver config", "error", err)
		os.Exit(1)
	}

	driver, err := esp.New(context.Background(), espConfig)
	if err != nil {
		logger.Error("Failed to open module", "error", err, "port", config.SerialPort)
		os.Exit(1)
	}

	gateway := NewGateway(driver)

	if config.Shell {
		shell := NewShell(gateway)
		shell.Run()
		if err := gateway.Close(); err != nil {
			logger.Error("Failed to close module", "error", err)
		}
		return
	}

	logger.Info("Starting ESP-AT Gateway", "port", config.SerialPort, "driver", config.SerialDriver)

	var handler http.Handler = &Server{
		Logger:  logger.With("component", "server"),
		Gateway: gateway,
	}
	if config.JWTSecret != "" {
		handler = NewAuthenticator(config.JWTSecret, logger.With("component", "auth")).Middleware(handler)
	}

	httpServer := &http.Server{
		Addr:    config.BindAddress,
		Handler: handler,
	}

	var bridge *Bridge
	if config.MQTTBroker != "" {
		bridge, err = NewBridge(config.MQTTBroker, config.MQTTTopic, config.MQTTClientID, gateway, logger.With("component", "mqtt"))
		if err != nil {
			logger.Error("Failed to create MQTT bridge", "error", err)
			os.Exit(1)
		}
		if err := bridge.Connect(); err != nil {
			logger.Error("Failed to connect to MQTT broker", "error", err, "broker", config.MQTTBroker)
			os.Exit(1)
		}
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
	}

	if bridge != nil {
		logger.Info("Closing MQTT bridge")
		bridge.Close()
	}

	logger.Info("Closing module connection")
	if err := gateway.Close(); err != nil {
		logger.Error("Failed to close module", "error", err)
		os.Exit(1)
	}
}
