package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string
	// SerialPort is the path to the module's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string
	// BaudRate is the baud rate for serial communication with the module (e.g. 115200)
	BaudRate int
	// SerialDriver selects the serial backend, "bugst" or "tarm"
	SerialDriver string
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string
	// ATTimeout bounds a single AT exchange; zero waits forever
	ATTimeout time.Duration
	// Echo keeps the module echoing commands back (ATE1)
	Echo bool
	// MQTTBroker is the broker URL; the MQTT bridge is disabled when empty
	MQTTBroker string
	// MQTTTopic is the topic prefix for requests and responses
	MQTTTopic string
	// MQTTClientID defaults to an ID derived from the machine ID
	MQTTClientID string
	// JWTSecret enables HS256 bearer authentication on the HTTP API
	JWTSecret string
	// Shell starts an interactive console instead of the HTTP server
	Shell bool
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	switch config.SerialDriver {
	case "bugst", "tarm":
	default:
		return nil, fmt.Errorf("unknown serial driver %q", config.SerialDriver)
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.SerialDriver = "bugst"
		c.LogLevel = "info"
		c.ATTimeout = 10 * time.Second
		c.MQTTTopic = "espat"
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if driver := os.Getenv("SERIAL_DRIVER"); driver != "" {
			c.SerialDriver = driver
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if timeout := os.Getenv("AT_TIMEOUT"); timeout != "" {
			d, err := time.ParseDuration(timeout)
			if err != nil {
				return fmt.Errorf("AT_TIMEOUT: %w", err)
			}
			c.ATTimeout = d
		}

		if echo := os.Getenv("ECHO"); echo != "" {
			if b, err := strconv.ParseBool(echo); err == nil {
				c.Echo = b
			}
		}

		if broker := os.Getenv("MQTT_BROKER"); broker != "" {
			c.MQTTBroker = broker
		}

		if topic := os.Getenv("MQTT_TOPIC"); topic != "" {
			c.MQTTTopic = topic
		}

		if id := os.Getenv("MQTT_CLIENT_ID"); id != "" {
			c.MQTTClientID = id
		}

		if secret := os.Getenv("JWT_SECRET"); secret != "" {
			c.JWTSecret = secret
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		var err error
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "serial-driver":
				c.SerialDriver = f.Value.String()
			case "log-level":
				c.LogLevel = f.Value.String()
			case "at-timeout":
				d, perr := time.ParseDuration(f.Value.String())
				if perr != nil {
					err = fmt.Errorf("at-timeout: %w", perr)
					return
				}
				c.ATTimeout = d
			case "echo":
				c.Echo = f.Value.String() == "true"
			case "mqtt-broker":
				c.MQTTBroker = f.Value.String()
			case "mqtt-topic":
				c.MQTTTopic = f.Value.String()
			case "mqtt-client-id":
				c.MQTTClientID = f.Value.String()
			case "jwt-secret":
				c.JWTSecret = f.Value.String()
			case "shell":
				c.Shell = f.Value.String() == "true"
			}
		})
		return err
	}
}
