package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Hao-Tec/egg-guardian/internal/adapters/sensor"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/transport"
	"github.com/Hao-Tec/egg-guardian/internal/domain"
	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// simDevice is one synthetic incubator publishing on its own topic. All
// devices share a single broker session, like a fleet behind one gateway.
type simDevice struct {
	id     string
	topic  string
	sensor ports.Sensor
}

func simulateCommand(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	count := fs.Int("count", 1, "Number of simulated devices")
	rate := fs.Float64("rate", 1.0, "Messages per second per device")
	duration := fs.Duration("duration", 30*time.Second, "How long to run")
	host := fs.String("host", "localhost", "Broker host")
	port := fs.Int("port", 11883, "Broker port")
	prefix := fs.String("prefix", "eggpod", "Device ID prefix")
	username := fs.String("username", "", "Broker username")
	password := fs.String("password", "", "Broker password")
	baseC := fs.Float64("base", 37.5, "Setpoint temperature in °C")
	varianceC := fs.Float64("variance", 2.0, "Noise amplitude in °C")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("count must be >= 1")
	}
	if *rate <= 0 {
		return fmt.Errorf("rate must be > 0")
	}

	// Credentials fall back to the same .env the agent reads.
	_ = godotenv.Load()
	if *username == "" {
		*username = os.Getenv("EGG_MQTT_USERNAME")
	}
	if *password == "" {
		*password = os.Getenv("EGG_MQTT_PASSWORD")
	}

	tr, err := transport.NewMQTT(transport.Config{
		Host:     *host,
		Port:     *port,
		Username: *username,
		Password: *password,
		ClientID: fmt.Sprintf("simulator-%04d", 1000+rand.Intn(9000)),
		QoS:      1,
	})
	if err != nil {
		return err
	}
	defer tr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	if err := tr.Connect(ctx); err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}

	devices := make([]simDevice, *count)
	for i := range devices {
		id := *prefix
		if *count > 1 {
			id = fmt.Sprintf("%s-%02d", *prefix, i+1)
		}
		devices[i] = simDevice{
			id:     id,
			topic:  domain.TelemetryTopic(id),
			sensor: sensor.NewSim(*baseC, *varianceC, ports.RealClock{}),
		}
	}

	fmt.Printf("Simulating %d device(s) against %s at %.1f msg/s each for %s\n",
		*count, addr, *rate, *duration)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / *rate))
	defer ticker.Stop()
	deadline := time.After(*duration)

	var published, failed int
	summary := func() {
		fmt.Printf("\nDone: published=%d failed=%d\n", published, failed)
	}

	for {
		select {
		case <-ctx.Done():
			summary()
			return nil
		case <-deadline:
			summary()
			return nil
		case <-ticker.C:
			for _, d := range devices {
				s, err := d.sensor.Read(ctx)
				if err != nil {
					failed++
					continue
				}
				payload, err := json.Marshal(domain.NewTelemetry(d.id, s))
				if err != nil {
					failed++
					continue
				}
				if err := tr.Publish(ctx, d.topic, payload); err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "publish %s: %v\n", d.topic, err)
					continue
				}
				published++
				fmt.Printf("%s %s\n", d.topic, payload)
			}
		}
	}
}
