package main

import (
	"bufio"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	eggguardian "github.com/Hao-Tec/egg-guardian"
)

//go:embed assets/banner_color.ansi
var bannerColor string

//go:embed assets/banner_plain.txt
var bannerPlain string

func main() {
	fmt.Print(selectBanner())
	fmt.Println()
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "simulate":
		err = simulateCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("egg-agent %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/agent.yaml", "Path to agent configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Optional .env carrying EGG_MQTT_USERNAME / EGG_MQTT_PASSWORD.
	_ = godotenv.Load()

	agent, err := eggguardian.Conf(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return agent.Run(ctx)
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/agent.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := eggguardian.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good ✅\n", *cfgPath)
	return nil
}

func selectBanner() string {
	if os.Getenv("NO_COLOR") != "" {
		return bannerPlain
	}
	return bannerColor
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"egg_temperature_celsius":     0,
		"egg_connection_state":        0,
		"egg_buffer_length":           0,
		"egg_samples_published_total": 0,
		"egg_samples_lost_total":      0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %f", &value); err == nil {
					targets[key] = value
				}
			}
			// The loss counter carries a cause label; sum every series.
			if key == "egg_samples_lost_total" && strings.HasPrefix(line, key+"{") {
				if idx := strings.LastIndex(line, " "); idx > 0 {
					var value float64
					if _, err := fmt.Sscanf(line[idx+1:], "%f", &value); err == nil {
						targets[key] += value
					}
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] temp=%.2f°C state=%s buffered=%.0f published=%.0f lost=%.0f\n",
		time.Now().Format(time.RFC3339),
		targets["egg_temperature_celsius"],
		eggguardian.ConnState(targets["egg_connection_state"]),
		targets["egg_buffer_length"],
		targets["egg_samples_published_total"],
		targets["egg_samples_lost_total"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`Egg Guardian CLI

Usage:
  egg-agent <command> [flags]

Commands:
  run        Start the telemetry agent using the provided config
  validate   Load and validate a config file without starting the agent
  simulate   Publish synthetic incubator telemetry against a broker
  stats      Poll the Prometheus metrics endpoint and print live readings

Examples:
  egg-agent run -config ./data/agent.yaml
  egg-agent validate -config ./data/agent.yaml
  egg-agent simulate -count 3 -rate 2 -duration 1m
  egg-agent stats -url http://localhost:9100/metrics -interval 1s
`)
}
