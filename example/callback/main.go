package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/Hao-Tec/egg-guardian/pkg/eggguardian"
)

func main() {
	agent, err := eggguardian.Conf("../../data/agent.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	callback := func(topic string, payload []byte) error {
		var tel eggguardian.Telemetry
		if err := json.Unmarshal(payload, &tel); err != nil {
			return err
		}
		fmt.Printf("%s device=%s temp=%s°C\n", tel.TS, tel.DeviceID, tel.TempC)
		return nil
	}

	if err := agent.Run(ctx, eggguardian.DeliverCallback("stdout", callback)); err != nil && err != context.Canceled {
		log.Fatalf("agent error: %v", err)
	}
}
