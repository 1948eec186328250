package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	eggguardian "github.com/Hao-Tec/egg-guardian"
)

func main() {
	agent, err := eggguardian.Conf("../../data/agent.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := agent.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("agent exited: %v", err)
	}
}
