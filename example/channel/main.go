package main

import (
	"context"
	"fmt"
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

	transport, messages := eggguardian.NewChannelTransport("fanout", 32)

	go fanoutWorker("ingest", messages)

	// Runtime shutdown closes the transport, which ends the worker's range.
	if err := agent.Run(ctx, eggguardian.DeliverTransport(transport)); err != nil && err != context.Canceled {
		log.Fatalf("agent error: %v", err)
	}
}

func fanoutWorker(name string, messages <-chan eggguardian.Published) {
	for msg := range messages {
		fmt.Printf("[%s] %s %s\n", name, msg.Topic, msg.Payload)
		// TODO: forward to downstream DB/API.
	}
}
