// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/AleutianAI/AleutianSentinel/services/agent"
	"github.com/spf13/cobra"
)

func newDecideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decide <topic>",
		Short: "Run the decision pipeline on a running sentinel server",
		Args:  cobra.ExactArgs(1),
		Run:   runDecideCommand,
	}
}

func runDecideCommand(_ *cobra.Command, args []string) {
	topic := args[0]
	fmt.Printf("Requesting decision for topic '%s' from %s\n", topic, serverURL)
	fmt.Println("---")

	resp, err := sendDecisionRequest(topic)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("Incident:   %s\n", resp.IncidentID)
	fmt.Printf("Topic:      %s\n", resp.Topic)
	fmt.Printf("Severity:   %s (confidence %.2f)\n", resp.Severity, resp.Confidence)
	fmt.Printf("Summary:    %s\n", resp.Summary)
	fmt.Printf("Rationale:  %s\n", resp.Rationale)

	if len(resp.Actions) > 0 {
		fmt.Println("\nActions:")
		for i, a := range resp.Actions {
			fmt.Printf("%d. [P%.0f] %s (%s) - %s\n", i+1, a.Priority, a.Title, a.Owner, a.Description)
		}
	}
	if len(resp.Validator.CriticalWarnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range resp.Validator.CriticalWarnings {
			fmt.Printf("- %s\n", w)
		}
	}
	if len(resp.Checklist) > 0 {
		fmt.Println("\nChecklist:")
		for _, item := range resp.Checklist {
			fmt.Printf("- %s\n", item)
		}
	}
	fmt.Println("\n---")
}

func sendDecisionRequest(topic string) (*agent.DecisionResponse, error) {
	reqBody, err := json.Marshal(map[string]string{"topic": topic})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Post(serverURL+"/v1/decision", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, bodyBytes)
	}

	var decision agent.DecisionResponse
	if err := json.Unmarshal(bodyBytes, &decision); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &decision, nil
}
