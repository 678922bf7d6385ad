package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the mutating-operation audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.audit == nil {
			return fmt.Errorf("audit logging is not available")
		}
		events, err := app.audit.Query()
		if err != nil {
			return fmt.Errorf("reading audit log: %w", err)
		}
		if app.jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(events)
		}
		for _, e := range events {
			status := "ok"
			if !e.Success {
				status = "FAIL: " + e.Reason
			}
			fmt.Printf("%s  %-24s %-12s %-20s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Component, e.Action, e.Target, status)
		}
		return nil
	},
}

