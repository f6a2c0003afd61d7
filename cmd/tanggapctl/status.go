package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/linnemanlabs/tanggap/internal/complaint"
)

func statusCmd() *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status [tracking-id]",
		Short: "Show the current state of a complaint",
		Long: `Fetch a complaint from a running tanggap server by tracking ID.

Examples:
  tanggapctl status TG-2026-0042
  tanggapctl status TG-2026-0042 --server https://tanggap.example.go.id -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			c, err := fetchComplaint(ctx, http.DefaultClient, server, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputFmt == "json" {
				return printJSON(out, c)
			}
			rows := [][2]string{
				{"Tracking ID", c.TrackingID},
				{"Status", fmt.Sprintf("%s (%s)", c.Status.Label(), c.Status)},
				{"Priority", c.Priority.Label()},
				{"Category", c.Category},
				{"Location", c.Location},
				{"Sentiment", c.Sentiment},
				{"Created", c.CreatedAt.Format(time.RFC3339)},
				{"Updated", c.UpdatedAt.Format(time.RFC3339)},
			}
			if c.AdminNotes != "" {
				rows = append(rows, [2]string{"Notes", c.AdminNotes})
			}
			return printRows(out, rows)
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "http://localhost:8080", "Base URL of the tanggap API")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	return cmd
}

func fetchComplaint(ctx context.Context, client *http.Client, server, trackingID string) (*complaint.Complaint, error) {
	u := strings.TrimRight(server, "/") + "/api/v1/complaints/" + url.PathEscape(trackingID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("complaint %s not found", trackingID)
	default:
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error != "" {
			return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var c complaint.Complaint
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &c, nil
}
