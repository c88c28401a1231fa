package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	drapp "github.com/dailyreason/dailyreason/internal/app"
	"github.com/dailyreason/dailyreason/internal/service"
	"github.com/dailyreason/dailyreason/internal/storage"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored reason and its CMS entry link",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	svc, cleanup, err := drapp.NewService(cmd.Context(), drapp.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer cleanup()

	status, err := svc.Status(cmd.Context())
	if errors.Is(err, storage.ErrNotFound) {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "No reason has been stored yet.")
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	return renderStatus(cmd, status)
}

func renderStatus(cmd *cobra.Command, status *service.Status) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Field", "Value")

	rows := [][]string{
		{"Key", status.Record.Key},
		{"Reason", status.Record.Reason},
		{"Generated", status.Record.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Updated", status.Record.UpdatedAt.UTC().Format(time.RFC3339)},
	}
	if status.Link != nil {
		rows = append(rows,
			[]string{"Contentful entry", status.Link.ContentfulID},
			[]string{"Linked", status.Link.UpdatedAt.UTC().Format(time.RFC3339)},
		)
	} else {
		rows = append(rows, []string{"Contentful entry", "-"})
	}

	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build status table: %w", err)
	}
	return table.Render()
}
