package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	clientsync "github.com/iudanet/vitrina/internal/client/sync"
)

func newSyncCommand(get func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay changes made while the record store was unreachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().runSync(cmd)
		},
	}
}

func (c *Cli) runSync(cmd *cobra.Command) error {
	ctx := cmd.Context()
	c.io.Println("=== Synchronization ===")

	s, err := c.connect(ctx, true)
	if err != nil {
		return err
	}

	result, err := s.Sync.Sync(ctx)
	if errors.Is(err, clientsync.ErrRemoteUnavailable) {
		pending, perr := s.Sync.GetPendingSyncCount(ctx)
		if perr == nil {
			c.io.Printf("Record store unreachable, %d change(s) still pending.\n", pending)
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	c.io.Println()
	tw := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tPUSHED\tADOPTED\tPATCHED\tDELETED\tPRUNED\tREJECTED\tFAILED")
	for _, k := range result.Kinds {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			k.Kind, k.Pushed, k.Adopted, k.Patched, k.Deleted, k.Pruned, k.Rejected, k.Failed)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	c.io.Println()

	if len(result.Skipped) > 0 {
		c.io.Printf("⚠️  Skipped (record store unreachable): %s\n", strings.Join(result.Skipped, ", "))
	}
	if result.Rejected > 0 {
		c.io.Printf("⚠️  %d offline edit(s) rejected by the record store and discarded\n", result.Rejected)
	}
	if result.Failed > 0 {
		c.io.Printf("⚠️  %d operation(s) failed and will be retried on the next sync\n", result.Failed)
	}
	if len(result.Skipped) == 0 && result.Failed == 0 {
		c.io.Println("✓ Synchronization completed successfully!")
	}

	return nil
}
