package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/najihhome/rfidrag/internal/app"
	"github.com/najihhome/rfidrag/internal/contribution"
	"github.com/najihhome/rfidrag/internal/i18n"
)

var contributionsCmd = &cobra.Command{
	Use:   "contributions",
	Short: "Moderate the contribution queue",
}

var contributionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending contributions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		store := contribution.New(cfg.PendingPath, cfg.DatasetPath, logger)

		pending, err := store.ListPending()
		if err != nil {
			return err
		}

		if len(pending) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no pending contributions")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tAUTHOR\tSUBMITTED\tQUESTION")
		for _, it := range pending {
			author := it.Author
			if author == "" {
				author = i18n.T("author.anonymous")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				it.ID, author, it.CreatedAt.Format("2006-01-02 15:04"), it.Question)
		}
		return w.Flush()
	},
}

var contributionsApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending contribution and reindex",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		// Full setup so the approval is followed by a reindex against
		// the configured embedder.
		a, err := app.Setup(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("starting application: %w", err)
		}

		item, err := a.Contributions.Approve(args[0])
		if err != nil {
			if errors.Is(err, contribution.ErrNotFound) {
				return fmt.Errorf("contribution %q not found", args[0])
			}
			return err
		}

		if err := a.Knowledge.Reload(ctx); err != nil {
			return fmt.Errorf("approved as %s, but reindexing failed: %w", item.ID, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "approved: %s\n", item.ID)
		return nil
	},
}

var contributionsRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending contribution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		store := contribution.New(cfg.PendingPath, cfg.DatasetPath, logger)
		if err := store.Reject(args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "rejected: %s\n", args[0])
		return nil
	},
}

func init() {
	contributionsCmd.AddCommand(contributionsListCmd)
	contributionsCmd.AddCommand(contributionsApproveCmd)
	contributionsCmd.AddCommand(contributionsRejectCmd)
	rootCmd.AddCommand(contributionsCmd)
}
