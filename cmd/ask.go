package cmd

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/najihhome/rfidrag/internal/app"
)

var askGenerate bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question from the command line",
	Long: `Answer a single question from the command line.

Without --generate a strong local match returns the stored answer
verbatim. With --generate the language model rephrases the retrieved
context, or answers on its own when nothing relevant is stored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd, strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().BoolVar(&askGenerate, "generate", false, "rephrase answers with the language model")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, question string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("starting application: %w", err)
	}

	answer, err := a.Router.Ask(ctx, question, askGenerate)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Answer)
	fmt.Fprintf(out, "\nconfidence: %.2f  mode: %s\n", answer.Confidence, answer.Mode)
	for _, src := range answer.Sources {
		if src != nil {
			fmt.Fprintf(out, "source: %s\n", *src)
		}
	}

	return nil
}
