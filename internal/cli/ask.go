package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pdf-role-chat/internal/models"
	"pdf-role-chat/internal/service"
)

var refineMode string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the indexed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd, strings.Join(args, " "), "")
	},
}

var refineCmd = &cobra.Command{
	Use:   "refine <question>",
	Short: "Ask a question, then elaborate or simplify the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd, strings.Join(args, " "), models.RefineMode(refineMode))
	},
}

func runAsk(cmd *cobra.Command, question string, mode models.RefineMode) error {
	p, err := persona()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), getConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.svc.Sessions().New()
	answer := a.svc.Ask(cmd.Context(), sess, p, question)

	var refined service.TextResult
	if mode != "" && answer.Warning == "" {
		refined = a.svc.Refine(cmd.Context(), sess, p, mode)
	}

	w := cmd.OutOrStdout()
	if ok, err := emit(w, struct {
		service.AnswerResult
		Refined *service.TextResult `json:"refined,omitempty"`
	}{answer, refinedOrNil(mode, refined)}); ok {
		return err
	}

	printWarnings(cmd.ErrOrStderr(), answer.Warning)
	if answer.Answer == "" {
		return nil
	}
	printTitle(w, "Answer")
	fmt.Fprintln(w, answer.Answer)
	printTitle(w, "Sources")
	printReferences(w, answer.References)

	if mode != "" {
		printWarnings(cmd.ErrOrStderr(), refined.Warning)
		if refined.Text != "" {
			printTitle(w, "Refined answer")
			fmt.Fprintln(w, refined.Text)
		}
	}
	return nil
}

func refinedOrNil(mode models.RefineMode, res service.TextResult) *service.TextResult {
	if mode == "" {
		return nil
	}
	return &res
}

func init() {
	refineCmd.Flags().StringVarP(&refineMode, "mode", "m", string(models.RefineElaborate), "elaborate or simplify")
	rootCmd.AddCommand(askCmd, refineCmd)
}
