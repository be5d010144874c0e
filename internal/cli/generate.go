package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pdf-role-chat/internal/service"
	"pdf-role-chat/internal/session"
)

type textAction func(s *service.Service, ctx context.Context, sess *session.Session, p service.Persona) service.TextResult

type listAction func(s *service.Service, ctx context.Context, sess *session.Session, p service.Persona) service.ListResult

// documentCommand runs one document-wide generator over files loaded into a
// one-shot session.
func documentCommand(use, short, title string, run func(cmd *cobra.Command, a *app, sess *session.Session, p service.Persona) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <files...>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := persona()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), getConfig())
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := loadSession(cmd, a, args, p)
			if err != nil {
				return err
			}
			if !jsonOutput {
				printTitle(cmd.OutOrStdout(), title)
			}
			return run(cmd, a, sess, p)
		},
	}
}

func textCommand(use, short, title string, action textAction) *cobra.Command {
	return documentCommand(use, short, title, func(cmd *cobra.Command, a *app, sess *session.Session, p service.Persona) error {
		res := action(a.svc, cmd.Context(), sess, p)
		w := cmd.OutOrStdout()
		if ok, err := emit(w, res); ok {
			return err
		}
		printWarnings(cmd.ErrOrStderr(), res.Warning)
		if res.Text != "" {
			fmt.Fprintln(w, res.Text)
		}
		return nil
	})
}

func listCommand(use, short, title string, action listAction) *cobra.Command {
	return documentCommand(use, short, title, func(cmd *cobra.Command, a *app, sess *session.Session, p service.Persona) error {
		res := action(a.svc, cmd.Context(), sess, p)
		w := cmd.OutOrStdout()
		if ok, err := emit(w, res); ok {
			return err
		}
		printWarnings(cmd.ErrOrStderr(), res.Warning)
		printList(w, res.Items)
		return nil
	})
}

var densityCmd = documentCommand("density", "Show how many chunks each page produced", "Chunk density",
	func(cmd *cobra.Command, a *app, sess *session.Session, _ service.Persona) error {
		density := a.svc.Density(sess)
		w := cmd.OutOrStdout()
		if ok, err := emit(w, density); ok {
			return err
		}
		fmt.Fprint(w, densityChart(density))
		return nil
	})

func init() {
	rootCmd.AddCommand(
		textCommand("summarize", "Summarize documents", "Summary", (*service.Service).Summarize),
		textCommand("concept-map", "Build a Mermaid concept map of documents", "Concept map", (*service.Service).ConceptMap),
		textCommand("timeline", "Extract a timeline from documents", "Timeline", (*service.Service).Timeline),
		listCommand("keywords", "Extract keywords from documents", "Keywords", (*service.Service).Keywords),
		listCommand("suggest", "Suggest questions about documents", "Suggested questions", (*service.Service).Suggest),
		densityCmd,
	)
}
