package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdf-role-chat/internal/service"
	"pdf-role-chat/internal/session"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <files...>",
	Short: "Index documents and suggest questions about them",
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

		inputs, closeFiles, err := openFiles(args)
		if err != nil {
			return err
		}
		defer closeFiles()

		sess := a.svc.Sessions().New()
		res := a.svc.Upload(cmd.Context(), sess, p, inputs)

		w := cmd.OutOrStdout()
		if ok, err := emit(w, res); ok {
			return err
		}
		printWarnings(cmd.ErrOrStderr(), res.Warnings...)
		printTitle(w, "Documents")
		for _, d := range res.Documents {
			fmt.Fprintf(w, "  %s (%d pages)\n", d.Name, d.Pages)
		}
		fmt.Fprintf(w, "  %d chunks indexed\n", res.Chunks)
		if len(res.Suggestions) > 0 {
			printTitle(w, "Suggested questions")
			printList(w, res.Suggestions)
		}
		if len(res.Keywords) > 0 {
			printTitle(w, "Keywords")
			printList(w, res.Keywords)
		}
		return nil
	},
}

// loadSession reads files into a fresh session without touching the index.
func loadSession(cmd *cobra.Command, a *app, files []string, p service.Persona) (*session.Session, error) {
	inputs, closeFiles, err := openFiles(files)
	if err != nil {
		return nil, err
	}
	defer closeFiles()

	sess := a.svc.Sessions().New()
	res := a.svc.Ingest(cmd.Context(), sess, p.Language, inputs, service.IngestOptions{SkipIndex: true})
	printWarnings(cmd.ErrOrStderr(), res.Warnings...)
	return sess, nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
