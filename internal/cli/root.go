// Package cli implements the pdf-role-chat command line.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/models"
	"pdf-role-chat/internal/service"
)

var (
	cfgFile    string
	role       string
	customRole string
	langCode   string
	jsonOutput bool

	currentConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "pdf-role-chat",
	Short:         "Role-conditioned question answering over your PDFs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		level, err := zerolog.ParseLevel(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
		}
		zerolog.SetGlobalLevel(level)
		log.Debug().Str("config", cfgFile).Str("backend", cfg.VectorStore.Backend).Msg("Loaded config")

		currentConfig = cfg
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "configs/config.yaml", "config file")
	rootCmd.PersistentFlags().StringVarP(&role, "role", "r", "", "preset role the assistant plays")
	rootCmd.PersistentFlags().StringVar(&customRole, "custom-role", "", "free-text role, overrides --role")
	rootCmd.PersistentFlags().StringVarP(&langCode, "lang", "l", string(models.LanguageTurkish), "answer language (tr, en)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

func getConfig() *config.Config {
	return currentConfig
}

// persona builds the role and language of the current invocation.
func persona() (service.Persona, error) {
	lang, err := models.ParseLanguage(langCode)
	if err != nil {
		return service.Persona{}, err
	}
	p := service.Persona{Role: role, CustomRole: customRole, Language: lang}
	if p.Role == "" && p.CustomRole == "" {
		if roles := getConfig().Roles; len(roles) > 0 {
			p.Role = roles[0]
		}
	}
	return p, nil
}
