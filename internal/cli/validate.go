package cli

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/7h3v01c3/PhishBait/internal/config"
	"github.com/7h3v01c3/PhishBait/internal/engine"
	filecontent "github.com/7h3v01c3/PhishBait/internal/infra/file"
)

// NewValidateCmd lints the content directory: every question record must pass
// the normalizer's integrity checks so a bad correct index is caught in
// content review, not at play time.
func NewValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the quiz content directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			contentDir := cfg.Content.Dir
			if contentDir == "" {
				contentDir = "data"
			}

			loader := filecontent.NewContentLoader(contentDir)
			pack, err := loader.LoadContent(cmd.Context(), cfg.Content.Pack)
			if err != nil {
				return err
			}

			rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
			questions, err := engine.BuildSession(pack.Questions, rnd, cfg.Quiz.MaxQuestions)
			if err != nil {
				return err
			}

			fmt.Printf("content ok: %d questions (%d per session), %d ranking tiers\n",
				len(pack.Questions), len(questions), len(pack.Rankings.Tiers))
			return nil
		},
	}
}
