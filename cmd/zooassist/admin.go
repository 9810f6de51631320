package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"zoo-assistant/internal/assembly"
	"zoo-assistant/internal/config"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/extraction"
	pg "zoo-assistant/internal/infra/db/postgres"
	"zoo-assistant/internal/infra/logging"
)

func buildMigrateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flags.configPath, flags.dev)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger := logging.New(cfg.Log, cfg.Runtime.Dev)

			pool, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pg.ApplySchema(cmd.Context(), pool); err != nil {
				return err
			}
			logger.Info().Msg("schema applied")
			return nil
		},
	}
}

func buildSeedCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Apply the schema and load starter animals and entity settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flags.configPath, flags.dev)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger := logging.New(cfg.Log, cfg.Runtime.Dev)

			pool, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pg.ApplySchema(cmd.Context(), pool); err != nil {
				return err
			}
			if err := pg.Seed(cmd.Context(), pool); err != nil {
				return err
			}
			logger.Info().Int("animals", len(pg.DefaultAnimals)).Msg("seed complete")
			return nil
		},
	}
}

type extractOutput struct {
	Text     string                  `json:"text"`
	Entities []model.EntitySpan      `json:"entities"`
	Record   *model.StructuredRecord `json:"structured_data"`
}

// extract runs the rule extractor offline, without config or database.
func buildExtractCommand() *cobra.Command {
	var rulesPath string
	var types []string

	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract entities from text (arguments or stdin) and print JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(b)
			}
			text = strings.TrimSpace(text)
			if text == "" {
				return fmt.Errorf("no text given")
			}

			rules, err := extraction.LoadRules(rulesPath)
			if err != nil {
				return err
			}
			if len(types) == 0 {
				types = model.KnownEntityTypes
			}
			spans, err := extraction.NewRuleExtractor(rules).Extract(cmd.Context(), text, types)
			if err != nil {
				return err
			}
			if spans == nil {
				spans = []model.EntitySpan{}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(extractOutput{
				Text:     text,
				Entities: spans,
				Record:   assembly.New().Assemble(spans, text),
			})
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "", "rule table YAML (default: embedded)")
	cmd.Flags().StringSliceVar(&types, "types", nil, "entity types to extract (default: all)")
	return cmd
}
