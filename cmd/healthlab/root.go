package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/healthlab/pkg/common/logger"
	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"github.com/synaptica-ai/healthlab/pkg/common/outcome"
)

func newRootCmd(a *app) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "healthlab",
		Short: "Heuristic health-risk scoring and report generation",
		Long: `healthlab scores disease risk from a few patient attributes, summarizes uploaded
datasets and classifies medical text. Results are illustrative only and are not a
medical diagnosis.

Run without a subcommand to start the interactive menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.Log.SetOutput(cmd.ErrOrStderr())
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(a, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print results as JSON")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newScoreCmd(a), newAnalyzeCmd(a), newClassifyCmd(a), newCategoriesCmd(a), newMenuCmd(a))
	return root
}

func newScoreCmd(a *app) *cobra.Command {
	var (
		profile models.RiskProfile
		gender  string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score disease risk",
		Example: `  healthlab score --age 65 --gender 男 --symptoms "胸痛, 呼吸困难" --smoking
  healthlab score --age 30 --gender female --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile.Gender = models.Gender(gender)
			result, err := a.scorer.Score(profile)
			if err != nil {
				return err
			}
			return a.printRisk(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.IntVar(&profile.Age, "age", 0, "age in years (0-120)")
	f.StringVar(&gender, "gender", "", "male/female or 男/女")
	f.StringVar(&profile.Symptoms, "symptoms", "", "free-text symptom description")
	f.BoolVar(&profile.FamilyHistory, "family-history", false, "family history of disease")
	f.BoolVar(&profile.Smoking, "smoking", false, "smoker")
	f.BoolVar(&profile.Alcohol, "alcohol", false, "regular alcohol use")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("gender")
	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		cfg   models.AnalysisConfig
		level string
	)
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Summarize a .csv, .tsv, .txt, .xlsx or .json dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.PrivacyLevel = models.PrivacyLevel(level)
			result, err := a.analyzeFile(args[0], cfg)
			if err != nil {
				return err
			}
			return a.printAnalysis(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&cfg.FederatedLearning, "federated", true, "simulate federated training")
	f.BoolVar(&cfg.PrivacyProtection, "privacy", true, "apply privacy protection")
	f.StringVar(&level, "privacy-level", "high", "privacy level: low, medium or high")
	return cmd
}

func newClassifyCmd(a *app) *cobra.Command {
	var text, category string
	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify medical text; reads stdin when no text is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				text = args[0]
			} else if text == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(raw)
			}
			result, err := a.classifier.Classify(text, category)
			if err != nil {
				return err
			}
			return a.printText(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "text to classify")
	cmd.Flags().StringVarP(&category, "category", "c", a.classifier.DefaultCategory(), "text category")
	return cmd
}

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List text categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := a.classifier.Categories()
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"categories": names,
					"default":    a.classifier.DefaultCategory(),
				})
			}
			for _, name := range names {
				marker := ""
				if name == a.classifier.DefaultCategory() {
					marker = " (默认)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", name, marker)
			}
			return nil
		},
	}
}

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(a, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// softMessage renders an engine failure inline for the interactive menu.
func softMessage(err error) string {
	if _, ok := outcome.KindOf(err); ok {
		return outcome.SoftFailure(err).Message
	}
	return strings.TrimSpace(err.Error())
}
