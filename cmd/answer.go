package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/applypilot/applypilot/internal/forms"
	"github.com/applypilot/applypilot/internal/jobs"
	"github.com/applypilot/applypilot/internal/logger"
)

var answerCmd = &cobra.Command{
	Use:   "answer \"question\"",
	Short: "Resolve a form question through the cache, keyword matching and AI fallback",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		answer(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(answerCmd)

	answerCmd.Flags().StringSliceP("options", "o", nil, "options presented by the form, comma separated")
	answerCmd.Flags().StringP("error", "e", "", "validation error message from a rejected submit")
	answerCmd.Flags().String("job-description", "", "file with the job description (text, markdown or html)")
	answerCmd.Flags().Bool("no-persist", false, "do not store generated answers")
	answerCmd.Flags().BoolP("interactive", "i", false, "ask for a manual answer when resolution fails")
}

func answer(cmd *cobra.Command, question string) {
	ctx := context.Background()

	logg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logg.Fatal("getting a config", zap.Error(err))
	}

	thresholds, err := getThresholds()
	if err != nil {
		logg.Fatal("reading matching thresholds", zap.Error(err))
	}

	options, _ := cmd.Flags().GetStringSlice("options")
	errorContext, _ := cmd.Flags().GetString("error")
	jobDescriptionFile, _ := cmd.Flags().GetString("job-description")
	noPersist, _ := cmd.Flags().GetBool("no-persist")
	interactive, _ := cmd.Flags().GetBool("interactive")

	jobDescription, err := loadJobDescription(jobDescriptionFile)
	if err != nil {
		logg.Fatal("loading job description", zap.Error(err))
	}

	store := openStore(config, logg)
	resolver := forms.NewOptionResolver(thresholds, logg)
	matcher := forms.NewMatcher(store, resolver, thresholds, logg)

	var jobKeywords []string
	if jobDescription != "" {
		jobKeywords = jobs.Posting{Description: jobDescription}.Keywords()
	}

	result, ok := matcher.Match(forms.MatchRequest{
		Question:     question,
		Options:      options,
		ErrorContext: errorContext,
		JobKeywords:  jobKeywords,
	})

	if !ok {
		result, ok = generateAnswer(ctx, config, logg, store, resolver, forms.GenerateRequest{
			Question:       question,
			Options:        options,
			ErrorContext:   errorContext,
			JobDescription: jobDescription,
			Persist:        !noPersist,
		})
	}

	if !ok && interactive {
		result, ok = manualAnswer(question, options)
		if ok && !noPersist {
			store.Put(forms.NormalizeKey(question), result, options, forms.SourceManual)
		}
	}

	if !ok {
		logg.Fatal("question left unresolved", zap.String("question", question))
	}

	fmt.Println(result)
}

// generateAnswer wires the AI fallback lazily: the Gemini client is only
// built on a cache miss, so cache hits need no credentials at all.
func generateAnswer(ctx context.Context, config *Config, logg *zap.Logger, store *forms.Store, resolver *forms.OptionResolver, req forms.GenerateRequest) (string, bool) {
	completion, err := newCompletion(ctx, config, logg)
	if err != nil {
		logg.Warn("ai fallback unavailable", zap.Error(err))
		return "", false
	}

	resume, resumeMime, err := loadResume(config)
	if err != nil {
		logg.Warn("continuing without resume attachment", zap.Error(err))
	}

	maxLogLen := 0
	if config.AI != nil && config.AI.Gemini != nil {
		maxLogLen = config.AI.Gemini.MaxLogLength
	}

	generator := forms.NewGenerator(completion, store, resolver, resume, resumeMime, logg, maxLogLen)
	return generator.Generate(ctx, req)
}

func manualAnswer(question string, options []string) (string, bool) {
	if len(options) > 0 {
		prompt := promptui.Select{
			Label: question,
			Items: options,
		}
		_, answer, err := prompt.Run()
		if err != nil {
			return "", false
		}
		return answer, true
	}

	prompt := promptui.Prompt{
		Label: question,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("answer must not be empty")
			}
			return nil
		},
	}
	answer, err := prompt.Run()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(answer), true
}
