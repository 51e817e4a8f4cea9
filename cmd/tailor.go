package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/applypilot/applypilot/internal/jobs"
	"github.com/applypilot/applypilot/internal/logger"
	"github.com/applypilot/applypilot/internal/resume"
)

const defaultArtifactsDir = "resumes"

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Generate a resume tailored to a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		tailor(cmd)
	},
}

func init() {
	rootCmd.AddCommand(tailorCmd)

	tailorCmd.Flags().String("job-description", "", "file with the job description (text, markdown or html)")
	tailorCmd.Flags().String("title", "", "job title, used in the artifact name")
	tailorCmd.Flags().String("company", "", "company name, used in the artifact name")

	tailorCmd.MarkFlagRequired("job-description")
}

func tailor(cmd *cobra.Command) {
	ctx := context.Background()

	logg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logg.Fatal("getting a config", zap.Error(err))
	}

	jobDescriptionFile, _ := cmd.Flags().GetString("job-description")
	title, _ := cmd.Flags().GetString("title")
	company, _ := cmd.Flags().GetString("company")

	description, err := loadJobDescription(jobDescriptionFile)
	if err != nil {
		logg.Fatal("loading job description", zap.Error(err))
	}

	base, baseMime, err := loadResume(config)
	if err != nil {
		logg.Fatal("loading base resume", zap.Error(err))
	}
	if len(base) == 0 {
		logg.Fatal("a base resume is required", zap.Error(errors.New("set resume-file in the configuration")))
	}

	completion, err := newCompletion(ctx, config, logg)
	if err != nil {
		logg.Fatal("building ai client", zap.Error(err))
	}

	outDir := config.ArtifactsDir
	if outDir == "" {
		outDir = defaultArtifactsDir
	}

	tailor := resume.NewTailor(completion, base, baseMime, outDir, logg)
	path, err := tailor.Generate(ctx, jobs.Posting{
		Title:       title,
		Company:     company,
		Description: description,
	})
	if err != nil {
		logg.Fatal("generating tailored resume", zap.Error(err))
	}

	fmt.Println(path)
}
