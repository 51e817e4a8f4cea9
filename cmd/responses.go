package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/applypilot/applypilot/internal/logger"
)

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "List stored form responses",
	Run: func(_ *cobra.Command, _ []string) {
		responses()
	},
}

func init() {
	rootCmd.AddCommand(responsesCmd)
}

func responses() {
	logg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logg.Fatal("getting a config", zap.Error(err))
	}

	store := openStore(config, logg)

	for _, key := range store.Keys() {
		record, ok := store.Get(key)
		if !ok {
			continue
		}
		fmt.Printf("%s\n  answer: %s\n  source: %s\n  recorded: %s\n", key, record.Answer, record.Source, record.Timestamp)
	}

	fmt.Printf("%d responses in %s\n", store.Len(), store.Path())
}
