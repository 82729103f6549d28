package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"webpconv/internal/config"
	"webpconv/internal/convert"
	"webpconv/internal/ledger"
	"webpconv/internal/logger"
	"webpconv/internal/model"
	"webpconv/internal/selection"
)

type rootFlags struct {
	outPath        string
	listFile       string
	optionsFile    string
	verbose        bool
	output         string
	quality        int
	lossless       bool
	nearLossless   bool
	effort         int
	smartSubsample bool
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "webpconv [flags] image...",
		Short: "Отправляет изображения сервису конвертации в WebP и сохраняет результат",
		Long: `webpconv отправляет выбранные изображения сервису конвертации и
сохраняет результат: одиночный .webp либо .zip-архив. Не-изображения
среди аргументов молча пропускаются.

Адрес сервиса берется из CONVERT_BASE_URL (по умолчанию
http://localhost:8080), .env-файл в рабочем каталоге подхватывается.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, flags)
		},
	}

	rootCmd.Flags().StringVarP(&flags.outPath, "out", "o", "", "Файл или каталог для результата (по умолчанию - имя от сервиса в текущем каталоге)")
	rootCmd.Flags().StringVarP(&flags.listFile, "list", "l", "", "Читать пути из файла, '-' - из stdin")
	rootCmd.Flags().StringVarP(&flags.optionsFile, "options", "c", "", "TOML-файл с дефолтами опций конвертации")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Отладочный вывод")

	rootCmd.Flags().StringVar(&flags.output, "output", string(model.OutputAuto), "Упаковка результата: auto или zip")
	rootCmd.Flags().IntVarP(&flags.quality, "quality", "q", model.DefaultOptions().Quality, "Качество 1-100")
	rootCmd.Flags().BoolVar(&flags.lossless, "lossless", false, "Кодировать без потерь")
	rootCmd.Flags().BoolVar(&flags.nearLossless, "near-lossless", false, "Кодировать почти без потерь")
	rootCmd.Flags().IntVarP(&flags.effort, "effort", "e", model.DefaultOptions().Effort, "Усилие кодирования 0-6")
	rootCmd.Flags().BoolVar(&flags.smartSubsample, "smart-subsample", false, "Умный сабсэмплинг цветности")

	rootCmd.MarkFlagsMutuallyExclusive("lossless", "near-lossless")

	rootCmd.AddCommand(newHealthCommand())

	return rootCmd
}

func runConvert(cmd *cobra.Command, args []string, flags rootFlags) error {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	if flags.verbose {
		cfg.Logger.Level = slog.LevelDebug
	}
	logger.SetupDefault(cfg.Logger)

	paths := args
	if flags.listFile != "" {
		paths, err = loadPathsFromFile(flags.listFile)
		if err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("image files required")
	}

	opts, err := resolveOptions(cmd, flags)
	if err != nil {
		return err
	}

	ldg, err := ledger.New()
	if err != nil {
		return err
	}
	defer ldg.Close()

	store := selection.NewStore(ldg)
	client := convert.NewClient(&http.Client{Timeout: cfg.Service.Timeout}, cfg.Service.BaseURL)
	session := convert.NewSession(client, store, ldg)
	session.SetOptions(opts)

	if _, err := store.Add(paths); err != nil {
		return err
	}
	if store.Count() == 0 {
		return model.ErrNoFilesSelected
	}

	printSelection(cmd.OutOrStdout(), store)

	if err := session.Submit(cmd.Context()); err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	res, _ := session.Result()
	dest, err := saveArtifact(res, flags.outPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", dest, res.MediaType)
	return nil
}

// resolveOptions складывает опции: встроенные дефолты, поверх них TOML-файл,
// поверх него явно переданные флаги.
func resolveOptions(cmd *cobra.Command, flags rootFlags) (model.Options, error) {
	opts := model.DefaultOptions()

	if flags.optionsFile != "" {
		var err error
		opts, err = config.LoadOptions(flags.optionsFile)
		if err != nil {
			return opts, err
		}
	}

	if cmd.Flags().Changed("output") {
		opts.Output = model.OutputMode(flags.output)
	}
	if cmd.Flags().Changed("quality") {
		opts.Quality = flags.quality
	}
	if cmd.Flags().Changed("effort") {
		opts.Effort = flags.effort
	}
	if cmd.Flags().Changed("smart-subsample") {
		opts.SmartSubsample = flags.smartSubsample
	}
	if cmd.Flags().Changed("lossless") {
		opts.SetLossless(flags.lossless)
	}
	if cmd.Flags().Changed("near-lossless") {
		opts.SetNearLossless(flags.nearLossless)
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func loadPathsFromFile(fileName string) ([]string, error) {
	input := os.Stdin
	if fileName != "-" {
		var err error
		input, err = os.Open(fileName)
		if err != nil {
			return nil, err
		}
		defer input.Close()
	}
	return scanPaths(input)
}
