package main

import (
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chatgpt/internal/client"
	"chatgpt/internal/config"
	"chatgpt/internal/logger"
	"chatgpt/internal/output"
	"chatgpt/internal/session"
	"chatgpt/internal/storage"
	"chatgpt/internal/version"
)

type rootOptions struct {
	clean bool
	hint  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	v := config.New()

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Chat with a completion endpoint, keeping history between runs",
		Long: `chat sends the prompt together with the stored conversation to a chat-completion
endpoint, prints the reply and appends both to the history in ~/.chatgpt/history.json.

The endpoint, model and key are read from ~/.chatgpt/config.json, which is created with
defaults on first run. CHATGPT_URL, CHATGPT_MODEL and CHATGPT_API_KEY override it.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version.GetFormattedVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.clean, "clean", "c", false, "Clean history")
	flags.StringVarP(&opts.hint, "hint", "H", "", "Set the system hint stored with the history")
	flags.String(config.KeyLogLevel, "", "Set log level (debug|info|warn|error) [default: info]")
	flags.String(config.KeyLogFile, "", "Write logs to file instead of stderr")
	flags.String(config.KeyHome, "", "Directory holding .chatgpt [default: user home]")
	flags.String(config.KeyTimeout, "", "Request timeout, e.g. 90s or 2m [default: 120s]")
	flags.String(config.KeyRender, "", "Reply rendering (auto|plain|markdown) [default: auto]")

	for _, key := range []string{config.KeyLogLevel, config.KeyLogFile, config.KeyHome, config.KeyTimeout, config.KeyRender} {
		// Binding a flag that was just defined cannot fail.
		_ = v.BindPFlag(key, flags.Lookup(key))
	}

	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper, opts *rootOptions, args []string) error {
	// The working directory .env may set CHATGPT_HOME, so it is read before paths resolve.
	workDir, _ := os.Getwd()
	loaded, err := config.LoadDotEnv(workDir)
	if err != nil {
		return err
	}

	settings, err := config.Load(v)
	if err != nil {
		return err
	}
	paths, err := resolvePaths(settings.Home)
	if err != nil {
		return err
	}

	fromStore, err := config.LoadDotEnv(paths.Dir)
	if err != nil {
		return err
	}
	if len(fromStore) > 0 {
		loaded = append(loaded, fromStore...)
		if settings, err = config.Load(v); err != nil {
			return err
		}
	}

	logCloser, err := logger.Configure(settings.LogLevel, settings.LogFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = logCloser.Close()
	}()
	if settings.LogFile == "" {
		logger.SetOutput(cmd.ErrOrStderr())
	}
	logger.With("run", uuid.NewString()[:8])
	if err := version.ValidateVersion(); err != nil {
		logger.Warn("Version is not semantic", "error", err)
	}
	logger.Debug("Starting chat",
		"version", version.Version,
		"development", version.IsDevelopment(),
		"dir", paths.Dir,
		"dotenv", loaded)

	mode, err := output.ParseMode(settings.Render)
	if err != nil {
		return err
	}
	printer := output.NewPrinter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithErrorWriter(cmd.ErrOrStderr()),
		output.WithMode(mode),
	)
	logger.Debug("Output configured", "render", printer.Mode().String())

	chatClient := client.New(
		client.WithHTTPClient(&http.Client{Transport: client.NewDebugTransport(nil)}),
		client.WithTimeout(settings.Timeout),
		client.WithUserAgent(version.UserAgent()),
		client.WithOutput(printer),
	)

	controller := session.NewController(
		storage.NewStore(paths),
		chatClient,
		session.WithConfigOverlay(settings.Apply),
		session.WithSendHint(settings.SendHint),
	)

	var hint *string
	if cmd.Flags().Changed("hint") {
		hint = &opts.hint
	}
	var prompt string
	if len(args) == 1 {
		prompt = args[0]
	}

	return controller.Run(cmd.Context(), session.Plan(opts.clean, hint, prompt))
}

func resolvePaths(home string) (storage.Paths, error) {
	if home != "" {
		return storage.ResolvePaths(home), nil
	}
	return storage.DefaultPaths()
}
