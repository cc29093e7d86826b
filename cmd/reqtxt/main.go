package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inevitablegs/ReqTxtGenerator/internal/config"
	"github.com/inevitablegs/ReqTxtGenerator/internal/extractor"
	"github.com/inevitablegs/ReqTxtGenerator/internal/index"
	"github.com/inevitablegs/ReqTxtGenerator/internal/llm"
	"github.com/inevitablegs/ReqTxtGenerator/internal/manifest"
	"github.com/inevitablegs/ReqTxtGenerator/internal/pyenv"
	"github.com/inevitablegs/ReqTxtGenerator/internal/pypi"
	"github.com/inevitablegs/ReqTxtGenerator/internal/resolver"
	"github.com/inevitablegs/ReqTxtGenerator/internal/walker"
)

var (
	rootDir    string
	outputPath string
	modelName  string
	noTools    bool
	noSettings bool
	verbose    bool
	interval   time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reqtxt",
		Short: "Generates pinned requirements.txt files from project source",
		Long:  "ReqTxtGenerator infers a Python project's third-party dependencies from its source code and writes a pinned requirements.txt, either by static import analysis or by asking Gemini.",
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Scan imports and write requirements.txt",
		RunE:  runGenerate,
	}
	generateCmd.Flags().BoolVar(&noTools, "no-tools", false, "Skip the known command-line tools pass")
	generateCmd.Flags().BoolVar(&noSettings, "no-settings", false, "Skip the Django settings scan")

	geminiCmd := &cobra.Command{
		Use:   "gemini",
		Short: "Infer dependencies with Gemini and write requirements.txt",
		RunE:  runGemini,
	}
	geminiCmd.Flags().StringVarP(&modelName, "model", "m", "", "Gemini model (default "+llm.DefaultModel+")")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Report drift between requirements.txt and the source tree",
		RunE:  runCheck,
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate requirements.txt whenever the source changes",
		RunE:  runWatch,
	}
	watchCmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "Debounce interval between a change and regeneration")

	for _, cmd := range []*cobra.Command{generateCmd, geminiCmd, checkCmd, watchCmd} {
		cmd.Flags().StringVarP(&rootDir, "root", "r", ".", "Project root to scan")
		cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default requirements.txt)")
		cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
		rootCmd.AddCommand(cmd)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the project config and initializes logging. Explicitly
// set flags win over config values.
func setup() (*config.Config, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if outputPath != "" {
		cfg.Output = outputPath
	}
	if modelName != "" {
		cfg.Model = modelName
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logrus.Warnf("invalid log level %q, using info instead", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	return cfg, nil
}

func outputFile(cfg *config.Config) string {
	if filepath.IsAbs(cfg.Output) {
		return cfg.Output
	}
	return filepath.Join(rootDir, cfg.Output)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	reqs, unresolved, err := scan(cfg)
	if err != nil {
		return err
	}

	out := outputFile(cfg)
	logrus.Infof("writing %d packages to %s", len(reqs), out)
	if err := manifest.WriteFile(out, manifest.ScannerHeader, reqs); err != nil {
		return err
	}
	fmt.Printf("Generated %s with %d packages\n", out, len(reqs))

	reportUnresolved(unresolved)
	printGuidance(out)
	return nil
}

func runGemini(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	_ = godotenv.Load()
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) is not set")
	}

	ctx := context.Background()
	client, err := llm.NewGemini(ctx, apiKey, cfg.Model)
	if err != nil {
		return err
	}

	reqs, unresolved, err := infer(ctx, cfg, client)
	if err != nil {
		return err
	}

	out := outputFile(cfg)
	logrus.Infof("writing %d packages to %s", len(reqs), out)
	if err := manifest.WriteFile(out, manifest.GeminiHeader, reqs); err != nil {
		return err
	}
	fmt.Printf("Generated %s with %d packages\n", out, len(reqs))

	reportUnresolved(unresolved)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	reqs, _, err := scan(cfg)
	if err != nil {
		return err
	}

	out := outputFile(cfg)
	f, err := os.Open(out)
	if err != nil {
		return fmt.Errorf("reading %s: %w", out, err)
	}
	existing, err := manifest.NewParser(f).Parse()
	f.Close()
	if err != nil {
		return err
	}

	changes := manifest.Diff(existing, reqs)
	if len(changes) > 0 {
		for _, change := range changes {
			fmt.Println(change)
		}
		fmt.Printf("%s is out of date\n", out)
		os.Exit(1)
	}

	fmt.Printf("%s is up to date\n", out)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	// One pipeline at a time, even when a run outlasts the debounce.
	var scanMu sync.Mutex
	regenerate := func() {
		scanMu.Lock()
		defer scanMu.Unlock()

		reqs, unresolved, err := scan(cfg)
		if err != nil {
			logrus.Errorf("regeneration failed: %v", err)
			return
		}
		out := outputFile(cfg)
		if err := manifest.WriteFile(out, manifest.ScannerHeader, reqs); err != nil {
			logrus.Errorf("writing %s: %v", out, err)
			return
		}
		logrus.Infof("wrote %s with %d packages", out, len(reqs))
		if len(unresolved) > 0 {
			logrus.Warnf("unresolved imports: %s", strings.Join(unresolved, ", "))
		}
	}

	regenerate()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	w := walker.NewWalker(rootDir, cfg.Exclude...)
	dirs, err := w.Dirs()
	if err != nil {
		return fmt.Errorf("walking %s: %w", rootDir, err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	logrus.Infof("watching %d directories under %s", len(dirs), rootDir)

	var (
		debounceMu sync.Mutex
		debounce   *time.Timer
	)
	schedule := func() {
		debounceMu.Lock()
		defer debounceMu.Unlock()
		if debounce != nil {
			debounce.Stop()
		}
		debounce = time.AfterFunc(interval, regenerate)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.Excluded(filepath.Base(event.Name)) {
					logrus.Debugf("watching new directory %s", event.Name)
					watcher.Add(event.Name)
				}
			}
			if !relevant(event.Name) {
				continue
			}
			logrus.Debugf("change detected: %s %s", event.Op, event.Name)
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logrus.Errorf("watcher error: %v", err)
		}
	}
}

// discoverEnv locates the environment versions are resolved against
// and warns when it does not live inside the project tree.
func discoverEnv() (*pyenv.Env, error) {
	env, err := pyenv.Discover(rootDir)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("using %s environment at %s", env.Source, env.Root)
	if !env.InProject(rootDir) {
		logrus.Warnf("you may not be in an active virtual environment for this project (environment: %s)", env.Root)
	}
	return env, nil
}

// scan runs the static pipeline: discover the environment, walk the
// tree, extract imports, filter them, and resolve installed versions.
func scan(cfg *config.Config) ([]pypi.Requirement, []string, error) {
	env, err := discoverEnv()
	if err != nil {
		return nil, nil, err
	}

	w := walker.NewWalker(rootDir, cfg.Exclude...)

	logrus.Info("step 1: scanning project for imports")
	files, err := w.Files()
	if err != nil {
		return nil, nil, fmt.Errorf("walking %s: %w", rootDir, err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no Python source files found under %s", rootDir)
	}

	ext := extractor.NewExtractor()
	var modules []string
	for _, file := range files {
		found, err := ext.ExtractFile(file)
		if err != nil {
			logrus.Warnf("skipping %s: %v", file, err)
			continue
		}
		modules = append(modules, found...)
	}

	if !noSettings {
		if settings := extractor.FindDjangoSettings(files); settings != "" {
			logrus.Debugf("scanning Django settings at %s", settings)
			apps, err := ext.ScanSettings(settings)
			if err != nil {
				logrus.Warnf("could not parse Django settings %s: %v", settings, err)
			} else {
				modules = append(modules, apps...)
			}
		}
	}
	logrus.Infof("found %d unique potential module names", uniqueCount(modules))

	logrus.Info("step 2: filtering out standard library and local modules")
	locals, err := w.LocalModules()
	if err != nil {
		return nil, nil, fmt.Errorf("discovering local modules: %w", err)
	}
	idx := index.NewInstalled(env.SitePackages...)
	idx.Load()
	logrus.Debugf("indexed %d installed distributions", idx.Len())

	res := resolver.NewResolver(idx, pyenv.StdlibModules(env.Python), locals, pypi.MergedNameMap(cfg.NameMap))
	candidates := res.Filter(modules)
	logrus.Infof("filtered down to %d potential external packages", len(candidates))

	logrus.Info("step 3: resolving package names and versions")
	reqs := res.Resolve(candidates)

	if !noTools {
		logrus.Info("step 4: checking for known command-line tools")
		tools := append(append([]string(nil), pypi.KnownTools...), cfg.Tools...)
		reqs = append(reqs, res.ResolveTools(tools)...)
	}

	return reqs, res.Unresolved(), nil
}

// infer runs the model-driven pipeline: build a corpus from the
// project source, ask the model for the packages it uses, and resolve
// the suggestions against the installed environment.
func infer(ctx context.Context, cfg *config.Config, client llm.Client) ([]pypi.Requirement, []string, error) {
	env, err := discoverEnv()
	if err != nil {
		return nil, nil, err
	}

	w := walker.NewWalker(rootDir, cfg.Exclude...)

	logrus.Info("step 1: reading project source files")
	files, err := w.Files()
	if err != nil {
		return nil, nil, fmt.Errorf("walking %s: %w", rootDir, err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no Python source files found under %s", rootDir)
	}
	corpus, err := llm.BuildCorpus(w.Root(), files)
	if err != nil {
		return nil, nil, err
	}

	logrus.Info("step 2: asking Gemini to identify dependencies")
	reply, err := client.Infer(ctx, corpus)
	if err != nil {
		return nil, nil, fmt.Errorf("inferring dependencies: %w", err)
	}

	logrus.Info("step 3: resolving package versions from the environment")
	suggested := llm.ParseReply(reply)
	if len(suggested) == 0 {
		logrus.Warn("the model returned an empty response, no packages found")
	}

	idx := index.NewInstalled(env.SitePackages...)
	idx.Load()
	logrus.Debugf("indexed %d installed distributions", idx.Len())

	res := resolver.NewResolver(idx, nil, nil, pypi.MergedNameMap(cfg.NameMap))
	reqs := res.ResolveSuggested(suggested)
	return reqs, res.Unresolved(), nil
}

// relevant reports whether a changed path can affect the manifest.
func relevant(path string) bool {
	if strings.HasSuffix(path, ".py") {
		return true
	}
	return filepath.Base(path) == "pyproject.toml"
}

func uniqueCount(names []string) int {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true
	}
	return len(seen)
}

// reportUnresolved prints the advisory block for imports that matched
// no installed distribution.
func reportUnresolved(names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("The following imports could not be resolved to an installed package:")
	fmt.Printf("   %s\n", strings.Join(names, ", "))
	fmt.Println("   - Ensure the package is installed in your environment (pip install ...).")
	fmt.Printf("   - If the import name differs from the PyPI name, add it to name_map in %s.\n", config.FileName)
}

// printGuidance prints the follow-up advice for the generated file.
func printGuidance(out string) {
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("1. Review %s for any obvious errors.\n", out)
	fmt.Println("2. For fully reproducible environments, consider pip-tools: treat the")
	fmt.Printf("   generated file as a requirements.in and run `pip-compile %s -o %s`\n", out, out)
	fmt.Println("   to pin all sub-dependencies as well.")
}
