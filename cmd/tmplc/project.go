package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tmplc/internal/compiler"
	"tmplc/internal/config"
	"tmplc/internal/render"
	"tmplc/internal/ssr"
	"tmplc/internal/trace"
	"tmplc/internal/version"
	"tmplc/internal/web"
)

// errReported marks failures whose details were already printed.
var errReported = errors.New("errors reported")

func errorsSilenced(err error) bool {
	return errors.Is(err, errReported)
}

// loadProject reads --config or discovers tmplc.toml from the working directory.
func loadProject(cmd *cobra.Command) (*config.Project, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.Discover(wd)
}

// applyCompilerFlags lets --mode and --flavour override the project file.
func applyCompilerFlags(cmd *cobra.Command, p *config.Project) error {
	if cmd.Flags().Changed("mode") {
		value, err := cmd.Flags().GetString("mode")
		if err != nil {
			return fmt.Errorf("failed to get mode flag: %w", err)
		}
		mode, ok := compiler.ParseMode(value)
		if !ok {
			return fmt.Errorf("invalid --mode value %q (expected development|production)", value)
		}
		p.Mode = mode
	}
	if cmd.Flags().Changed("flavour") {
		value, err := cmd.Flags().GetString("flavour")
		if err != nil {
			return fmt.Errorf("failed to get flavour flag: %w", err)
		}
		switch f := config.Flavour(value); f {
		case config.FlavourWeb, config.FlavourSSR:
			p.Flavour = f
		default:
			return fmt.Errorf("invalid --flavour value %q (expected web|ssr)", value)
		}
	}
	return nil
}

func addCompilerFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "development", "compiler mode (development|production)")
	cmd.Flags().String("flavour", "web", "compiler flavour (web|ssr)")
}

// newCompiler assembles the flavour's compiler. warn receives adapter
// warnings for CompileToFunctions; nil keeps the adapter default.
func newCompiler(p *config.Project, tracer trace.Tracer, warn render.WarnHandler) *compiler.Compiler {
	adapterOpts := []render.AdapterOption{render.WithMode(p.Mode)}
	if warn != nil {
		adapterOpts = append(adapterOpts, render.WithWarnHandler(warn))
	}
	opts := []compiler.CreatorOption{
		compiler.WithTracer(tracer),
		compiler.WithFunctions(render.NewAdapter(adapterOpts...)),
	}
	if p.Flavour == config.FlavourSSR {
		return ssr.NewCompiler(p.Mode, opts...)
	}
	return web.NewCompiler(p.Mode, opts...)
}

// fingerprintParts names everything the options fingerprint cannot see.
func fingerprintParts(p *config.Project) []string {
	return []string{"tmplc=" + version.Plain(), "mode=" + p.Mode.String(), "flavour=" + string(p.Flavour)}
}
