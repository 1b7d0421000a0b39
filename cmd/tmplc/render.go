package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tmplc/internal/source"
	"tmplc/internal/trace"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] <file>",
	Short: "Compile a template and render it to HTML",
	Long:  `Compile a template into render functions and evaluate them against JSON data, printing the resulting HTML`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	addCompilerFlags(renderCmd)
	renderCmd.Flags().String("data", "", "JSON file with the render data")
	renderCmd.Flags().String("data-json", "", "inline JSON object with the render data")
}

func runRender(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if err := applyCompilerFlags(cmd, p); err != nil {
		return err
	}
	data, err := readRenderData(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	template, err := source.ReadTemplate(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	tracer := trace.FromContext(cmd.Context())
	span := trace.Begin(tracer, trace.ScopeBatch, "render", 0)
	defer span.End(path)

	stderr := cmd.ErrOrStderr()
	warn := func(msg string, tip bool) {
		prefix := "warning"
		if tip {
			prefix = "tip"
		}
		fmt.Fprintf(stderr, "%s: %s\n", prefix, strings.TrimRight(msg, "\n"))
	}
	c := newCompiler(p, tracer, warn)
	fns, err := c.CompileToFunctions(template, p.Options)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	vn, err := fns.Render(data)
	if err != nil {
		return fmt.Errorf("%s: render: %w", path, err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), vn.HTML())
	return err
}

func readRenderData(cmd *cobra.Command) (map[string]any, error) {
	dataPath, err := cmd.Flags().GetString("data")
	if err != nil {
		return nil, fmt.Errorf("failed to get data flag: %w", err)
	}
	inline, err := cmd.Flags().GetString("data-json")
	if err != nil {
		return nil, fmt.Errorf("failed to get data-json flag: %w", err)
	}
	if dataPath != "" && inline != "" {
		return nil, fmt.Errorf("data and data-json flags cannot be used together")
	}

	raw := []byte(inline)
	if dataPath != "" {
		// #nosec G304 -- path is provided by the user
		raw, err = os.ReadFile(dataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read data: %w", err)
		}
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]any{}, nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("render data must be a JSON object: %w", err)
	}
	return data, nil
}
