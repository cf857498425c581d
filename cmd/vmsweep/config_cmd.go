package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/vmsweep/internal/output"
	"github.com/panbanda/vmsweep/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect vmsweep configuration",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print the effective configuration for a project",
				ArgsUsage: "[project]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to config file",
						EnvVars: []string{"VMSWEEP_CONFIG"},
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "toml",
						Usage:   "Output format: toml, json, yaml, toon",
					},
				},
				Action: runConfigShowCmd,
			},
			{
				Name:      "validate",
				Usage:     "Check a configuration file against the schema",
				ArgsUsage: "[file]",
				Action:    runConfigValidateCmd,
			},
		},
	}
}

func runConfigShowCmd(c *cli.Context) error {
	root := getPath(c)

	var (
		cfg    *config.Config
		source string
	)
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg, source = loaded, path
	} else {
		loaded, found, err := config.LoadOrDefault(root)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", found, err)
		}
		cfg, source = loaded, found
	}

	if source == "" {
		source = "defaults"
	}
	fmt.Fprintln(c.App.ErrWriter, color.CyanString("# source: %s", source))

	if c.String("format") == "toml" {
		content, err := cfg.TOML()
		if err != nil {
			return err
		}
		_, err = c.App.Writer.Write(content)
		return err
	}
	format := output.ParseFormat(c.String("format"))
	if !format.Structured() {
		return fmt.Errorf("unsupported config format %q", c.String("format"))
	}
	return output.Encode(c.App.Writer, format, cfg)
}

func runConfigValidateCmd(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		// A file that fails to load is still validated for the report.
		_, found, _ := config.LoadOrDefault(".")
		if found == "" {
			return fmt.Errorf("no configuration file found")
		}
		path = found
	}
	if err := config.Validate(path); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, color.GreenString("%s is valid", path))
	return nil
}
