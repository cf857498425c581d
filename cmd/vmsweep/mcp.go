package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/vmsweep/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the ViewModel
analysis as tools an LLM can invoke.

To use with an MCP client, add to its config:
  {
    "mcpServers": {
      "vmsweep": {
        "command": "vmsweep",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - find_unused_viewmodels  Unused ViewModels and ViewModel methods
  - explain_viewmodel       Usage evidence for one ViewModel`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the MCP registry server.json and exit",
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		_, err = c.App.Writer.Write(append(data, '\n'))
		return err
	}
	server := mcpserver.NewServer(version)
	return server.Run(context.Background())
}
