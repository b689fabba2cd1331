// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/command/config"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/command/data"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/command/debug"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/command/download"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/command/plan"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/command/schedule"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("sbsctl"))
}

// newRootCommand creates the root sbsctl command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:                 name,
		Short:               "Download SBS interest-rate spreadsheets into a dated folder tree",
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			config.NewCommand("config", builder),
			data.NewCommand("data", builder),
			debug.NewCommand("debug", builder),
			download.NewCommand("download", builder),
			plan.NewCommand("plan", builder),
			schedule.NewCommand("schedule", builder),
		},
	}
}
