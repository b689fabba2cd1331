// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package download implements the "download" command group.
package download

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/command/download/downloaddaily"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/command/download/downloadmonthly"
)

// NewCommand returns a new download command group with daily and monthly sub-commands.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Download rate spreadsheets from the SBS portal",
		SubCommands: []*appcmd.Command{
			downloaddaily.NewCommand("daily", builder),
			downloadmonthly.NewCommand("monthly", builder),
		},
	}
}
