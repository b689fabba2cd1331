// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package datazip implements the "data zip" command.
package datazip

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/sbsctlcmd"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlarchive"
	"github.com/bufdev/sbsctl/internal/standard/xos"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// outputFlagName is the flag name for the output zip file path.
const outputFlagName = "output"

// NewCommand returns a new data zip command that archives the spreadsheet tree.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Archive the sbsctl directory to a zip file",
		Long: `Archive the sbsctl directory to a zip file.

Every year and month directory is included along with sbsctl.yaml.
Partial downloads in the staging directory are left out.`,
		Args: appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Dir is the sbsctl directory to archive.
	Dir string
	// Output is the path to the output zip file.
	Output string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	sbsctlcmd.BindDirFlag(flagSet, &f.Dir)
	flagSet.StringVarP(&f.Output, outputFlagName, "o", "", "Output zip file path (required)")
}

func run(_ context.Context, container appext.Container, flags *flags) (retErr error) {
	if flags.Output == "" {
		return appcmd.NewInvalidArgumentError("--output (-o) is required")
	}
	if !strings.HasSuffix(flags.Output, ".zip") {
		return appcmd.NewInvalidArgumentError("output file must have a .zip extension")
	}
	dirPath, err := xos.AbsDir(flags.Dir)
	if err != nil {
		return err
	}
	outputFilePath, err := filepath.Abs(flags.Output)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}
	fs := afero.NewOsFs()
	outputFile, err := fs.Create(outputFilePath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		retErr = errors.Join(retErr, outputFile.Close())
	}()
	fileCount, err := sbsctlarchive.WriteZip(fs, dirPath, outputFile, outputFilePath)
	if err != nil {
		return err
	}
	container.Logger().Info("zip archive created", "path", outputFilePath, "files", fileCount)
	return nil
}
