package main

import (
	"fmt"
	"os"

	smerrors "github.com/Station-Manager/errors"
	"github.com/spf13/cobra"

	"github.com/Station-Manager/toolkit/config"
	"github.com/Station-Manager/toolkit/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage logging configuration files",
}

var configCheckCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Load and validate a logging configuration file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigCheck,
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write the default logging configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configCheckCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// loggingDocument returns a file-backed Document for a logging Config in
// the format implied by path.
func loggingDocument(path string) (*config.File, *config.Document[logging.Config], error) {
	codec, err := config.CodecFor(path)
	if err != nil {
		return nil, nil, err
	}
	doc := config.NewDocument(codec, logging.DefaultConfig(),
		config.WithValidator(func(c logging.Config) error { return logging.ValidateConfig(&c) }))
	return config.NewFile(path, doc), doc, nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	const op smerrors.Op = "toolkit.runConfigCheck"
	path := args[0]

	// Load would create a missing file
	if _, err := os.Stat(path); err != nil {
		return smerrors.New(op).Err(err).Msg("config file not found")
	}

	file, doc, err := loggingDocument(path)
	if err != nil {
		return err
	}
	if err := file.Load(cmd.Context()); err != nil {
		return err
	}

	out, err := doc.Serialize()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: valid %s configuration\n%s", path, doc.Codec().Name(), out)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	file, _, err := loggingDocument(args[0])
	if err != nil {
		return err
	}
	if err := file.Save(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", file.Path())
	return nil
}
