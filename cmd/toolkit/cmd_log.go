package main

import (
	"context"
	"strings"

	smerrors "github.com/Station-Manager/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Station-Manager/toolkit/logging"
)

var logCmd = &cobra.Command{
	Use:   "log [flags] <message...>",
	Short: "Append one entry to a log file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLog,
}

func init() {
	logCmd.Flags().String("file", "toolkit.log", "Log file to append to")
	logCmd.Flags().String("category", logging.CategoryInfo, "Entry category (DEBUG, INFO, WARN, ERROR)")
	logCmd.Flags().Duration("timeout", logging.DefaultShutdownTimeout, "How long to wait for the entry to be written")
	viper.BindPFlag("log.file", logCmd.Flags().Lookup("file"))
	viper.BindPFlag("log.category", logCmd.Flags().Lookup("category"))
	viper.BindPFlag("log.timeout", logCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	const op smerrors.Op = "toolkit.runLog"

	category := strings.ToUpper(viper.GetString("log.category"))
	var emit func(*logging.TextLogger, string)
	switch category {
	case logging.CategoryDebug:
		emit = (*logging.TextLogger).Debug
	case logging.CategoryInfo:
		emit = (*logging.TextLogger).Info
	case logging.CategoryWarn:
		emit = (*logging.TextLogger).Warn
	case logging.CategoryError:
		emit = (*logging.TextLogger).Error
	default:
		return smerrors.New(op).Msg("unknown category " + category)
	}

	sink, err := logging.NewFileSink(viper.GetString("log.file"))
	if err != nil {
		return err
	}
	emit(logging.NewTextLogger(sink), strings.Join(args, " "))

	ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("log.timeout"))
	defer cancel()
	if err := sink.Shutdown(ctx); err != nil {
		return err
	}
	if err := sink.LastError(); err != nil {
		return smerrors.New(op).Err(err).Msg("log entry was not written")
	}
	return nil
}
