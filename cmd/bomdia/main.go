package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/bomdia/internal/archive"
	"codeberg.org/snonux/bomdia/internal/audio"
	"codeberg.org/snonux/bomdia/internal/cli"
	"codeberg.org/snonux/bomdia/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}
	rootCmd.SilenceUsage = true

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := cli.NewLogger(viper.GetString("log.level"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Handle --archive flag
	if flags.Archive {
		_, dir := cli.StorageBackend()
		archivePath, err := archive.ArchiveState(dir)
		if err != nil {
			return fmt.Errorf("failed to archive state: %w", err)
		}
		fmt.Printf("State archived to: %s\n", archivePath)
		return nil
	}

	// Handle --list-voices flag
	if flags.ListVoices {
		return listVoices(ctx)
	}

	// Create processor
	proc, err := processor.NewProcessor(ctx, flags, logger)
	if err != nil {
		return err
	}
	defer proc.Close()

	switch {
	case flags.History:
		proc.PrintHistory()
	case flags.Saved:
		proc.PrintSaved()
	case flags.Anki != "":
		return proc.ExportAnki(ctx)
	case flags.BatchFile != "":
		return proc.ProcessBatch(ctx)
	case len(args) > 0:
		return proc.ProcessSingle(ctx, strings.Join(args, " "))
	default:
		// No input provided - launch the interactive console by default
		return proc.RunInteractive(ctx, os.Stdin)
	}
	return nil
}

func listVoices(ctx context.Context) error {
	espeak, err := audio.New(audio.DefaultConfig(), nil)
	if err != nil {
		return err
	}

	voices, err := espeak.ListVoices(ctx)
	if err != nil {
		return err
	}

	selected, found := audio.SelectVoice(voices)
	for _, v := range voices {
		marker := " "
		if found && v == selected {
			marker = "*"
		}
		fmt.Printf("%s %-8s %-24s %s\n", marker, v.Lang, v.Name, v.File)
	}
	if !found {
		fmt.Println("No European Portuguese voice found; the default voice will be used.")
	}
	return nil
}
