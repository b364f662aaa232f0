package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/config"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/morse"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the transmitter on the configured board, logging events to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return executeRun(cfg)
		},
	}
	cmd.Flags().String("backend", "", "override board.backend (sim or periph)")
	cmd.Flags().String("source", "", "override keypad.source (matrix, serial or console)")
	cmd.Flags().String("trace", "", "override trace.path")
	return cmd
}

func simCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run the transmitter on the simulated board with an interactive UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return executeSim(cfg)
		},
	}
	cmd.Flags().String("trace", "", "override trace.path")
	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create morsetap.toml and a traces/ directory here",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			created, err := config.ScaffoldProject(dir)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Println("All files already exist, nothing to create.")
				return nil
			}
			for _, path := range created {
				fmt.Printf("Created %s\n", path)
			}
			return nil
		},
	}
}

func tableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the Morse code table",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(formatTable(morse.Table()))
			return nil
		},
	}
}

func traceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <file>",
		Short: "Replay a bus capture through the display emulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet, _ := cmd.Flags().GetBool("quiet")
			addr, _ := cmd.Flags().GetUint8("address")
			return executeTrace(os.Stdout, args[0], addr, quiet)
		},
	}
	cmd.Flags().BoolP("quiet", "q", false, "print only the summary and final screen")
	cmd.Flags().Uint8("address", 0x20, "7-bit display address to emulate")
	return cmd
}
