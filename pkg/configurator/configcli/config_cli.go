// Package configcli is the cobra command tree of turbo-keys.
package configcli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BenGWeeks/turbo-keys/internal/hidsvc"
	"github.com/BenGWeeks/turbo-keys/pkg/configurator"
	"github.com/BenGWeeks/turbo-keys/pkg/keypad"
)

func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	dir, err := os.UserConfigDir()
	if err != nil {
		return err
	}
	cmd := NewRootCmd(filepath.Join(dir, "turbo-keys"))
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.ExecuteContext(ctx)
}

type appProvider func() *configurator.App

func NewRootCmd(configDir string) *cobra.Command {
	cfg := configurator.Config{
		DataDir:      filepath.Join(configDir, "data"),
		SettingsFile: filepath.Join(configDir, "settings.yml"),
	}
	rootCmd := &cobra.Command{
		Use:   "turbo-keys",
		Short: "Configure cheap programmable macro keypads",
		Long: `turbo-keys configures CH552/CH57x-based programmable macro keypads
(12 keys plus up to two rotary knobs) and persists the configuration into the
device's flash.

Physical keys: key1-key12, knob1_left/press/right, knob2_left/press/right
Modifiers:     ctrl, shift, alt, win
Media actions: play, pause, stop, next, prev, mute, volup, voldown`,
	}
	var app *configurator.App
	appProvider := func() *configurator.App {
		return app
	}
	rootCmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&cfg.SettingsFile, "config", cfg.SettingsFile, "settings file")
	rootCmd.PersistentFlags().BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		app, err = configurator.New(cfg)
		return err
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		return app.Close()
	}
	rootCmd.AddCommand(NewList(appProvider))
	rootCmd.AddCommand(NewSet(appProvider))
	rootCmd.AddCommand(NewLed(appProvider))
	rootCmd.AddCommand(NewMonitor(appProvider))
	rootCmd.AddCommand(NewHistory(appProvider))
	return rootCmd
}

func NewList(app appProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connected keypad interfaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := app().HID().ListDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No keypad devices found")
				return nil
			}
			jsonB, err := json.MarshalIndent(devices, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonB))
			return nil
		},
	}
}

func NewSet(app appProvider) *cobra.Command {
	var layer int
	cmd := &cobra.Command{
		Use:   "set <key> <mapping>",
		Short: "Assign a key combo or media action to a physical control",
		Long: `Assign a mapping to a physical control and write it to flash.

Examples:
  turbo-keys set key1 a
  turbo-keys set key1 ctrl+c
  turbo-keys set knob1_cw volup
  turbo-keys set key5 f5 --layer 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, ok := keypad.SlotNumber(args[0])
			if !ok {
				return fmt.Errorf("%w: %q (valid keys: %s)",
					keypad.ErrUnknownSlot, args[0], strings.Join(keypad.SlotNames(), ", "))
			}
			mapping := strings.ToLower(strings.TrimSpace(args[1]))

			// Media actions live in their own table and bypass the combo
			// parser entirely.
			mediaCode, isMedia := keypad.MediaCode(mapping)
			var mods keypad.Modifier
			var keycode uint8
			if !isMedia {
				mods, keycode = keypad.ParseCombo(mapping)
				if keycode == 0 {
					return fmt.Errorf("%w: %q (valid keys: %s)",
						keypad.ErrUnknownKey, mapping, strings.Join(keypad.KeyNames(), ", "))
				}
			}

			session, info, err := app().OpenSession()
			if err != nil {
				return err
			}
			defer session.Close()

			if isMedia {
				err = session.SetMediaKey(slot, mediaCode, layer)
			} else {
				err = session.SetBasicKey(slot, keycode, mods, layer)
			}
			if err != nil {
				return err
			}

			if err := app().HID().RecordAssignment(hidsvc.Assignment{
				Device:  info.Address,
				Slot:    strings.ToLower(args[0]),
				Mapping: mapping,
				Layer:   layer,
			}); err != nil {
				app().Log().Warn("failed to record assignment", zap.Error(err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %q on layer %d\n", args[0], mapping, layer)
			return nil
		},
	}
	cmd.Flags().IntVarP(&layer, "layer", "l", 1, "layer (1-3)")
	return cmd
}

func NewLed(app appProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "led <mode>",
		Short: "Set the LED mode (0=off, 1=on, 2=breathing)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := strconv.ParseUint(args[0], 10, 8)
			if err != nil {
				return fmt.Errorf("invalid LED mode %q: %w", args[0], err)
			}

			session, _, err := app().OpenSession()
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.SetLedMode(uint8(mode)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set LED mode to %d\n", mode)
			return nil
		},
	}
}

func NewMonitor(app appProvider) *cobra.Command {
	var seconds int
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Dump HID traffic from all keypad interfaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Monitoring keypad for %d seconds, press keys now...\n", seconds)
			readTimeout := time.Duration(app().Settings().ReadTimeoutMs) * time.Millisecond
			return app().HID().Monitor(cmd.Context(),
				time.Duration(seconds)*time.Second, readTimeout,
				func(frame hidsvc.MonitorFrame) {
					fmt.Fprintf(out, "[%s] % x\n", frame.Device, frame.Data)
				})
		},
	}
	cmd.Flags().IntVarP(&seconds, "time", "t", 10, "duration in seconds")
	return cmd
}

func NewHistory(app appProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show previously applied assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := app().HID().ListAssignments()
			if err != nil {
				return err
			}
			if len(assignments) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No assignments recorded yet")
				return nil
			}
			jsonB, err := json.MarshalIndent(assignments, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonB))
			return nil
		},
	}
}
