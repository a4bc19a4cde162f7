// Copyright (c) 2026 The Gnet Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/panjf2000/bps"
	"github.com/panjf2000/bps/pkg/logging"
	"github.com/panjf2000/bps/services/netstatus"
)

const pollInterval = 200 * time.Millisecond

func newRootCommand() *cobra.Command {
	var (
		cfgPath string
		cfg     = defaultConfig()
	)

	cmd := &cobra.Command{
		Use:   "bpsmon",
		Short: "Print platform service events",
		Long: `bpsmon requests the events of the selected platform services on its channel
and prints each of them on a line until the count or the timeout is reached.

Example:
  bpsmon --services navigator,locale --count 10
  bpsmon --config bpsmon.yaml --timeout 30s`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(cfgPath) > 0 {
				fromFile := defaultConfig()
				if err := loadConfig(cfgPath, &fromFile); err != nil {
					return err
				}
				overlay(cmd, &fromFile, cfg)
				cfg = fromFile
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			if err := setupLogging(cfg); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return monitor(ctx, cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "YAML configuration file")
	cmd.Flags().StringSliceVar(&cfg.Services, "services", cfg.Services, "services to monitor")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 0, "stop after this long, 0 runs until interrupted")
	cmd.Flags().IntVar(&cfg.Count, "count", 0, "stop after this many events, 0 means no limit")
	cmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	cmd.Flags().BoolVar(&cfg.Netlink, "netlink", false, "follow kernel link and address changes for netstatus")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version of bps",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "bps", bps.VersionString)
		},
	})
	return cmd
}

// overlay copies the flags set on the command line from flags into cfg.
func overlay(cmd *cobra.Command, cfg *Config, flags Config) {
	set := cmd.Flags().Changed
	if set("services") {
		cfg.Services = flags.Services
	}
	if set("timeout") {
		cfg.Timeout = flags.Timeout
	}
	if set("count") {
		cfg.Count = flags.Count
	}
	if set("log-level") {
		cfg.LogLevel = flags.LogLevel
	}
	if set("netlink") {
		cfg.Netlink = flags.Netlink
	}
}

func setupLogging(cfg Config) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if len(cfg.LogFile) > 0 {
		logger, flush, err := logging.CreateLoggerAsLocalFile(cfg.LogFile, level)
		if err != nil {
			return err
		}
		logging.SetDefaultLoggerAndFlusher(logger, flush)
		return nil
	}
	logging.SetDefaultLoggerAndFlusher(logging.NewConsoleLogger(level))
	return nil
}

func monitor(ctx context.Context, cfg Config, out io.Writer) (err error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err = bps.Initialize(bps.WithName("bpsmon"), bps.WithLogger(logging.GetDefaultLogger())); err != nil {
		return err
	}
	defer func() {
		if e := bps.Shutdown(); err == nil {
			err = e
		}
	}()

	for _, name := range cfg.Services {
		if err = services[name].request(0); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		logging.Debugf("monitoring %s events in domain %d", name, services[name].domain())
	}
	if cfg.Netlink {
		go func() {
			if err := netstatus.DefaultHost().Watch(ctx); err != nil {
				logging.Warnf("netlink watch stopped: %v", err)
			}
		}()
	}

	for seen := 0; cfg.Count == 0 || seen < cfg.Count; {
		if ctx.Err() != nil {
			return nil
		}
		ev, err := bps.GetEvent(pollInterval)
		if err != nil {
			return err
		}
		if ev == nil {
			continue
		}
		seen++
		fmt.Fprintln(out, describe(ev))
	}
	return nil
}
