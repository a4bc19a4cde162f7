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
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is what the --config file holds, flags given on the command line win.
type Config struct {
	Services []string      `yaml:"services"`
	Timeout  time.Duration `yaml:"timeout"`
	Count    int           `yaml:"count"`
	LogLevel string        `yaml:"log_level"`
	LogFile  string        `yaml:"log_file"`
	Netlink  bool          `yaml:"netlink"`
}

func defaultConfig() Config {
	return Config{Services: serviceNames(), LogLevel: "info"}
}

func loadConfig(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("no service selected")
	}
	known := serviceNames()
	for _, s := range c.Services {
		if !slices.Contains(known, s) {
			return fmt.Errorf("unknown service %q, known services are %v", s, known)
		}
	}
	if c.Timeout < 0 || c.Count < 0 {
		return fmt.Errorf("timeout and count must not be negative")
	}
	return nil
}
