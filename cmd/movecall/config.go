/*
 * Cadence - The resource-oriented smart contract programming language
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/movekit/movecall/runtime"
	"github.com/movekit/movecall/source"
	"github.com/movekit/movecall/source/rpc"
)

type SourceKind string

const (
	SourceKindDirectory SourceKind = "directory"
	SourceKindRPC       SourceKind = "rpc"
)

type SourceConfig struct {
	Kind      SourceKind `yaml:"kind"`
	Directory string     `yaml:"directory"`
	URL       string     `yaml:"url"`
	// Timeout is a duration, e.g. `10s`
	Timeout string `yaml:"timeout"`
}

// Config is the configuration of the command,
// read from an optional YAML file and overridden by flags
type Config struct {
	Source           SourceConfig `yaml:"source"`
	ABICacheCapacity int          `yaml:"abi_cache_capacity"`
	LogLevel         string       `yaml:"log_level"`

	// OmitSignerParameters excludes leading signer parameters from the encoded arguments
	OmitSignerParameters bool `yaml:"omit_signer_parameters"`
}

func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			Kind:      SourceKindDirectory,
			Directory: ".",
		},
		LogLevel: zerolog.WarnLevel.String(),
	}
}

// LoadConfig reads the YAML configuration file at the given path.
// Settings missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read configuration: %w", err)
	}

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return Config{}, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	return config, nil
}

func (c Config) newSource() (source.ModuleSource, error) {
	switch c.Source.Kind {
	case SourceKindDirectory:
		return source.NewDirectorySource(c.Source.Directory), nil

	case SourceKindRPC:
		if c.Source.URL == "" {
			return nil, fmt.Errorf("missing RPC URL")
		}

		timeout := rpc.DefaultTimeout
		if c.Source.Timeout != "" {
			var err error
			timeout, err = time.ParseDuration(c.Source.Timeout)
			if err != nil {
				return nil, fmt.Errorf("invalid RPC timeout: %w", err)
			}
		}

		return rpc.NewSource(rpc.Config{
			URL:     c.Source.URL,
			Timeout: timeout,
		}), nil

	default:
		return nil, fmt.Errorf("unknown source kind: %q", c.Source.Kind)
	}
}

func (c Config) newLogger(w io.Writer, colors bool) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level: %w", err)
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:     w,
		NoColor: !colors,
	}

	return zerolog.New(consoleWriter).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

func (c Config) newRuntime(w io.Writer, colors bool) (*runtime.Runtime, error) {
	moduleSource, err := c.newSource()
	if err != nil {
		return nil, err
	}

	logger, err := c.newLogger(w, colors)
	if err != nil {
		return nil, err
	}

	return runtime.NewRuntime(runtime.Config{
		Source:               moduleSource,
		ABICacheCapacity:     c.ABICacheCapacity,
		OmitSignerParameters: c.OmitSignerParameters,
		Logger:               logger,
	}), nil
}

// commonFlags are the flags shared by all subcommands
// that load modules
type commonFlags struct {
	config        string
	sourceKind    string
	directory     string
	rpcURL        string
	timeout       string
	cacheCapacity int
	logLevel      string
}

func (f *commonFlags) register(flags *flag.FlagSet) {
	flags.StringVar(&f.config, "config", "", "path of the YAML configuration file")
	flags.StringVar(&f.sourceKind, "source", "", "module source: directory or rpc")
	flags.StringVar(&f.directory, "dir", "", "directory of compiled modules")
	flags.StringVar(&f.rpcURL, "rpc-url", "", "URL of the node's JSON-RPC endpoint")
	flags.StringVar(&f.timeout, "timeout", "", "timeout of RPC requests, e.g. 10s")
	flags.IntVar(&f.cacheCapacity, "cache", 0, "number of module ABIs to cache")
	flags.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// load returns the configuration file's settings,
// overridden by the flags which were set explicitly
func (f *commonFlags) load(flags *flag.FlagSet) (Config, error) {
	config := DefaultConfig()

	if f.config != "" {
		var err error
		config, err = LoadConfig(f.config)
		if err != nil {
			return Config{}, err
		}
	}

	flags.Visit(func(set *flag.Flag) {
		switch set.Name {
		case "source":
			config.Source.Kind = SourceKind(f.sourceKind)
		case "dir":
			config.Source.Directory = f.directory
		case "rpc-url":
			config.Source.URL = f.rpcURL
		case "timeout":
			config.Source.Timeout = f.timeout
		case "cache":
			config.ABICacheCapacity = f.cacheCapacity
		case "log-level":
			config.LogLevel = f.logLevel
		}
	})

	return config, nil
}
