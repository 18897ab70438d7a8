// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// EnvVar names the variable that points at an explicit config file.
const EnvVar = "ITEMCTL_CFG"

// FileName is the config file looked up in the standard locations.
const FileName = "itemctl.yaml"

// ErrNotFound is returned by the getters when no candidate key is present
// and no default was given.
var ErrNotFound = errors.New("config key not found")

type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

var Config Type

func init() {
	_, _ = Load()
}

// Load reads the config file and makes it the package-level Config. A
// namespace, when given, is tried before the bare key by every getter.
func Load(namespace ...string) (Type, error) {
	path, err := getConfigPath()
	if err != nil {
		return Type{}, err
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Type{}, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return Type{}, fmt.Errorf("parse %s: %w", path, err)
	}

	Config = Type{
		Source: path,
		Data:   data}
	if len(namespace) > 0 {
		Config.Namespace = namespace[0]
	}

	return Config, nil
}

// get traverses the map using a dotted key path
func (cfg *Type) get(kspec string) (any, error) {
	candidateKeys := []string{kspec}
	if cfg.Namespace != "" {
		candidateKeys = []string{cfg.Namespace + "." + kspec, kspec}
	}

	for _, key := range candidateKeys {
		keys := strings.Split(key, ".")
		var current interface{} = cfg.Data

		success := true
		for _, key := range keys {
			m, ok := current.(map[string]interface{})
			if !ok {
				success = false
				break
			}
			current, ok = m[key]
			if !ok {
				success = false
				break
			}
		}

		if success {
			return current, nil
		}
	}

	return nil, fmt.Errorf("%w: tried %v", ErrNotFound, candidateKeys)
}

func lazyLoad() {
	if len(Config.Data) == 0 {
		ns := Config.Namespace
		if _, err := Load(ns); err != nil {
			log.Debugf("config not loaded: %v", err)
		}
	}
}

func GetString(key string, defaultValue ...string) (string, error) {
	lazyLoad()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", errors.New("value is not a string")
	}

	return s, nil
}

func GetInt(key string, defaultValue ...int) (int, error) {
	lazyLoad()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	// YAML numbers may be unmarshaled as int/float64 depending on content.
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.New("value is not an int")
	}
}

// GetDuration reads a Go duration string ("90s", "5m"). A bare number is
// taken as seconds.
func GetDuration(key string, defaultValue ...time.Duration) (time.Duration, error) {
	lazyLoad()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	switch v := val.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("value at %s is not a duration: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, errors.New("value is not a duration")
	}
}

// GetStringSlice reads a YAML sequence of strings. A single string is a
// one-element slice.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	lazyLoad()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return nil, err
	}

	switch v := val.(type) {
	case string:
		return []string{v}, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("value at %s contains a non-string element", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.New("value is not a string list")
	}
}

func getConfigPath() (string, error) {
	if explicit := os.Getenv(EnvVar); explicit != "" {
		fileInfo, err := os.Stat(explicit)
		if err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		if fileInfo.IsDir() {
			return "", fmt.Errorf("%s points to a directory: %s", EnvVar, explicit)
		}
		log.Debugf("using config file: %s", explicit)
		return explicit, nil
	}

	var candidates []string = []string{
		os.Getenv("XDG_CONFIG_HOME"),
		os.Getenv("APPDATA"),
		os.Getenv("HOME"),
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		file := filepath.Join(c, FileName)
		if fileInfo, err := os.Stat(file); err == nil {
			if !fileInfo.IsDir() {
				log.Debugf("using config file: %s", file)
				return file, nil
			}
		}
	}
	return "", fmt.Errorf("no config file found in standard locations")
}
