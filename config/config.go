// Package config loads and saves the small JSON document that drives
// cmd/stompcli: broker address, credentials, and the topics to
// subscribe to.
//
// This stays on the standard library's encoding/json rather than
// json-iterator -- see SPEC_FULL.md §9: the config file is read once at
// process start, is tiny, and sits in the presentation layer, not the
// frame body hot path that earns jsoniter its keep.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config is the on-disk shape of a stompcli configuration file.
type Config struct {
	BrokerName string   `json:"brokerName"`
	Hostname   string   `json:"hostname"`
	Port       int      `json:"port"`
	User       string   `json:"user"`
	Password   string   `json:"password"`
	TopicNames []string `json:"topicNames"`
}

// Load reads and decodes a Config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	return &c, nil
}

// Save writes c to path as indented JSON, creating or truncating it.
func Save(path string, c *Config) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "config: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "config: write %s", path)
	}
	return nil
}
