// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"github.com/jessevdk/go-flags"
)

// Load parses args (typically os.Args[1:]) into a Config seeded with
// Default's values, following the teacher's loadConfig convention of
// parsing directly into a pre-populated struct so unset flags keep
// their defaults.
func Load(args []string) (*Config, error) {
	cfg := Default()
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
