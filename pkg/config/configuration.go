// Copyright 2023 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"github.com/BurntSushi/toml"
	"github.com/matrixorigin/arraykit/pkg/common/mempool"
	"github.com/matrixorigin/arraykit/pkg/logutil"
)

// Configuration is the embedding application's view of arraykit
// settings. All fields have workable zero values.
type Configuration struct {
	Log logutil.LogConfig `toml:"log"`

	Mempool MempoolParameters `toml:"mempool"`
}

type MempoolParameters struct {
	// Name tags the pool in logs and reports. default: "global"
	Name string `toml:"name"`

	// CapBytes limits total outstanding bytes. default: 0 (unlimited)
	CapBytes int64 `toml:"cap-bytes"`
}

func (c *Configuration) SetDefaultValues() {
	if c.Mempool.Name == "" {
		c.Mempool.Name = "global"
	}
}

// LoadFile reads a TOML configuration file and fills in defaults.
func LoadFile(path string) (*Configuration, error) {
	var c Configuration
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, err
	}
	c.SetDefaultValues()
	return &c, nil
}

// Apply installs the logging configuration and builds the pool the
// containers should allocate from.
func (c *Configuration) Apply() (*mempool.MPool, error) {
	logutil.SetupGlobalLogger(c.Log)
	return mempool.New(c.Mempool.Name, c.Mempool.CapBytes)
}
