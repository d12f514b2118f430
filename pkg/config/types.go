/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/fusiond/pkg/models"
)

var errInvalidListenAddr = errors.New("listen_addr or port must be set")

type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

// ServiceConfig is the on-disk configuration for the fusiond binary.
type ServiceConfig struct {
	ListenAddr      string         `json:"listen_addr"`        // e.g., :8080
	Workers         int            `json:"workers"`            // connection worker pool size
	QueueSize       int            `json:"queue_size"`         // accepted-connection queue depth
	MaxConnections  int            `json:"max_connections"`    // cap on concurrently open connections
	AcceptRate      float64        `json:"accept_rate"`        // accepts per second, 0 = unlimited
	ReadTimeout     Duration       `json:"read_timeout"`
	WriteTimeout    Duration       `json:"write_timeout"`
	ShutdownTimeout Duration       `json:"shutdown_timeout"`
	Fusion          *models.Config `json:"fusion,omitempty"` // optional fusion overrides
}

// Validate implements Validator.
func (c *ServiceConfig) Validate() error {
	if c.ListenAddr == "" {
		return errInvalidListenAddr
	}

	if c.Fusion != nil {
		return c.Fusion.Validate()
	}

	return nil
}
