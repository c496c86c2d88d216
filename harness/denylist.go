// Copyright 2024 The flint Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package harness

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Date format for denylist snooze dates (YYYY-MM-DD).
const snoozeFormat = "2006-01-02"

// DenyListEntry is one denylist record: a case-name pattern, an optional
// tracker link, and an optional snooze date after which the denial
// expires.
type DenyListEntry struct {
	Pattern string `yaml:"pattern"`
	Tracker string `yaml:"tracker"`
	Snooze  string `yaml:"snooze"`
}

// ParseDenyList reads a YAML denylist and returns the patterns still in
// effect as of now. Expired snoozes are logged and dropped.
func ParseDenyList(path string, now time.Time) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading denylist %s", path)
	}

	var entries []DenyListEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "parsing denylist %s", path)
	}

	var patterns []string
	for _, entry := range entries {
		if entry.Snooze != "" {
			snooze, err := time.Parse(snoozeFormat, entry.Snooze)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing denylist snooze for %q", entry.Pattern)
			}
			if now.After(snooze) {
				plog.Noticef("snooze for case pattern %q expired on %s",
					entry.Pattern, snooze.Format(snoozeFormat))
				continue
			}
		}

		plog.Infof("denylisting case pattern %q", entry.Pattern)
		if entry.Tracker != "" {
			plog.Infof("  tracked at %s", entry.Tracker)
		}
		patterns = append(patterns, entry.Pattern)
	}
	return patterns, nil
}
