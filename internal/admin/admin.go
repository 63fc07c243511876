// Package admin declares which staff actions are enabled. The configuration
// is built once at startup and handed to the handlers that register routes.
package admin

import (
	"fmt"
	"strings"
)

type Action string

const (
	ExportCSV  Action = "export-csv"
	MarkSent   Action = "mark-sent"
	MarkUnsent Action = "mark-unsent"
)

var knownOrderActions = []Action{ExportCSV, MarkSent, MarkUnsent}

// Config lists the enabled actions per entity.
type Config struct {
	Orders []Action
}

func DefaultConfig() Config {
	return Config{Orders: append([]Action(nil), knownOrderActions...)}
}

// ParseOrderActions turns a list like "export-csv, mark-sent" into actions.
// An empty list yields the default set.
func ParseOrderActions(names []string) ([]Action, error) {
	out := make([]Action, 0, len(names))
	seen := map[Action]bool{}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		a := Action(n)
		if !isKnown(a) {
			return nil, fmt.Errorf("unknown order action %q", n)
		}
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return DefaultConfig().Orders, nil
	}
	return out, nil
}

func (c Config) OrderActionEnabled(a Action) bool {
	for _, x := range c.Orders {
		if x == a {
			return true
		}
	}
	return false
}

func isKnown(a Action) bool {
	for _, k := range knownOrderActions {
		if k == a {
			return true
		}
	}
	return false
}
