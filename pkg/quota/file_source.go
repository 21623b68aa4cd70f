package quota

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// limitsFile is the YAML document shape for deployment-time limit seeding:
//
//	plans:
//	  free:
//	    - feature: ai_chat_message
//	      window: 1d
//	      limit: 20
//	    - feature: active_wizard
//	      window: static
//	      limit: 3
//	  pro:
//	    - feature: ai_chat_message
//	      window: 1d
//	      limit: 500
type limitsFile struct {
	Plans map[string][]limitEntry `yaml:"plans"`
}

type limitEntry struct {
	Feature string `yaml:"feature"`
	Window  string `yaml:"window"`
	Limit   int64  `yaml:"limit"`
}

// LoadPlanLimits reads a YAML limits file from disk and returns the
// validated plan→limits map, ready for NewMemoryLimitSource or a database
// seeder.
func LoadPlanLimits(path string) (map[string][]PlanLimit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadLimits, err)
	}
	return ParsePlanLimits(data)
}

// ParsePlanLimits parses and validates YAML limit definitions.
func ParsePlanLimits(data []byte) (map[string][]PlanLimit, error) {
	var file limitsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Join(ErrFailedToLoadLimits, err)
	}

	plans := make(map[string][]PlanLimit, len(file.Plans))
	for code, entries := range file.Plans {
		limits := make([]PlanLimit, 0, len(entries))
		for _, entry := range entries {
			window, err := ParseWindow(entry.Window)
			if err != nil {
				return nil, errors.Join(ErrInvalidLimitConfiguration,
					fmt.Errorf("plan %s, feature %s: %w", code, entry.Feature, err))
			}
			limits = append(limits, PlanLimit{
				PlanCode:  code,
				Feature:   Feature(entry.Feature),
				Window:    window,
				HardLimit: entry.Limit,
			})
		}
		plans[code] = limits
	}

	if err := validatePlanLimits(plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// ParseWindow parses a window token: "static", a day count such as "30d",
// or any duration accepted by time.ParseDuration.
func ParseWindow(token string) (time.Duration, error) {
	token = strings.TrimSpace(token)
	switch {
	case token == "" || token == StaticWindowLabel:
		return StaticWindow, nil
	case strings.HasSuffix(token, "d"):
		days, err := strconv.Atoi(strings.TrimSuffix(token, "d"))
		if err == nil {
			if days < 0 {
				return 0, fmt.Errorf("negative window %q", token)
			}
			return time.Duration(days) * 24 * time.Hour, nil
		}
		// fall through for tokens like "1.5d" that Atoi rejects
	}

	window, err := time.ParseDuration(token)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: %w", token, err)
	}
	if window < 0 {
		return 0, fmt.Errorf("negative window %q", token)
	}
	return window, nil
}
