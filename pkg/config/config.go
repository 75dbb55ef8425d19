package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/angelfreak/wnet/pkg/types"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. WNET_WIRELESS_BACKEND
const EnvPrefix = "WNET"

// knownFields lists the keys each section of the config file may hold.
// Sections are addressed by their dotted path, "" being the document root.
var knownFields = map[string][]string{
	"":                {"common", "wireless", "ignored", "sysfs"},
	"common":          {"debug", "timeouts"},
	"common.timeouts": {"command", "scan"},
	"wireless":        {"interface", "driver", "backend"},
	"ignored":         {"interfaces"},
}

var (
	// wpa_supplicant drivers the capability detector understands
	validDrivers = []string{"", "nl80211", "wext"}

	validBackends = []string{"", "auto", "external", "netlink"}
)

// ValidationError represents a config validation error with suggestions
type ValidationError struct {
	Section    string
	Field      string
	Suggestion string
}

func (e ValidationError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown field '%s' in %s (did you mean '%s'?)", e.Field, e.Section, e.Suggestion)
	}
	return fmt.Sprintf("unknown field '%s' in %s", e.Field, e.Section)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return "config validation errors:\n  - " + strings.Join(msgs, "\n  - ")
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// findSimilarField finds the most similar valid field name
func findSimilarField(field string, validFields []string) string {
	bestMatch := ""
	bestDistance := 3 // Max distance to consider as a typo

	for _, valid := range validFields {
		dist := levenshteinDistance(field, valid)
		if dist < bestDistance {
			bestDistance = dist
			bestMatch = valid
		} else if dist == bestDistance && bestMatch != "" {
			// Equal distance: prefer the shorter, then alphabetically first name
			if len(valid) < len(bestMatch) || (len(valid) == len(bestMatch) && valid < bestMatch) {
				bestMatch = valid
			}
		}
	}
	return bestMatch
}

// validateSection reports the keys of data that section does not know,
// sorted by name, then descends into the known subsections
func validateSection(section string, data map[string]interface{}) ValidationErrors {
	known := knownFields[section]
	var errs ValidationErrors

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if !slices.Contains(known, key) {
			name := section
			if name == "" {
				name = "config"
			}
			errs = append(errs, ValidationError{
				Section:    name,
				Field:      key,
				Suggestion: findSimilarField(key, known),
			})
			continue
		}

		child := key
		if section != "" {
			child = section + "." + key
		}
		if _, nested := knownFields[child]; !nested {
			continue
		}
		if sub, ok := data[key].(map[string]interface{}); ok {
			errs = append(errs, validateSection(child, sub)...)
		}
	}
	return errs
}

// ValidateConfigFile validates a config file for unknown/misspelled fields
func ValidateConfigFile(path string) ValidationErrors {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil // File read errors handled elsewhere
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil // Parse errors handled elsewhere
	}

	return validateSection("", raw)
}

// validateValues checks the values the wireless layer would reject later
func validateValues(cfg *types.Config) error {
	if !slices.Contains(validDrivers, cfg.Wireless.Driver) {
		return &types.ValidationError{Field: "wireless.driver", Value: cfg.Wireless.Driver, Reason: "must be nl80211, wext or empty"}
	}
	if !slices.Contains(validBackends, cfg.Wireless.Backend) {
		return &types.ValidationError{Field: "wireless.backend", Value: cfg.Wireless.Backend, Reason: "must be auto, external or netlink"}
	}
	if cfg.Wireless.Interface != "" {
		if err := types.ValidateInterfaceName(cfg.Wireless.Interface); err != nil {
			return err
		}
	}
	if cfg.Common.Timeouts.Command < 0 || cfg.Common.Timeouts.Scan < 0 {
		return &types.ValidationError{Field: "common.timeouts", Reason: "cannot be negative"}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("common.debug", false)
	v.SetDefault("common.timeouts.command", 30)
	v.SetDefault("common.timeouts.scan", 15)
	v.SetDefault("wireless.interface", "")
	v.SetDefault("wireless.driver", "")
	v.SetDefault("wireless.backend", "auto")
	v.SetDefault("ignored.interfaces", []string{})
	v.SetDefault("sysfs", types.SysClassNet)
}

// Manager implements the ConfigManager interface
type Manager struct {
	config     *types.Config
	logger     types.Logger
	configPath string
}

// NewManager creates a new config manager
func NewManager(logger types.Logger) *Manager {
	return &Manager{
		logger: logger,
	}
}

// DefaultPath returns ~/.wnet/config.yaml for the invoking user. Under sudo
// the home directory of SUDO_USER is used instead of root's.
func DefaultPath() (string, error) {
	var home string
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if sudoUser == "root" {
			home = "/root"
		} else {
			home = filepath.Join("/home", sudoUser)
		}
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		home = envHome
	} else {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
	}
	return filepath.Join(home, ".wnet", "config.yaml"), nil
}

// LoadConfig loads configuration from path. "-" means no file, "" means
// DefaultPath. A missing file yields the defaults.
func (m *Manager) LoadConfig(path string) (*types.Config, error) {
	m.debug("LoadConfig called", "path", path)

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	readFile := true
	switch {
	case path == "-":
		m.debug("Using no config file (path='-')")
		readFile = false
	case strings.HasPrefix(path, "~"):
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	case path == "":
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
		m.debug("Using default config path", "path", path)
	}

	if readFile {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			m.debug("Config file does not exist, using defaults", "path", path)
			readFile = false
		}
	}

	if readFile {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" || filepath.Ext(path) == ".example" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if validationErrors := ValidateConfigFile(path); len(validationErrors) > 0 {
			return nil, validationErrors
		}
		m.configPath = path
		m.debug("Config file loaded", "path", path)
	}

	var config types.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if config.Sysfs == "" {
		config.Sysfs = types.SysClassNet
	}
	if config.Ignored.Interfaces == nil {
		config.Ignored.Interfaces = []string{}
	}
	if err := validateValues(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	m.config = &config
	return &config, nil
}

// ConfigPath returns the file the config was read from, or "" when none was
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// GetConfig returns the loaded configuration
func (m *Manager) GetConfig() *types.Config {
	return m.config
}

// GetIgnoredInterfaces returns the list of ignored interfaces
func (m *Manager) GetIgnoredInterfaces() []string {
	if m.config == nil {
		return nil
	}
	return m.config.Ignored.Interfaces
}

// IsIgnored reports whether iface is listed under ignored.interfaces
func (m *Manager) IsIgnored(iface string) bool {
	return slices.Contains(m.GetIgnoredInterfaces(), iface)
}

// FilterIgnored returns names without the ignored interfaces
func (m *Manager) FilterIgnored(names []string) []string {
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if m.IsIgnored(name) {
			m.debug("Skipping ignored interface", "interface", name)
			continue
		}
		kept = append(kept, name)
	}
	return kept
}

func (m *Manager) debug(msg string, fields ...interface{}) {
	if m.logger != nil {
		m.logger.Debug(msg, fields...)
	}
}
