/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Flag name prefixes (used in CLI flags)
	SourceDBFlagPrefix = "source-"

	// Config key prefixes (used in config file keys)
	SourceDBConfigPrefix = "source."

	CONFIG_FILE_ENV_VAR      = "YB_IDXLINT_CONFIG_FILE"
	DEFAULT_CONFIG_FILE_NAME = "yb-idxlint-config"
)

var allowedGlobalConfigKeys = mapset.NewThreadUnsafeSet[string](
	"log-dir", "log-level",
)

var allowedSourceConfigKeys = mapset.NewThreadUnsafeSet[string](
	"db-type", "db-uri", "db-schema",
)

var allowedCheckConfigKeys = mapset.NewThreadUnsafeSet[string](
	"include", "exclude", "output-format", "parallel-jobs", "fold-case", "fail-on-offense",
)

var allowedCheckDbConfigKeys = mapset.NewThreadUnsafeSet[string](
	"output-format", "fail-on-offense", "fold-case",
)

// Define allowed nested sections
var allowedConfigSections = map[string]mapset.Set[string]{
	"source":   allowedSourceConfigKeys,
	"check":    allowedCheckConfigKeys,
	"check-db": allowedCheckDbConfigKeys,
}

// ConfigFlagOverride represents a CLI flag whose value was set from the config file.
type ConfigFlagOverride struct {
	FlagName  string
	ConfigKey string
	Value     string
}

/*
initConfig loads the config file for the given command and applies it to the flags
the user did not set on the command line.

	Config file precedence: --config-file > $YB_IDXLINT_CONFIG_FILE > ~/yb-idxlint-config.yaml
	Value precedence: CLI flag > <command> section > global key > source section
*/
func initConfig(cmd *cobra.Command) ([]ConfigFlagOverride, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if os.Getenv(CONFIG_FILE_ENV_VAR) != "" {
		v.SetConfigFile(os.Getenv(CONFIG_FILE_ENV_VAR))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(home)
		v.SetConfigName(DEFAULT_CONFIG_FILE_NAME)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err := validateConfigFile(v)
	if err != nil {
		return nil, err
	}

	overrides, err := bindCobraFlagsToViper(cmd, v)
	if err != nil {
		return nil, fmt.Errorf("failed to bind cobra flags to viper: %w", err)
	}
	return overrides, nil
}

/*
validateConfigFile checks that every global key, section and key inside a section
of the loaded config is known. All the invalid ones are printed before the error is returned.
*/
func validateConfigFile(v *viper.Viper) error {
	invalidGlobalKeys := mapset.NewThreadUnsafeSet[string]()
	invalidSectionKeys := make(map[string]mapset.Set[string])
	invalidSections := mapset.NewThreadUnsafeSet[string]()

	for _, key := range v.AllKeys() {
		parts := strings.Split(key, ".")
		if len(parts) == 1 {
			if !allowedGlobalConfigKeys.Contains(key) {
				invalidGlobalKeys.Add(key)
			}
			continue
		}

		// "a.b.c" -> section: "a", nestedKey: "b.c"
		section := parts[0]
		nestedKey := strings.Join(parts[1:], ".")
		allowedKeys, ok := allowedConfigSections[section]
		if !ok {
			invalidSections.Add(section)
			continue
		}
		if !allowedKeys.Contains(nestedKey) {
			if _, exists := invalidSectionKeys[section]; !exists {
				invalidSectionKeys[section] = mapset.NewThreadUnsafeSet[string]()
			}
			invalidSectionKeys[section].Add(nestedKey)
		}
	}

	if invalidGlobalKeys.Cardinality() == 0 && len(invalidSectionKeys) == 0 && invalidSections.Cardinality() == 0 {
		return nil
	}
	if invalidGlobalKeys.Cardinality() > 0 {
		fmt.Fprintf(os.Stderr, "%s [%s]\n", color.RedString("Invalid global config keys:"), strings.Join(invalidGlobalKeys.ToSlice(), ", "))
	}
	for section, keys := range invalidSectionKeys {
		fmt.Fprintf(os.Stderr, "%s [%s]\n", color.RedString(fmt.Sprintf("Invalid keys in section '%s':", section)), strings.Join(keys.ToSlice(), ", "))
	}
	if invalidSections.Cardinality() > 0 {
		fmt.Fprintf(os.Stderr, "%s [%s]\n", color.RedString("Invalid sections:"), strings.Join(invalidSections.ToSlice(), ", "))
	}
	return fmt.Errorf("found invalid configurations in config file: %s", v.ConfigFileUsed())
}

/*
bindCobraFlagsToViper sets every flag not given on the command line from the first config key found:

	<command-path>.<flag>   e.g. check.exclude, check-db.output-format
	<flag>                  global keys e.g. log-dir
	source.<flag-suffix>    for source-* flags e.g. source-db-uri -> source.db-uri
*/
func bindCobraFlagsToViper(cmd *cobra.Command, v *viper.Viper) ([]ConfigFlagOverride, error) {
	var bindErr error
	var overrides []ConfigFlagOverride

	subCmdPath := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name())
	subCmdPath = strings.TrimSpace(subCmdPath)
	configKeyPrefix := strings.ReplaceAll(subCmdPath, " ", "-")

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed {
			return
		}

		candidates := []string{configKeyPrefix + "." + f.Name, f.Name}
		if strings.HasPrefix(f.Name, SourceDBFlagPrefix) {
			candidates = append(candidates, SourceDBConfigPrefix+strings.TrimPrefix(f.Name, SourceDBFlagPrefix))
		}
		for _, key := range candidates {
			if !v.IsSet(key) {
				continue
			}
			val := configValue(v, key, f)
			err := cmd.Flags().Set(f.Name, val)
			if err != nil {
				bindErr = fmt.Errorf("setting flag %q from config key %q: %w", f.Name, key, err)
				return
			}
			overrides = append(overrides, ConfigFlagOverride{
				FlagName:  f.Name,
				ConfigKey: key,
				Value:     val,
			})
			return
		}
		// If the flag is not set in viper, it keeps its default value
	})

	return overrides, bindErr
}

// configValue renders a config value the way the flag parses it; YAML lists become comma separated.
func configValue(v *viper.Viper, key string, f *pflag.Flag) string {
	if _, ok := f.Value.(pflag.SliceValue); ok {
		return strings.Join(v.GetStringSlice(key), ",")
	}
	return v.GetString(key)
}

func logConfigOverrides(overrides []ConfigFlagOverride) {
	for _, o := range overrides {
		value := o.Value
		if o.FlagName == "source-db-uri" {
			value = redactURI(value)
		}
		log.Infof("flag %q set from config key %q: %s", o.FlagName, o.ConfigKey, value)
	}
}
