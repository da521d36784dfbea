// SPDX-License-Identifier: GPL-3.0-or-later
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/mailsource"
	"github.com/CrawX/go-imap-historian/persistence"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Database       string `validate:"required"`
	DatabaseDriver string `validate:"oneof=sqlite3 postgres"`

	DryRun bool

	GlobalIgnore      []string
	AutoThank         bool
	AutoThankSubjects []string

	SentryDsn string
	RedisUrl  string
	Schedule  string

	Sources []SourceConfig `validate:"dive"`

	Loglevel *string
}

type SourceConfig struct {
	Nickname string `validate:"required"`
	Enabled  bool
	Type     string `validate:"oneof=imap gmail"`

	ImapHost string `validate:"required_if=Type imap"`
	User     string `validate:"required"`
	Password string

	Folder string
	Label  string

	MyAddresses []string `validate:"min=1,dive,required"`
	IgnoreList  []string
	CrmUserId   int64 `validate:"gte=0"`

	ProcessedFolder string
	SinceLastImport bool
	FetchRate       float64 `validate:"gte=0"`
}

func ReadConfig(filename string) (*Config, error) {
	config := &Config{
		Database:       "crm.db",
		DatabaseDriver: persistence.DriverSqlite,
		DryRun:         true,
	}

	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	for i := range config.Sources {
		if len(config.Sources[i].Type) == 0 {
			config.Sources[i].Type = mailsource.TypeImap
		}
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	err := validator.New().Struct(c)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return fmt.Errorf("invalid value for %s, must satisfy %s", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag())
		}
		return fmt.Errorf("could not validate config: %w", err)
	}

	nicknames := map[string]bool{}
	enabled := 0
	for _, s := range c.Sources {
		key := strings.ToLower(strings.TrimSpace(s.Nickname))
		if nicknames[key] {
			return fmt.Errorf("Nickname %s is used by more than one source", s.Nickname)
		}
		nicknames[key] = true
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("enable at least one of the Sources")
	}

	if c.AutoThank {
		if err := validateNonEmptyList(c.AutoThankSubjects, "AutoThankSubjects must not be empty if AutoThank is set"); err != nil {
			return err
		}
	}

	if len(strings.TrimSpace(c.Schedule)) > 0 {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return fmt.Errorf("Schedule is not a valid cron expression: %w", err)
		}
	}

	return nil
}

func validateNonEmptyList(list []string, err string) error {
	for _, e := range list {
		if len(strings.TrimSpace(e)) > 0 {
			return nil
		}
	}

	return errors.New(err)
}

// EnabledSources returns the sources to import from, in configuration order.
func (c *Config) EnabledSources() []SourceConfig {
	result := []SourceConfig{}
	for _, s := range c.Sources {
		if s.Enabled {
			result = append(result, s)
		}
	}
	return result
}

func (s SourceConfig) Id() string {
	return strings.ToLower(strings.TrimSpace(s.Nickname))
}

func (s SourceConfig) Settings() (*domain.SourceSettings, error) {
	settings, err := domain.NewSourceSettings(s.Id(), s.Nickname, s.CrmUserId, s.MyAddresses, s.IgnoreList, s.ProcessedFolder)
	if err != nil {
		return nil, fmt.Errorf("invalid address list of %s: %w", s.Nickname, err)
	}
	return settings, nil
}

func (s SourceConfig) Account() mailsource.Account {
	folder := s.Folder
	if s.Type == mailsource.TypeGmail {
		folder = s.Label
	}

	return mailsource.Account{
		Type:     s.Type,
		Host:     s.ImapHost,
		User:     s.User,
		Password: s.Password,
		Folder:   folder,
	}.Defaults()
}
