// SPDX-License-Identifier: GPL-3.0-or-later
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/CrawX/go-imap-historian/mailsource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
DryRun = false
GlobalIgnore = ["mailer-daemon@*"]
AutoThank = true
AutoThankSubjects = ["Thank"]
Schedule = "*/15 * * * *"

[[Sources]]
Nickname = "Work"
Enabled = true
ImapHost = "mail.co.com:993"
User = "me"
MyAddresses = ["me@co.com"]
IgnoreList = ["noreply@*"]
CrmUserId = 4
ProcessedFolder = "Imported"

[[Sources]]
Nickname = "Private"
Type = "gmail"
User = "me@gmail.com"
MyAddresses = ["me@gmail.com"]
`

func writeConfig(t *testing.T, content string) string {
	filename := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0600))
	return filename
}

func TestReadConfig(t *testing.T) {
	conf, err := ReadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "crm.db", conf.Database)
	assert.Equal(t, "sqlite3", conf.DatabaseDriver)
	assert.False(t, conf.DryRun)
	assert.Equal(t, []string{"Thank"}, conf.AutoThankSubjects)
	require.Len(t, conf.Sources, 2)

	enabled := conf.EnabledSources()
	require.Len(t, enabled, 1)
	work := enabled[0]
	assert.Equal(t, "work", work.Id())
	assert.Equal(t, mailsource.TypeImap, work.Type)
	assert.Equal(t, mailsource.Account{Type: "imap", Host: "mail.co.com:993", User: "me", Folder: "INBOX"}, work.Account())

	settings, err := work.Settings()
	require.NoError(t, err)
	assert.Equal(t, "work", settings.Id)
	assert.Equal(t, int64(4), settings.CrmUserId)
	assert.True(t, settings.MyAddresses.Contains("ME@co.com"))
	assert.True(t, settings.IgnoreList.Contains("noreply@shop.com"))
	assert.Equal(t, "Imported", settings.ProcessedFolder)

	gmail := conf.Sources[1].Account()
	assert.Equal(t, mailsource.DefaultGmailHost, gmail.Host)
	assert.Equal(t, mailsource.DefaultGmailLabel, gmail.Folder)
}

func TestReadConfig_Invalid(t *testing.T) {
	source := `
[[Sources]]
Nickname = "Work"
Enabled = true
ImapHost = "mail.co.com:993"
User = "me"
MyAddresses = ["me@co.com"]
`
	tests := []struct {
		name    string
		content string
		err     string
	}{
		{"driver", `DatabaseDriver = "mysql"` + source, "invalid value for DatabaseDriver, must satisfy oneof"},
		{"type", source + `Type = "pop3"`, "invalid value for Sources[0].Type, must satisfy oneof"},
		{"host", `
[[Sources]]
Nickname = "Work"
Enabled = true
User = "me"
MyAddresses = ["me@co.com"]
`, "invalid value for Sources[0].ImapHost, must satisfy required_if"},
		{"myaddresses", `
[[Sources]]
Nickname = "Work"
Enabled = true
ImapHost = "mail.co.com:993"
User = "me"
`, "invalid value for Sources[0].MyAddresses, must satisfy min"},
		{"duplicate", source + source, "Nickname Work is used by more than one source"},
		{"noneenabled", `
[[Sources]]
Nickname = "Work"
ImapHost = "mail.co.com:993"
User = "me"
MyAddresses = ["me@co.com"]
`, "enable at least one of the Sources"},
		{"autothank", `AutoThank = true` + source, "AutoThankSubjects must not be empty if AutoThank is set"},
		{"schedule", `Schedule = "every day"` + source, "Schedule is not a valid cron expression"},
		{"syntax", `Database = `, "could not read config file"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conf, err := ReadConfig(writeConfig(t, tc.content))
			assert.Nil(t, conf)
			assert.ErrorContains(t, err, tc.err)
		})
	}
}
