// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"fmt"

	"github.com/CrawX/go-imap-historian/mail"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show imported histories",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recently imported histories",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit <= 0 {
			return fmt.Errorf("limit must be positive")
		}

		conf, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := openDatabase(conf)
		if err != nil {
			return err
		}
		defer p.Close()

		histories, err := p.RecentHistories(historyLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, h := range histories {
			thank := ""
			if h.Thank {
				thank = "thank"
			}
			fmt.Fprintf(out, "%6d  %-25s  %-8s  %-30s  %-10s  %-5s  %s\n", h.Id, h.Date, h.Result, h.ContactEmail, h.SourceId, thank, mail.ShortSubject(h.Description))
		}
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of histories")
	historyCmd.AddCommand(historyListCmd)
}
