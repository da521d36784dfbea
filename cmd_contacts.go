// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"fmt"
	"strings"

	"github.com/CrawX/go-imap-historian/log"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage CRM contacts",
}

var (
	contactName  string
	contactEmail string
)

var contactsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a contact",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(contactEmail)
		if err := checkmail.ValidateFormat(email); err != nil {
			return fmt.Errorf("invalid email %q: %w", email, err)
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

		id, err := p.AddContact(contactName, email)
		if err != nil {
			return err
		}

		log.Logger(log.LOG_MAIN).WithFields(logrus.Fields{"id": id, "name": contactName, "email": email}).Info("Added contact")
		return nil
	},
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := openDatabase(conf)
		if err != nil {
			return err
		}
		defer p.Close()

		contacts, err := p.AllContacts()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, c := range contacts {
			fmt.Fprintf(out, "%6d  %-30s  %s\n", c.Id, c.Name, c.Email)
		}
		return nil
	},
}

func init() {
	contactsAddCmd.Flags().StringVar(&contactName, "name", "", "display name")
	contactsAddCmd.Flags().StringVar(&contactEmail, "email", "", "email address")
	contactsAddCmd.MarkFlagRequired("email")
	contactsCmd.AddCommand(contactsAddCmd, contactsListCmd)
}
