package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shoplist/internal/credentials"
	"shoplist/internal/utils"
)

// newListCmd creates the 'list' subcommand for list registry management
func newListCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Manage shopping lists",
		Long:  "View all tracked lists or manage them with subcommands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGlobalFlags(cmd, cfg)

			sess, st, err := openSession(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			jsonOutput, _ := cmd.Flags().GetBool("json")

			if jsonOutput {
				type listJSON struct {
					Name   string `json:"name"`
					Active bool   `json:"active"`
					Items  int    `json:"items"`
				}
				output := make([]listJSON, 0, len(sess.Lists()))
				for _, name := range sess.Lists() {
					items, _ := st.LoadItems(cmd.Context(), name)
					output = append(output, listJSON{
						Name:   name,
						Active: name == sess.ActiveList(),
						Items:  len(items),
					})
				}
				return writeJSON(output, stdout)
			}

			_, _ = fmt.Fprintf(stdout, "Tracked lists (%d):\n\n", len(sess.Lists()))
			_, _ = fmt.Fprintf(stdout, "  %-20s %s\n", "NAME", "ITEMS")
			for _, name := range sess.Lists() {
				items, _ := st.LoadItems(cmd.Context(), name)
				marker := "  "
				if name == sess.ActiveList() {
					marker = "* "
				}
				_, _ = fmt.Fprintf(stdout, "%s%-20s %d\n", marker, name, len(items))
			}

			if cfg != nil && cfg.NoPrompt {
				_, _ = fmt.Fprintln(stdout, ResultInfoOnly)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	listCmd.AddCommand(newListCreateCmd(stdout, cfg))
	listCmd.AddCommand(newListDeleteCmd(stdout, cfg))
	listCmd.AddCommand(newListSwitchCmd(stdout, cfg))

	return listCmd
}

// newListCreateCmd creates the 'list create' subcommand
func newListCreateCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new list",
		Long:  "Create a new empty shopping list and make it active.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGlobalFlags(cmd, cfg)

			sess, st, err := openSession(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := sess.CreateList(cmd.Context(), args[0]); err != nil {
				return err
			}

			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				response := struct {
					Name   string `json:"name"`
					Active bool   `json:"active"`
					Result string `json:"result"`
				}{sess.ActiveList(), true, ResultActionCompleted}
				return writeJSON(response, stdout)
			}

			_, _ = fmt.Fprintf(stdout, "Created list: %s\n", sess.ActiveList())
			if cfg != nil && cfg.NoPrompt {
				_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newListDeleteCmd creates the 'list delete' subcommand
func newListDeleteCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a list",
		Long:  "Remove a list and its stored items. Deleting the active list switches to the first remaining one.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGlobalFlags(cmd, cfg)

			sess, st, err := openSession(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if cfg == nil || !cfg.NoPrompt {
				prompt := fmt.Sprintf("Delete list '%s' and its items?", args[0])
				if !utils.PromptYesNoWithReader(prompt, cmd.InOrStdin(), stdout) {
					_, _ = fmt.Fprintln(stdout, "Cancelled")
					return nil
				}
			}

			if err := sess.DeleteList(cmd.Context(), args[0]); err != nil {
				return err
			}

			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				response := struct {
					Deleted string `json:"deleted"`
					Active  string `json:"active"`
					Result  string `json:"result"`
				}{args[0], sess.ActiveList(), ResultActionCompleted}
				return writeJSON(response, stdout)
			}

			_, _ = fmt.Fprintf(stdout, "Deleted list: %s\n", args[0])
			if cfg != nil && cfg.NoPrompt {
				_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newListSwitchCmd creates the 'list switch' subcommand
func newListSwitchCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "switch [name]",
		Short: "Switch the active list",
		Long:  "Make a tracked list the active one.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGlobalFlags(cmd, cfg)

			sess, st, err := openSession(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := sess.SwitchList(cmd.Context(), args[0]); err != nil {
				return err
			}

			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				response := struct {
					Active string `json:"active"`
					Result string `json:"result"`
				}{sess.ActiveList(), ResultActionCompleted}
				return writeJSON(response, stdout)
			}

			_, _ = fmt.Fprintf(stdout, "Switched to list: %s\n", sess.ActiveList())
			if cfg != nil && cfg.NoPrompt {
				_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newCredentialsCmd creates the 'credentials' subcommand
func newCredentialsCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	credentialsCmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage share endpoint credentials",
		Long:  "Store, retrieve, and remove share endpoint tokens in the system keyring.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	credentialsCmd.AddCommand(newCredentialsSetCmd(stdout, stderr))
	credentialsCmd.AddCommand(newCredentialsGetCmd(stdout))
	credentialsCmd.AddCommand(newCredentialsDeleteCmd(stdout))

	return credentialsCmd
}

// newCredentialsSetCmd creates the 'credentials set' subcommand
func newCredentialsSetCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "set [service] [account]",
		Short: "Store a token in the system keyring",
		Long:  "Store a token securely in the system keyring (macOS Keychain, Windows Credential Manager, or Linux Secret Service).",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := args[0]
			account := args[1]

			token, err := credentials.PromptToken(os.Stdin, stderr, service, account)
			if err != nil {
				return err
			}
			if token == "" {
				return fmt.Errorf("token cannot be empty")
			}

			manager := credentials.NewManager()
			if err := manager.Set(cmd.Context(), service, account, token); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(stdout, "Stored token for %s (account: %s)\n", service, account)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newCredentialsGetCmd creates the 'credentials get' subcommand
func newCredentialsGetCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "get [service] [account]",
		Short: "Check for a token and show its source",
		Long:  "Check the priority chain (keyring, then environment) for a token and display where it came from.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := credentials.NewManager()
			info, err := manager.Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				out, err := info.JSON()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(stdout, string(out))
				return nil
			}

			if !info.Found {
				_, _ = fmt.Fprintf(stdout, "No token found for %s (account: %s)\n", info.Service, info.Account)
				return nil
			}
			_, _ = fmt.Fprintf(stdout, "Token for %s (account: %s) found in %s\n", info.Service, info.Account, info.Source)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newCredentialsDeleteCmd creates the 'credentials delete' subcommand
func newCredentialsDeleteCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [service] [account]",
		Short: "Remove a token from the system keyring",
		Long:  "Remove a stored token from the system keyring. Environment variables are not affected.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := credentials.NewManager()
			if err := manager.Delete(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "Removed token for %s (account: %s)\n", args[0], args[1])
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}
