package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bft-labs/dropship/pkg/profile"
)

func (c *cli) newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the stored server profile",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "import <file.json>",
			Short: "Validate a profile and store it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := c.repo().ImportFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				c.printWarnings(p)
				if !c.cfg.Quiet {
					fmt.Fprintf(c.stderr, "imported %s (%s %s)\n", displayName(p), p.Method(), strings.TrimSpace(p.RawRequestURL()))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the stored profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				repo := c.repo()
				p, err := repo.Load(cmd.Context())
				if err != nil {
					return err
				}
				writeProfile(c.stdout, p, repo.Path())
				c.printWarnings(p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the stored profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.repo().Clear(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "check <file.json>",
			Short: "Validate a profile without storing it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				p, err := profile.Parse(data)
				if err != nil {
					return err
				}
				if err := p.Validate(); err != nil {
					return err
				}
				c.printWarnings(p)
				fmt.Fprintf(c.stdout, "%s: ok\n", displayName(p))
				return nil
			},
		},
	)
	return cmd
}

func (c *cli) printWarnings(p *profile.Profile) {
	for _, w := range p.Warnings() {
		fmt.Fprintf(c.stderr, "warning: %s\n", w)
	}
}

func displayName(p *profile.Profile) string {
	if p.Name() != "" {
		return p.Name()
	}
	return "unnamed profile"
}

func writeProfile(w io.Writer, p *profile.Profile, path string) {
	template, ok := p.URLTemplate()
	if !ok {
		template = "(none)"
	}

	fmt.Fprintf(w, "Name:        %s\n", displayName(p))
	fmt.Fprintf(w, "Method:      %s\n", p.Method())
	fmt.Fprintf(w, "URL:         %s\n", strings.TrimSpace(p.RawRequestURL()))
	fmt.Fprintf(w, "File field:  %s\n", p.FileFormName())
	fmt.Fprintf(w, "Link:        %s\n", template)
	// Header values are often credentials.
	fmt.Fprintf(w, "Headers:     %s\n", strings.Join(sortedKeys(p.Headers()), ", "))
	fmt.Fprintf(w, "Arguments:   %s\n", joinPairs(p.Arguments()))
	fmt.Fprintf(w, "Parameters:  %s\n", joinPairs(p.Parameters()))
	fmt.Fprintf(w, "Stored at:   %s\n", path)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPairs(m map[string]string) string {
	keys := sortedKeys(m)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + m[k]
	}
	return strings.Join(pairs, ", ")
}
