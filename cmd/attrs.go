package cmd

import (
	"context"
	"fmt"

	"ddi-sync/feature/mapping"

	"github.com/spf13/cobra"
)

var (
	attrType    string
	attrComment string
	searchView  string
)

// attrsCmd is the parent command for extensible attribute operations.
var attrsCmd = &cobra.Command{
	Use:   "attrs",
	Short: "Manage extensible attribute definitions",
}

var attrsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attribute definitions in the target store",
	RunE:  runAttrsList,
}

var attrsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an attribute definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttrsCreate,
}

var attrsSearchCmd = &cobra.Command{
	Use:   "search <name> <value>",
	Short: "Find networks carrying an attribute value",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttrsSearch,
}

func init() {
	attrsCreateCmd.Flags().StringVar(&attrType, "type", "STRING", "Attribute type (STRING, INTEGER, ENUM, EMAIL, URL)")
	attrsCreateCmd.Flags().StringVar(&attrComment, "comment", "", "Attribute comment")
	attrsSearchCmd.Flags().StringVar(&searchView, "view", "", "Target network view (defaults to the configured view)")

	attrsCmd.AddCommand(attrsListCmd)
	attrsCmd.AddCommand(attrsCreateCmd)
	attrsCmd.AddCommand(attrsSearchCmd)
	RootCmd.AddCommand(attrsCmd)
}

func runAttrsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, _, err := setup()
	if err != nil {
		return err
	}

	client, err := targetClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	defs, err := client.GetExtensibleAttributes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list attribute definitions: %w", err)
	}

	for _, def := range defs {
		if def.Comment != "" {
			fmt.Printf("%s (%s) - %s\n", def.Name, def.Type, def.Comment)
		} else {
			fmt.Printf("%s (%s)\n", def.Name, def.Type)
		}
	}
	return nil
}

func runAttrsCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	if err := mapping.ValidateName(name); err != nil {
		return err
	}

	cfg, l, err := setup()
	if err != nil {
		return err
	}

	client, err := targetClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ref, err := client.CreateExtensibleAttribute(ctx, name, attrType, attrComment)
	if err != nil {
		return fmt.Errorf("failed to create attribute %s: %w", name, err)
	}

	l.Info("attribute definition created")
	fmt.Println(ref)
	return nil
}

func runAttrsSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, _, err := setup()
	if err != nil {
		return err
	}

	client, err := targetClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	view := searchView
	if view == "" {
		view = cfg.Target.NetworkView
	}

	networks, err := client.SearchNetworksByAttribute(ctx, args[0], args[1], view)
	if err != nil {
		return fmt.Errorf("failed to search networks: %w", err)
	}

	for _, network := range networks {
		if network.Comment != "" {
			fmt.Printf("%s  %s\n", network.Network, network.Comment)
		} else {
			fmt.Println(network.Network)
		}
	}
	return nil
}
