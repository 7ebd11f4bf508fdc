package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/moolen/meshprobe/internal/fixture"
)

var (
	fixtureKubeconfig string
	fixtureContext    string
	fixtureWait       bool
	fixtureTimeout    time.Duration
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Create and delete scenario fixtures in the cluster",
}

var fixtureNamespaceCmd = &cobra.Command{
	Use:   "namespace",
	Short: "Manage scenario namespaces",
}

var fixtureNamespaceCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a namespace, a random a-busola-test-* name when omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNamespaceCreate,
}

var fixtureNamespaceDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a namespace",
	Args:  cobra.ExactArgs(1),
	RunE:  runNamespaceDelete,
}

var fixtureAuthorizationPolicyCmd = &cobra.Command{
	Use:     "authorizationpolicy",
	Aliases: []string{"ap"},
	Short:   "Manage seeded AuthorizationPolicies",
}

var fixtureAuthorizationPolicyCreateCmd = &cobra.Command{
	Use:   "create <namespace> <name>",
	Short: "Seed an AuthorizationPolicy from the built-in fixture",
	Args:  cobra.ExactArgs(2),
	RunE:  runAuthorizationPolicyCreate,
}

func init() {
	fixtureCmd.PersistentFlags().StringVar(&fixtureKubeconfig, "kubeconfig", "", "Path to the kubeconfig, defaults to console.kubeconfig")
	fixtureCmd.PersistentFlags().StringVar(&fixtureContext, "context", "", "Kube context, defaults to console.context")
	fixtureCmd.PersistentFlags().DurationVar(&fixtureTimeout, "timeout", 2*time.Minute, "Timeout for cluster operations")
	fixtureNamespaceDeleteCmd.Flags().BoolVar(&fixtureWait, "wait", false, "Wait until the namespace is gone")

	fixtureNamespaceCmd.AddCommand(fixtureNamespaceCreateCmd, fixtureNamespaceDeleteCmd)
	fixtureAuthorizationPolicyCmd.AddCommand(fixtureAuthorizationPolicyCreateCmd)
	fixtureCmd.AddCommand(fixtureNamespaceCmd, fixtureAuthorizationPolicyCmd)
}

func fixtureClient(cmd *cobra.Command) (*fixture.Client, context.Context, context.CancelFunc, error) {
	kubeconfig := cfg.Console.Kubeconfig
	if cmd.Flags().Changed("kubeconfig") {
		kubeconfig = fixtureKubeconfig
	}
	kubeContext := cfg.Console.Context
	if cmd.Flags().Changed("context") {
		kubeContext = fixtureContext
	}

	client, err := fixture.NewClient(kubeconfig, kubeContext)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), fixtureTimeout)
	return client, ctx, cancel, nil
}

func runNamespaceCreate(cmd *cobra.Command, args []string) error {
	client, ctx, cancel, err := fixtureClient(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	name := fixture.NamespaceName()
	if len(args) == 1 {
		name = args[0]
	}
	if err := client.CreateNamespace(ctx, name); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}

func runNamespaceDelete(cmd *cobra.Command, args []string) error {
	client, ctx, cancel, err := fixtureClient(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	if err := client.DeleteNamespace(ctx, args[0]); err != nil {
		return err
	}
	if fixtureWait {
		return client.WaitForNamespaceDeleted(ctx, args[0], fixtureTimeout)
	}
	return nil
}

func runAuthorizationPolicyCreate(cmd *cobra.Command, args []string) error {
	client, ctx, cancel, err := fixtureClient(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	return client.CreateAuthorizationPolicy(ctx, args[0], args[1])
}
