package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/billexact/billexact/internal/policy"
)

var (
	policyClient string
	policyDir    string
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Show the effective billing policy for a client",
	Long: `policy resolves the billing guidelines that apply to a client: the base
policy (_base.yml) merged with every overlay in the policy directory whose
applies_if.client_id_in names the client.`,
	Args: cobra.NoArgs,
	RunE: runPolicy,
}

func init() {
	policyCmd.Flags().StringVar(&policyClient, "client", "", "Client ID to resolve overlays for")
	policyCmd.Flags().StringVar(&policyDir, "dir", "", "Policy directory (defaults to the configured policy_dir)")
}

func runPolicy(cmd *cobra.Command, args []string) error {
	dir := policyDir
	if dir == "" {
		dir = cfg.PolicyDir
	}
	if dir == "" {
		fmt.Fprintln(os.Stderr, "no policy directory configured (set policy_dir or pass --dir)")
		os.Exit(1)
	}

	doc := policy.LoadForClient(dir, policyClient)
	if len(doc) == 0 {
		fmt.Println("No policy found.")
		return nil
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error encoding policy:", err)
		os.Exit(2)
	}
	fmt.Print(string(data))
	return nil
}
