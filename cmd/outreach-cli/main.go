package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultAPIURL = "http://localhost:5000"

var (
	cfgFile   string
	apiURL    string
	apiToken  string
	verbose   bool
	outputFmt string
)

// Config holds CLI configuration
type Config struct {
	APIURL    string `mapstructure:"api_url"`
	APIToken  string `mapstructure:"api_token"`
	BossEmail string `mapstructure:"boss_email"`
}

// OutreachClient talks to the outreach API.
type OutreachClient struct {
	BaseURL string
	Token   string
	Format  string
	HTTP    *http.Client
	Out     io.Writer
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "outreach-cli",
	Short: "CEO Outreach CLI - find customers and prepare personal emails",
	Long: `Outreach CLI queries the outreach API from the terminal: filter customers,
preview templates and create drafts for the reviewer to send.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFmt {
		case "table", "json", "yaml":
		default:
			return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFmt)
		}
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "API URL: %s\n", apiURL)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.outreach-cli.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Outreach API base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "API token, sent as a bearer token")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "output format (table, json, yaml)")

	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("api_token", rootCmd.PersistentFlags().Lookup("token"))

	rootCmd.AddCommand(customersCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(draftsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".outreach-cli")
	}

	viper.SetEnvPrefix("OUTREACH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}

	if apiURL == "" {
		apiURL = viper.GetString("api_url")
	}
	if apiToken == "" {
		apiToken = viper.GetString("api_token")
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
}

func newClient(cmd *cobra.Command) *OutreachClient {
	return &OutreachClient{BaseURL: apiURL, Token: apiToken, Format: outputFmt, Out: cmd.OutOrStdout()}
}

// Customer commands
var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Customer queries",
}

var customerFilters CustomerFilters

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers matching filters",
	Long: `List customers from the cached store history. Use --refresh to reload
from Shopify first (rate limited on the server).`,
	Example: `  outreach-cli customers list --winback --min-spent 100
  outreach-cli customers list --days-since-order 90 --sort-by total_spent -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient(cmd).ListCustomers(customerFilters)
	},
}

func init() {
	customersCmd.AddCommand(customersListCmd)

	f := customersListCmd.Flags()
	f.StringVar(&customerFilters.Search, "search", "", "match name or email")
	f.StringVar(&customerFilters.MinOrders, "min-orders", "", "minimum order count")
	f.StringVar(&customerFilters.MaxOrders, "max-orders", "", "maximum order count")
	f.StringVar(&customerFilters.MinSpent, "min-spent", "", "minimum total spent")
	f.StringVar(&customerFilters.MaxSpent, "max-spent", "", "maximum total spent")
	f.StringVar(&customerFilters.DaysSinceOrder, "days-since-order", "", "no order in at least this many days")
	f.BoolVar(&customerFilters.Winback, "winback", false, "customers who came back after a long gap")
	f.BoolVar(&customerFilters.GiftCard, "gift-card", false, "customers who bought a gift card")
	f.StringVar(&customerFilters.SortBy, "sort-by", "", "last_order_date, total_spent, order_count, name or customer_since")
	f.StringVar(&customerFilters.SortOrder, "sort-order", "", "asc or desc")
	f.BoolVar(&customerFilters.Refresh, "refresh", false, "reload from Shopify before answering")
}

// Template commands
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Email templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient(cmd).ListTemplates()
	},
}

var templatesPreviewCmd = &cobra.Command{
	Use:   "preview [template-id]",
	Short: "Render a template for a sample customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		customer := map[string]string{}
		for _, flag := range []string{"first-name", "last-name", "email", "customer-since"} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				customer[strings.ReplaceAll(flag, "-", "_")] = v
			}
		}
		return newClient(cmd).PreviewTemplate(args[0], customer)
	},
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesPreviewCmd)

	templatesPreviewCmd.Flags().String("first-name", "", "customer first name")
	templatesPreviewCmd.Flags().String("last-name", "", "customer last name")
	templatesPreviewCmd.Flags().String("email", "", "customer email")
	templatesPreviewCmd.Flags().String("customer-since", "", "customer since date (YYYY-MM-DD)")
}

// Draft commands
var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Draft creation",
}

var draftsCreateCmd = &cobra.Command{
	Use:   "create [template-id]",
	Short: "Create one draft per customer",
	Long: `Create drafts for the customers in --customers, a JSON or YAML file holding
either a list of customers or the output of "customers list -o json".
Use "-" to read from stdin.`,
	Example: `  outreach-cli customers list --winback -o json | outreach-cli drafts create comeback --customers - --boss ceo@shop.example`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("customers")
		boss, _ := cmd.Flags().GetString("boss")
		if boss == "" {
			boss = viper.GetString("boss_email")
		}
		if boss == "" {
			return fmt.Errorf("boss email is required (use --boss or boss_email in the config file)")
		}

		var r io.Reader = cmd.InOrStdin()
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		customers, err := readRecipients(r)
		if err != nil {
			return err
		}
		if len(customers) == 0 {
			return fmt.Errorf("no customers in %s", path)
		}
		logVerbose("Creating %d drafts with template %s", len(customers), args[0])
		return newClient(cmd).CreateDrafts(args[0], boss, customers)
	},
}

func init() {
	draftsCmd.AddCommand(draftsCreateCmd)

	draftsCreateCmd.Flags().String("customers", "-", "customers file (JSON or YAML), - for stdin")
	draftsCreateCmd.Flags().String("boss", "", "reviewer email the drafts are prepared for")
}

// Health check commands
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check API health",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient(cmd).CheckHealth()
	},
}

// Configuration commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage CLI configuration settings",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  "Initialize CLI configuration with interactive prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		return initializeConfig(cmd.InOrStdin(), cmd.OutOrStdout(), filepath.Join(home, ".outreach-cli.yaml"))
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig(cmd.OutOrStdout())
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func prompt(in *bufio.Reader, out io.Writer, label, def string) string {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, _ := in.ReadString('\n')
	if v := strings.TrimSpace(line); v != "" {
		return v
	}
	return def
}

func initializeConfig(r io.Reader, w io.Writer, configPath string) error {
	fmt.Fprintln(w, "Outreach CLI Configuration Setup")
	fmt.Fprintln(w, "================================")

	in := bufio.NewReader(r)
	var config Config
	config.APIURL = prompt(in, w, "Outreach API URL", defaultAPIURL)
	config.APIToken = prompt(in, w, "API Token (optional)", "")
	config.BossEmail = prompt(in, w, "Default reviewer email (optional)", "")

	v := viper.New()
	v.Set("api_url", config.APIURL)
	v.Set("api_token", config.APIToken)
	v.Set("boss_email", config.BossEmail)
	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Configuration saved to %s\n", configPath)
	return nil
}

func showConfig(w io.Writer) error {
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintf(w, "API URL: %s\n", apiURL)
	fmt.Fprintf(w, "API Token: %s\n", maskToken(apiToken))
	fmt.Fprintf(w, "Reviewer email: %s\n", viper.GetString("boss_email"))

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(w, "Config file: %s\n", viper.ConfigFileUsed())
	}
	return nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

func logVerbose(format string, args ...any) {
	if verbose {
		log.Printf("[VERBOSE] "+format, args...)
	}
}
