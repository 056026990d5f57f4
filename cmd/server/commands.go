package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Ajayos/Server/internal/auth/token"
	"github.com/Ajayos/Server/internal/config"
	"github.com/Ajayos/Server/internal/support/hash"
	"github.com/Ajayos/Server/internal/sysinfo"
)

func init() {
	// Info
	var infoHuman bool
	var infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Show process memory and active network interfaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(infoHuman)
		},
	}
	infoCmd.Flags().BoolVar(&infoHuman, "human", false, "Print sizes in IEC units")
	rootCmd.AddCommand(infoCmd)

	// Token
	var tokenSubject, tokenScope string
	var tokenTTL time.Duration
	var tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the guarded vitals endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runToken(cfg, tokenSubject, tokenScope, tokenTTL)
		},
	}
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "cli", "Token subject")
	tokenCmd.Flags().StringVar(&tokenScope, "scope", "", "Token scope (default: vitals.scope from config)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default: auth.token_ttl from config)")
	rootCmd.AddCommand(tokenCmd)

	// Hash
	var hashCost int
	var hashCmd = &cobra.Command{
		Use:   "hash <password>",
		Short: "Bcrypt-hash a password for basic-auth config blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost := hashCost
			if cost == 0 {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cost = cfg.Auth.BcryptCost
			}
			return runHash(args[0], cost)
		},
	}
	hashCmd.Flags().IntVar(&hashCost, "cost", 0, "Bcrypt cost (default: auth.bcrypt_cost from config)")
	rootCmd.AddCommand(hashCmd)

	// Config
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigDump(configPath)
		},
	}
	rootCmd.AddCommand(configCmd)

	// Version
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Server %s\n", Version)
			fmt.Printf("Commit: %s\n", Commit)
			fmt.Printf("Build Time: %s\n", BuildTime)
		},
	}
	rootCmd.AddCommand(versionCmd)
}

// Helper functions

func runInfo(human bool) error {
	probe := sysinfo.New()

	memory, err := probe.MemoryUsage()
	if err != nil {
		return fmt.Errorf("memory usage: %w", err)
	}
	interfaces, err := probe.NetworkInterfaces()
	if err != nil {
		return fmt.Errorf("network interfaces: %w", err)
	}

	format := func(v uint64) string {
		if human {
			return humanize.IBytes(v)
		}
		return strconv.FormatUint(v, 10)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "COUNTER\tVALUE")
	fmt.Fprintf(w, "rss\t%s\n", format(memory.RSS))
	fmt.Fprintf(w, "heap_total\t%s\n", format(memory.HeapTotal))
	fmt.Fprintf(w, "heap_used\t%s\n", format(memory.HeapUsed))
	fmt.Fprintf(w, "external\t%s\n", format(memory.External))
	fmt.Fprintln(w)

	names := make([]string, 0, len(interfaces))
	for name := range interfaces {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "INTERFACE\tADDRESSES")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(interfaces[name], ", "))
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "-\tno active non-loopback interfaces")
	}
	return w.Flush()
}

func runToken(cfg *config.Config, subject, scope string, ttl time.Duration) error {
	if cfg.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is not configured")
	}
	if scope == "" {
		scope = cfg.Vitals.Scope
	}

	manager, err := token.NewManager(token.Options{
		SigningKey: []byte(cfg.Auth.SigningKey),
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		TTL:        cfg.Auth.TokenTTL,
		Leeway:     cfg.Auth.Leeway,
	})
	if err != nil {
		return err
	}

	signed, claims, err := manager.Issue(subject, scope, ttl)
	if err != nil {
		return err
	}

	// The token goes to stdout alone so it can be piped; everything else
	// goes to stderr.
	fmt.Println(signed)
	fmt.Fprintf(os.Stderr, "subject=%s scope=%s expires=%s\n",
		claims.Subject, claims.Scope, claims.ExpiresAt.Format(time.RFC3339))
	return nil
}

func runHash(password string, cost int) error {
	hasher, err := hash.NewBcryptHasher(cost)
	if err != nil {
		return err
	}
	hashed, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	fmt.Println(hashed)
	return nil
}

func runConfigDump(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	settings, err := config.Snapshot(path)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if cfg.Source != "" {
		fmt.Printf("# source: %s\n", cfg.Source)
	} else {
		fmt.Println("# source: defaults and environment only")
	}
	fmt.Print(string(out))
	return nil
}
