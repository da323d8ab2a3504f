package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hopecenter/fatherhood/internal/server"
	"github.com/hopecenter/fatherhood/internal/service"
	"github.com/hopecenter/fatherhood/internal/store"
)

// minSecretBytes is the floor for the token signing secret. Anything shorter
// is trivially brute-forceable for HS256.
const minSecretBytes = 32

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the signup API server",
		Long:  "Start the HTTP server for the public signup form and the admin console API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging, relaxed defaults)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int, dev bool) error {
	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// 1. Configuration. Viper keys resolve from flags, FATHERHOOD_* env vars,
	// and the optional config file, in that order.
	driver := viper.GetString("db.driver")
	if driver == "" {
		driver = "sqlite"
	}
	dsn := viper.GetString("db.dsn")
	privDSN := viper.GetString("db.privileged_dsn")
	if privDSN == "" && dev {
		// Dev convenience: the embedded database has no role separation.
		privDSN = dsn
		if privDSN == "" {
			privDSN = ":memory:"
		}
	}

	secret := viper.GetString("auth.jwt_secret")
	switch {
	case secret == "":
		// Boot anyway: every auth request answers ServerConfigurationError,
		// which is easier to diagnose than a crash loop.
		logger.Error("auth.jwt_secret is not set - all authenticated requests will fail")
	case len(secret) < minSecretBytes:
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes, got %d", minSecretBytes, len(secret))
	}

	corsOrigins := viper.GetStringSlice("server.cors_origins")
	if len(corsOrigins) == 0 {
		if dev {
			corsOrigins = []string{"*"}
		} else {
			return fmt.Errorf("server.cors_origins must be configured outside development mode")
		}
	}

	// 2. Datastore clients: restricted role always, privileged role only
	// when configured.
	if dsn == "" && driver == "sqlite" {
		dsn = ":memory:"
		logger.Warn("db.dsn not set, using in-memory sqlite (data is not persisted)")
	}
	public, err := store.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open datastore: %w", err)
	}
	defer public.Close()

	priv := store.NoPrivileged()
	if privDSN != "" {
		var privStore *store.Store
		if privDSN == dsn {
			privStore = public
		} else {
			privStore, err = store.Open(driver, privDSN)
			if err != nil {
				return fmt.Errorf("open privileged datastore: %w", err)
			}
			defer privStore.Close()
		}
		priv = store.WithPrivileged(privStore)
	} else {
		logger.Warn("db.privileged_dsn not set - admin features disabled")
	}

	// 3. Services and server.
	authSvc := service.NewAuthService(priv, secret, logger)
	signupSvc := service.NewSignupService(public, priv)

	cfg := server.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.CORSOrigins = corsOrigins
	cfg.Production = !dev && strings.EqualFold(viper.GetString("server.env"), "production")
	if limit := viper.GetInt("server.signup_rate_limit"); limit > 0 {
		cfg.SignupLimit = limit
	}
	if window := viper.GetDuration("server.signup_rate_window"); window > 0 {
		cfg.SignupWindow = window
	}

	srv := server.New(cfg, public, priv, authSvc, signupSvc, logger)

	logger.Info("fatherhood API starting",
		"addr", fmt.Sprintf("%s:%d", host, port),
		"driver", driver,
		"admin_enabled", privDSN != "",
		"production", cfg.Production,
	)
	return srv.ListenAndServe()
}
