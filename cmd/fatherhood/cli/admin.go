package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hopecenter/fatherhood/internal/model"
	"github.com/hopecenter/fatherhood/internal/store"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
		Long: `Provision and inspect administrator accounts for the admin console.

Accounts are created without a password; the administrator sets one through
the setup-password flow on their first login.`,
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())
	cmd.AddCommand(newAdminSetActiveCmd("disable", false))
	cmd.AddCommand(newAdminSetActiveCmd("enable", true))

	return cmd
}

// openPrivilegedStore connects with the privileged role, which admin
// provisioning requires.
func openPrivilegedStore() (*store.Store, error) {
	driver := viper.GetString("db.driver")
	if driver == "" {
		driver = "sqlite"
	}
	dsn := viper.GetString("db.privileged_dsn")
	if dsn == "" {
		return nil, fmt.Errorf("db.privileged_dsn is not configured (set FATHERHOOD_DB_PRIVILEGED_DSN or the config file)")
	}
	return store.Open(driver, dsn)
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		email string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new admin account",
		Example: `  fatherhood admin create --email admin@example.org --name "Pat Jones"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(email, name)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&name, "name", "", "Admin display name")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runAdminCreate(email, name string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %q", email)
	}

	st, err := openPrivilegedStore()
	if err != nil {
		return err
	}
	defer st.Close()

	admin := &model.Admin{
		Email:      email,
		Name:       name,
		IsActive:   true,
		FirstLogin: true,
	}
	if err := st.CreateAdmin(context.Background(), admin); err != nil {
		if store.IsDuplicate(err) {
			return fmt.Errorf("an admin with email %q already exists", email)
		}
		return err
	}

	fmt.Printf("Created admin account %q (%s)\n", email, admin.ID)
	fmt.Println("They will set their password on first login.")
	return nil
}

// ---------- admin enable / disable ----------

func newAdminSetActiveCmd(verb string, active bool) *cobra.Command {
	short := "Disable an admin account"
	if active {
		short = "Enable an admin account"
	}
	return &cobra.Command{
		Use:   verb + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openPrivilegedStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			admin, err := st.GetAdminByEmail(ctx, args[0])
			if err != nil {
				return fmt.Errorf("look up admin %q: %w", args[0], err)
			}
			if err := st.SetAdminActive(ctx, admin.ID, active); err != nil {
				return err
			}
			fmt.Printf("Admin %q is now %sd\n", admin.Email, verb)
			return nil
		},
	}
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminList()
		},
	}
}

func runAdminList() error {
	st, err := openPrivilegedStore()
	if err != nil {
		return err
	}
	defer st.Close()

	admins, err := st.ListAdmins(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tACTIVE\tPASSWORD SET\tLAST LOGIN")
	for _, a := range admins {
		lastLogin := "never"
		if a.LastLoginAt != nil {
			lastLogin = a.LastLoginAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\n", a.Email, a.Name, a.IsActive, a.HasPassword(), lastLogin)
	}
	return w.Flush()
}
