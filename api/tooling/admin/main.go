// This program provides administrative tooling for the printdesk service:
// seeding the public default workgroup, creating users and generating
// token signing keys.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/mail"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/printdesk/printdesk/business/domain/auditbus"
	"github.com/printdesk/printdesk/business/domain/authzbus/stores/policycache"
	"github.com/printdesk/printdesk/business/domain/auditbus/stores/auditdb"
	"github.com/printdesk/printdesk/business/domain/memberbus"
	"github.com/printdesk/printdesk/business/domain/memberbus/stores/memberdb"
	"github.com/printdesk/printdesk/business/domain/userbus"
	"github.com/printdesk/printdesk/business/domain/userbus/stores/usercache"
	"github.com/printdesk/printdesk/business/domain/userbus/stores/userdb"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/domain/workgroupbus/stores/workgroupdb"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/business/types/memberstatus"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/password"
	"github.com/printdesk/printdesk/business/types/role"
	"github.com/printdesk/printdesk/business/types/slug"
	"github.com/printdesk/printdesk/business/types/tenantkind"
	"github.com/printdesk/printdesk/foundation/keystore"
	"github.com/printdesk/printdesk/foundation/logger"
)

type Config struct {
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"printdesk"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
}

func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ADMIN-TOOL", nil)
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: seed, create-user, genkey")
		return nil
	}

	if os.Args[1] == "genkey" {
		return runGenKey(os.Args[2:])
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	userBus := userbus.NewCore(usercache.NewStore(log, userdb.NewStore(log, db), time.Minute))
	memberBus := memberbus.NewCore(log, memberdb.NewStore(log, db))
	auditBus := auditbus.NewCore(log, auditdb.NewStore(log, db))
	workgroupBus := workgroupbus.NewCore(log, memberBus, auditBus, workgroupdb.NewStore(log, db), true)

	switch os.Args[1] {
	case "seed":
		// Verify the role policy matrix loads before writing anything.
		if _, err := policycache.NewStore(log); err != nil {
			return fmt.Errorf("policy check: %w", err)
		}
		return runSeed(ctx, userBus, memberBus, workgroupBus, os.Args[2:])
	case "create-user":
		return runCreateUser(ctx, userBus, os.Args[2:])
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runSeed creates the public default workgroup and a super admin user with
// an active membership in it. Both operations are safe to repeat, existing
// rows are reported instead of duplicated.
func runSeed(ctx context.Context, ub *userbus.Core, mb *memberbus.Core, wb *workgroupbus.Core, args []string) error {
	cmd := flag.NewFlagSet("seed", flag.ExitOnError)
	emailStr := cmd.String("email", "", "Super admin email (Required)")
	passStr := cmd.String("password", "", "Super admin password (Required)")
	nameStr := cmd.String("name", "Platform Admin", "Super admin display name")
	wgNameStr := cmd.String("workgroup", "Print Shop", "Public default workgroup name")
	wgSlugStr := cmd.String("slug", "print-shop", "Public default workgroup slug")
	cmd.Parse(args)

	if *emailStr == "" || *passStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	wg, err := wb.QueryPublicDefault(ctx)
	switch {
	case err == nil:
		fmt.Printf("public default workgroup already exists: %s\n", wg.ID)

	case errors.Is(err, workgroupbus.ErrNoPublicDefault):
		wgName, err := name.Parse(*wgNameStr)
		if err != nil {
			return fmt.Errorf("invalid workgroup name: %w", err)
		}

		wgSlug, err := slug.Parse(*wgSlugStr)
		if err != nil {
			return fmt.Errorf("invalid workgroup slug: %w", err)
		}

		wg, err = wb.Create(ctx, workgroupbus.NewWorkgroup{
			Name:            wgName,
			Slug:            wgSlug,
			Kind:            tenantkind.Public,
			IsPublicDefault: true,
		})
		if err != nil {
			return fmt.Errorf("create workgroup failed: %w", err)
		}

		fmt.Printf("public default workgroup created: %s\n", wg.ID)

	default:
		return fmt.Errorf("query public default: %w", err)
	}

	usrName, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	addr, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	pass, err := password.Parse(*passStr)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	usr, err := ub.Create(ctx, userbus.NewUser{
		Name:     usrName,
		Email:    *addr,
		Password: pass,
	})
	if err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}

	if _, err := mb.Apply(ctx, memberbus.NewMembership{
		UserID:      usr.ID,
		WorkgroupID: wg.ID,
		Role:        role.SuperAdmin,
		Status:      memberstatus.Active,
		IsDefault:   true,
	}); err != nil {
		return fmt.Errorf("apply membership failed: %w", err)
	}

	fmt.Printf("super admin created: %s (%s)\n", usr.ID, usr.Email.Address)
	return nil
}

func runCreateUser(ctx context.Context, ub *userbus.Core, args []string) error {
	cmd := flag.NewFlagSet("create-user", flag.ExitOnError)
	emailStr := cmd.String("email", "", "User email (Required)")
	passStr := cmd.String("password", "", "User password (Required)")
	nameStr := cmd.String("name", "", "User full name (Required)")
	cmd.Parse(args)

	if *emailStr == "" || *passStr == "" || *nameStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	n, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	addr, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	p, err := password.Parse(*passStr)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	usr, err := ub.Create(ctx, userbus.NewUser{
		Name:     n,
		Email:    *addr,
		Password: p,
	})
	if err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}

	fmt.Printf("\nSUCCESS: User created!\nID: %s\nEmail: %s\n", usr.ID, usr.Email.Address)
	return nil
}

// runGenKey writes a new RSA private key PEM to the keys folder. The file
// name is the kid the service will reference in AUTH_ACTIVE_KID.
func runGenKey(args []string) error {
	cmd := flag.NewFlagSet("genkey", flag.ExitOnError)
	folder := cmd.String("folder", "zarf/keys", "Folder to write the key into")
	cmd.Parse(args)

	ks := keystore.New()

	kid, err := ks.GenerateNewKey()
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	pem, err := ks.PrivateKey(kid)
	if err != nil {
		return fmt.Errorf("read generated key: %w", err)
	}

	file := fmt.Sprintf("%s/%s.pem", *folder, kid)

	if err := os.MkdirAll(*folder, 0o755); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	if err := os.WriteFile(file, []byte(pem), 0o600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}

	fmt.Printf("key written: %s\nkid: %s\n", file, kid)
	return nil
}
