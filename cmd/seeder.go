package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/giulianni/client-portal/internal/rbac"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the default bindings and an initial admin",
	Long: `Seed role permission bindings, create the initial admin account and
optionally backfill case client ids from legacy client names.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"role_permissions", "user_notifications", "notifications",
				"messages", "documents", "case_assignments", "cases",
				"audit_logs", "users",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedRoleBindings(db)
		seedAdminUser(db)
		backfillCaseClients(db)
	},
}

// seedRoleBindings writes the default sub-role permission sets into the
// role_permissions lookup table. Existing rows win so per-deployment
// overrides survive reseeding.
func seedRoleBindings(db *gorm.DB) {
	for _, subRole := range rbac.SubRoles() {
		for _, perm := range rbac.DefaultBindings(subRole) {
			var exists int
			row := db.Raw("SELECT 1 FROM role_permissions WHERE sub_role = ? AND permission = ?", subRole, perm).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}

			if err := db.Exec("INSERT INTO role_permissions (sub_role, permission, created_at) VALUES (?, ?, now())", subRole, perm).Error; err != nil {
				log.Fatalf("failed to insert binding %s/%s: %v", subRole, perm, err)
			}
		}
		fmt.Printf("Seeded bindings for sub-role: %s\n", subRole)
	}
}

func seedAdminUser(db *gorm.DB) {
	adminEmail := "admin@portal.local"

	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Println("admin user already exists:", adminEmail)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("change-me-on-first-login"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	err = db.Exec(
		"INSERT INTO users (id, email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
		uuid.NewString(), adminEmail, "Portal Admin", string(hash), rbac.RoleAdmin,
	).Error
	if err != nil {
		log.Fatalf("failed to insert admin user: %v", err)
	}

	fmt.Println("Seeded admin user:", adminEmail)
}

// backfillCaseClients is the one-shot migration helper for rows imported
// from the legacy system, where cases carried a free-text client name
// instead of a foreign id. A legacy name is linked only when it matches
// exactly one client principal after case and whitespace folding; anything
// ambiguous or unmatched is reported and left alone.
func backfillCaseClients(db *gorm.DB) {
	rows, err := db.Raw("SELECT id, legacy_client_name FROM cases WHERE client_id IS NULL AND legacy_client_name IS NOT NULL").Rows()
	if err != nil {
		fmt.Println("no legacy cases to backfill")
		return
	}
	defer rows.Close()

	type legacyCase struct {
		id   string
		name string
	}
	var pending []legacyCase
	for rows.Next() {
		var lc legacyCase
		if err := rows.Scan(&lc.id, &lc.name); err != nil {
			log.Fatalf("failed to scan legacy case: %v", err)
		}
		pending = append(pending, lc)
	}

	for _, lc := range pending {
		normalized := strings.ToLower(strings.Join(strings.Fields(lc.name), " "))

		var ids []string
		err := db.Raw(
			"SELECT id FROM users WHERE role = ? AND lower(regexp_replace(name, '\\s+', ' ', 'g')) = ?",
			rbac.RoleClient, normalized,
		).Scan(&ids).Error
		if err != nil {
			log.Fatalf("failed to match client for case %s: %v", lc.id, err)
		}

		switch len(ids) {
		case 0:
			fmt.Printf("case %s: no client matches %q, skipped\n", lc.id, lc.name)
		case 1:
			if err := db.Exec("UPDATE cases SET client_id = ?, updated_at = now() WHERE id = ?", ids[0], lc.id).Error; err != nil {
				log.Fatalf("failed to backfill case %s: %v", lc.id, err)
			}
			fmt.Printf("case %s: linked to client %s\n", lc.id, ids[0])
		default:
			fmt.Printf("case %s: %d clients match %q, skipped as ambiguous\n", lc.id, len(ids), lc.name)
		}
	}
}
