package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// SeedDictionaries fills the dependency-free lookup tables: labs and
// equipment types. Additive — existing rows are left untouched.
func SeedDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("seeding dictionaries...")

	if err := seedLabs(ctx, db); err != nil {
		log.Fatalf("failed to seed labs: %v", err)
	}
	if err := seedEquipmentTypes(ctx, db); err != nil {
		log.Fatalf("failed to seed equipment types: %v", err)
	}
	log.Println("dictionaries seeded")
}

// SeedUsers creates the demo accounts: one HOD, and an incharge plus an
// assistant per lab. Depends on labs being seeded first.
func SeedUsers(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("seeding users...")

	if err := seedUsers(ctx, db); err != nil {
		log.Fatalf("failed to seed users: %v", err)
	}
	log.Println("users seeded")
}

func seedLabs(ctx context.Context, db *pgxpool.Pool) error {
	for _, lab := range labsData {
		_, err := db.Exec(ctx,
			`INSERT INTO labs (name, location) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			lab.Name, lab.Location,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func seedEquipmentTypes(ctx context.Context, db *pgxpool.Pool) error {
	for _, name := range equipmentTypesData {
		_, err := db.Exec(ctx,
			`INSERT INTO equipment_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			name,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func seedUsers(ctx context.Context, db *pgxpool.Pool) error {
	for _, user := range usersData {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		var labID interface{}
		if user.LabIndex >= 0 {
			// Resolve by name so reruns against an existing database work.
			if err := db.QueryRow(ctx,
				`SELECT id FROM labs WHERE name = $1`, labsData[user.LabIndex].Name,
			).Scan(&labID); err != nil {
				return err
			}
		}

		_, err = db.Exec(ctx, `
			INSERT INTO users (full_name, email, password_hash, role, lab_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO NOTHING`,
			user.FullName, user.Email, string(hash), user.Role, labID,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
