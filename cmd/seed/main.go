package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"assetdesk/internal/config"
	"assetdesk/internal/domain/models/foldertree"
	"assetdesk/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Fixed so repeated seeding overwrites the same dev asset.
const defaultAssetID = "5eed0000-0000-4000-8000-000000000001"

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop the assets table before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't insert the sample asset")
	clearData := flag.Bool("clear-data", false, "Reset the trees of the sample asset (keep schema)")
	assetID := flag.String("asset-id", defaultAssetID, "ID of the sample asset")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}
	if _, err := uuid.Parse(*assetID); err != nil {
		log.Fatalf("Invalid --asset-id: %v", err)
	}

	owner := cfg.DevUserID
	if owner == "" {
		owner = getEnv("SEED_USER_ID", "dev-user")
	}

	switch {
	case *clearData:
		log.Printf("🧹 Clearing trees only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping tables...")
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+tables.Assets+" CASCADE"); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Printf("  ✓ Dropped %s", tables.Assets)
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		return
	}

	if *clearData {
		if err := clearTrees(ctx, pool, tables, *assetID); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Trees cleared")
		return
	}

	metadata, err := sampleMetadata(cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("Failed to build sample metadata: %v", err)
	}
	if err := upsertAsset(ctx, pool, tables, *assetID, owner, metadata); err != nil {
		log.Fatalf("Failed to seed asset: %v", err)
	}

	log.Printf("🎉 Seeded asset %s for user %s", *assetID, owner)
}

func upsertAsset(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, id, userID string, metadata []byte) error {
	query := `
		INSERT INTO ` + tables.Assets + ` (id, user_id, name, metadata, tree_versions)
		VALUES ($1, $2, $3, $4::jsonb, '{}'::jsonb)
		ON CONFLICT (id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    metadata = EXCLUDED.metadata,
		    tree_versions = '{}'::jsonb,
		    updated_at = now()
	`
	_, err := pool.Exec(ctx, query, id, userID, "Sample Vehicle", string(metadata))
	return err
}

// clearTrees drops both tree keys and their version counters from the asset.
func clearTrees(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, id string) error {
	query := `
		UPDATE ` + tables.Assets + `
		SET metadata = metadata - $2::text - $3::text,
		    tree_versions = '{}'::jsonb,
		    updated_at = now()
		WHERE id = $1
	`
	_, err := pool.Exec(ctx, query, id, string(foldertree.KindDocs), string(foldertree.KindGallery))
	return err
}

// sampleMetadata builds a docs tree with nested folders and a gallery stored
// in the legacy bare-array shape, which readers normalize to a root-level tree.
func sampleMetadata(baseURL string) ([]byte, error) {
	invoices := "f-invoices"
	y2024 := "f-2024"
	insurance := "f-insurance"
	size := int64(48213)

	docs := foldertree.Tree{
		Folders: []foldertree.FolderItem{
			{ID: invoices, Name: "Invoices"},
			{ID: y2024, Name: "2024", ParentID: &invoices},
			{ID: insurance, Name: "Insurance"},
		},
		Files: []foldertree.FileItem{
			{
				PreviewItem: foldertree.PreviewItem{
					ID:       "d-jan",
					Name:     "jan.pdf",
					URL:      baseURL + "/api/files/d-jan",
					Size:     &size,
					MimeType: "application/pdf",
				},
				FolderID: &y2024,
			},
			{
				PreviewItem: foldertree.PreviewItem{
					ID:       "d-registration",
					Name:     "registration.pdf",
					URL:      baseURL + "/api/files/d-registration",
					MimeType: "application/pdf",
				},
			},
		},
	}

	gallery := []foldertree.PreviewItem{
		{ID: "g-front", Name: "front.jpg", URL: baseURL + "/api/files/g-front", MimeType: "image/jpeg"},
		{ID: "g-side", Name: "side.jpg", URL: baseURL + "/api/files/g-side", MimeType: "image/jpeg"},
	}

	return json.Marshal(map[string]any{
		string(foldertree.KindDocs):    docs,
		string(foldertree.KindGallery): gallery,
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
