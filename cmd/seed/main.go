package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"cubby/internal/config"
	services "cubby/internal/domain/services/drive"
	"cubby/internal/domain/storage"
	"cubby/internal/repository/postgres"
	postgresDrive "cubby/internal/repository/postgres/drive"
	serviceDrive "cubby/internal/service/drive"
	"cubby/internal/storage/memory"
	"cubby/internal/storage/s3"
)

// devOwnerID matches the dev-mode session fallback in cmd/server
const devOwnerID = "dev-user"

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data (for use with shell scripts)")
	clearData := flag.Bool("clear-data", false, "Clear all folders, files and links (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables and uniqueness indexes exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	// Exit early if schema-only mode
	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	workspaceRepo := postgresDrive.NewWorkspaceRepository(repoConfig)
	folderRepo := postgresDrive.NewFolderRepository(repoConfig)
	fileRepo := postgresDrive.NewFileRepository(repoConfig)
	linkRepo := postgresDrive.NewLinkRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Ensure the dev workspace exists
	workspaceService := serviceDrive.NewWorkspaceService(workspaceRepo, logger)
	ws, err := workspaceService.Resolve(ctx, devOwnerID)
	if err != nil {
		log.Fatalf("Failed to resolve dev workspace: %v", err)
	}

	// Exit early if clear-data mode (just clear and exit)
	if *clearData {
		log.Println("🧹 Clearing existing folders, files and links...")
		if err := clearWorkspaceData(ctx, pool, tables, ws.ID); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	limits, err := config.LoadLimits(cfg.LimitsFile)
	if err != nil {
		logger.Warn("limits file ignored", "path", cfg.LimitsFile, "error", err)
	}

	blobs := blobStoreFor(ctx, cfg)

	// Create services
	folderService := serviceDrive.NewFolderService(folderRepo, fileRepo, linkRepo, blobs, txManager, limits, logger)
	fileService := serviceDrive.NewFileService(fileRepo, folderRepo, blobs, txManager, limits, logger)

	// Clear existing data
	log.Println("⚠️  Clearing existing folders, files and links...")
	if err := clearWorkspaceData(ctx, pool, tables, ws.ID); err != nil {
		log.Printf("Warning: Could not clear data: %v", err)
	}

	// Seed folder structure
	log.Println("📁 Seeding folders...")
	folderIDs := map[string]*string{"": nil}
	for _, folderPath := range seedFolders() {
		dir := path.Dir(folderPath)
		if dir == "." {
			dir = ""
		}
		folder, err := folderService.CreateFolder(ctx, &services.CreateFolderRequest{
			WorkspaceID: ws.ID,
			Name:        path.Base(folderPath),
			ParentID:    folderIDs[dir],
		})
		if err != nil {
			log.Printf("❌ Failed to create folder '%s': %v", folderPath, err)
			continue
		}
		folderIDs[folderPath] = &folder.ID
		log.Printf("✅ Created folder: %s (ID: %s)", folderPath, folder.ID)
	}

	// Seed files
	log.Println("📝 Seeding files...")
	for _, f := range seedFiles() {
		dir := path.Dir(f.path)
		if dir == "." {
			dir = ""
		}
		file, err := fileService.UploadFile(ctx, &services.UploadFileRequest{
			WorkspaceID: ws.ID,
			FolderID:    folderIDs[dir],
			Name:        path.Base(f.path),
			Size:        int64(len(f.content)),
			ContentType: "text/plain",
			Content:     strings.NewReader(f.content),
		})
		if err != nil {
			log.Printf("❌ Failed to create file '%s': %v", f.path, err)
			continue
		}
		log.Printf("✅ Created file: %s (ID: %s, Size: %d)", f.path, file.ID, file.Size)
	}

	log.Println("🎉 Seeding complete!")
}

// blobStoreFor picks the blob backend the same way cmd/server does, so
// seeded file content lands where the server will look for it
func blobStoreFor(ctx context.Context, cfg *config.Config) storage.BlobStore {
	if cfg.BlobBackend == "memory" {
		log.Println("⚠️  Using in-memory blob storage: seeded file contents will not survive this process")
		return memory.New()
	}

	blobs, err := s3.New(ctx, s3.Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		KeyPrefix: cfg.S3KeyPrefix,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		log.Fatalf("Failed to connect blob storage: %v", err)
	}
	return blobs
}

// runSchema creates tables and indexes if they don't exist. Sibling-name
// uniqueness is case-insensitive and enforced here with LOWER(name)
// indexes; the repositories translate the resulting 23505 violations into
// ConflictErrors, so the name resolver's probe only has to win races, not
// prevent them. Root-level siblings (NULL parent) need their own partial
// indexes because NULL never equals NULL in a plain unique constraint.
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	_, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"")
	if err != nil {
		return err
	}

	// Create workspaces table (one per owner)
	createWorkspaces := `
		CREATE TABLE IF NOT EXISTS ` + tables.Workspaces + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(owner_id)
		)
	`
	if _, err := pool.Exec(ctx, createWorkspaces); err != nil {
		return err
	}

	// Create links table (folders reference it, so it comes first)
	createLinks := `
		CREATE TABLE IF NOT EXISTS ` + tables.Links + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			workspace_id UUID NOT NULL REFERENCES ` + tables.Workspaces + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			visibility TEXT NOT NULL DEFAULT 'public',
			recipients TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(slug)
		)
	`
	if _, err := pool.Exec(ctx, createLinks); err != nil {
		return err
	}

	// Create folders table
	createFolders := `
		CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			workspace_id UUID NOT NULL REFERENCES ` + tables.Workspaces + `(id) ON DELETE CASCADE,
			parent_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			link_id UUID REFERENCES ` + tables.Links + `(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createFolders); err != nil {
		return err
	}

	// Create files table
	createFiles := `
		CREATE TABLE IF NOT EXISTS ` + tables.Files + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			workspace_id UUID NOT NULL REFERENCES ` + tables.Workspaces + `(id) ON DELETE CASCADE,
			folder_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			size BIGINT NOT NULL DEFAULT 0,
			content_type TEXT NOT NULL DEFAULT '',
			storage_key TEXT NOT NULL,
			uploader_name TEXT NOT NULL DEFAULT '',
			uploader_email TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createFiles); err != nil {
		return err
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_workspace_parent ON ` + tables.Folders + `(workspace_id, parent_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_sibling_name ON ` + tables.Folders + `(workspace_id, parent_id, LOWER(name)) WHERE parent_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_root_name ON ` + tables.Folders + `(workspace_id, LOWER(name)) WHERE parent_id IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `files_workspace_folder ON ` + tables.Files + `(workspace_id, folder_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `files_sibling_name ON ` + tables.Files + `(workspace_id, folder_id, LOWER(name)) WHERE folder_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `files_root_name ON ` + tables.Files + `(workspace_id, LOWER(name)) WHERE folder_id IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `links_workspace_id ON ` + tables.Links + `(workspace_id)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Files,
		tables.Folders,
		tables.Links,
		tables.Workspaces,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

// clearWorkspaceData clears all folders, files and links for a workspace
func clearWorkspaceData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, workspaceID string) error {
	// Delete files first, then folders, then links
	_, err := pool.Exec(ctx, "DELETE FROM "+tables.Files+" WHERE workspace_id = $1", workspaceID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, "DELETE FROM "+tables.Folders+" WHERE workspace_id = $1", workspaceID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, "DELETE FROM "+tables.Links+" WHERE workspace_id = $1", workspaceID)
	if err != nil {
		return err
	}

	return nil
}

// seedFolders returns folder paths in parents-first order
func seedFolders() []string {
	return []string{
		"Documents",
		"Documents/Reports",
		"Documents/Contracts",
		"Photos",
		"Photos/Vacation 2026",
		"Archive",
	}
}

type seedFile struct {
	path    string
	content string
}

func seedFiles() []seedFile {
	return []seedFile{
		{
			path:    "Welcome.txt",
			content: "Welcome to your workspace.\n\nDrag files here to upload them, or create folders to keep things organized.\n",
		},
		{
			path:    "Documents/Meeting Notes.txt",
			content: "2026-08-24 planning sync\n\n- Ship the shared-folder links\n- Review bulk move edge cases\n- Archive download for offsite backup\n",
		},
		{
			path:    "Documents/Reports/Q3 Summary.txt",
			content: "Q3 summary\n\nStorage usage up 12%. Shared-link uploads accounted for a third of new files.\n",
		},
		{
			path:    "Documents/Contracts/Vendor Agreement.txt",
			content: "Vendor agreement draft. Final copy lives with legal; this is the working version.\n",
		},
		{
			path:    "Photos/Vacation 2026/itinerary.txt",
			content: "Day 1: coast drive\nDay 2: old town\nDay 3: museum, ferry back\n",
		},
	}
}
