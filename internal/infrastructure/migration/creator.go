package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

var migrationTemplates = template.Must(template.New("up").Parse(`-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
-- Description: {{.Description}}
-- Tenant-owned tables carry tenant_id UUID NOT NULL and index it first.

`))

func init() {
	template.Must(migrationTemplates.New("down").Parse(`-- Migration: {{.Name}} (Rollback)
-- Created: {{.Timestamp}}
-- Description: Rollback for {{.Description}}

`))
}

// MigrationFile describes a generated up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair named after the current time
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	return createMigration(migrationsDir, name, description, time.Now())
}

func createMigration(migrationsDir, name, description string, now time.Time) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := now.UTC().Format("20060102150405")
	base := version + "_" + slug
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   now.UTC().Format(time.RFC3339),
		UpPath:      filepath.Join(migrationsDir, base+upSuffix),
		DownPath:    filepath.Join(migrationsDir, base+downSuffix),
	}

	if err := writeMigrationFile(mf.UpPath, "up", mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeMigrationFile(mf.DownPath, "down", mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func writeMigrationFile(path, tmpl string, data *MigrationFile) error {
	// O_EXCL: never overwrite an existing migration
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()
	return migrationTemplates.ExecuteTemplate(f, tmpl, data)
}

// sanitizeName lower-cases ASCII letters and digits and folds runs of
// separators into one underscore.
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the sorted base names of the migrations in a
// directory. A missing directory has no migrations.
func ListMigrations(migrationsDir string) ([]string, error) {
	names, err := ListMigrationsFS(os.DirFS(migrationsDir))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	return names, err
}

// ListMigrationsFS lists the migrations at the root of fsys. Every up file
// must have a matching down file.
func ListMigrationsFS(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	ups := make(map[string]bool)
	downs := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, upSuffix):
			ups[strings.TrimSuffix(name, upSuffix)] = true
		case strings.HasSuffix(name, downSuffix):
			downs[strings.TrimSuffix(name, downSuffix)] = true
		}
	}

	migrations := make([]string, 0, len(ups))
	for base := range ups {
		if !downs[base] {
			return nil, fmt.Errorf("migration %s has no down file", base)
		}
		migrations = append(migrations, base)
	}
	for base := range downs {
		if !ups[base] {
			return nil, fmt.Errorf("migration %s has no up file", base)
		}
	}
	sort.Strings(migrations)
	return migrations, nil
}
