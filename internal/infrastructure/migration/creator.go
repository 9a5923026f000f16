package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- {{.Name}}
-- Created: {{.Timestamp}}

BEGIN;

COMMIT;
`

const downTemplate = `-- {{.Name}} (rollback)
-- Created: {{.Timestamp}}

BEGIN;

COMMIT;
`

// versionWidth matches golang-migrate's -seq -digits 6 naming
const versionWidth = 6

var upFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// MigrationFile is a created up/down pair
type MigrationFile struct {
	Version   string
	Name      string
	Timestamp string
	UpPath    string
	DownPath  string
}

// CreateMigration writes the next sequential migration pair into dir
func CreateMigration(dir, name string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	next := 1
	if len(existing) > 0 {
		last := upFilePattern.FindStringSubmatch(existing[len(existing)-1] + ".up.sql")
		n, _ := strconv.Atoi(last[1])
		next = n + 1
	}

	version := fmt.Sprintf("%0*d", versionWidth, next)
	base := version + "_" + slug
	mf := &MigrationFile{
		Version:   version,
		Name:      slug,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UpPath:    filepath.Join(dir, base+".up.sql"),
		DownPath:  filepath.Join(dir, base+".down.sql"),
	}

	if err := writeTemplate(mf.UpPath, upTemplate, mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeTemplate(mf.DownPath, downTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func writeTemplate(path, body string, data *MigrationFile) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(body)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}

// sanitizeName lowercases name and collapses every run of other characters
// into a single underscore
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
		case r == ' ', r == '-', r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the base names of all up migrations in version order
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	type entry struct {
		version int
		base    string
	}
	var found []entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := upFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, entry{version: v, base: strings.TrimSuffix(e.Name(), ".up.sql")})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].version < found[j].version })

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.base
	}
	return names, nil
}
