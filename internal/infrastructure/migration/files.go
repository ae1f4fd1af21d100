package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix      = ".up.sql"
	downSuffix    = ".down.sql"
	versionLayout = "20060102150405"
)

var fileTemplate = template.Must(template.New("migration").Parse(`-- Migration: {{.Name}}{{if .Down}} (Rollback){{end}}
-- Created: {{.Created}}
{{- if .Description}}
-- Description: {{.Description}}
{{- end}}

`))

// File is one migration pair on disk
type File struct {
	Version  string `json:"version"`
	Name     string `json:"name"`
	UpPath   string `json:"upPath"`
	DownPath string `json:"downPath,omitempty"`
}

// Create writes an empty up/down pair named after now into dir
func Create(dir, name, description string, now time.Time) (*File, error) {
	slug := Slug(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	version := now.UTC().Format(versionLayout)
	base := filepath.Join(dir, version+"_"+slug)
	f := &File{Version: version, Name: slug, UpPath: base + upSuffix, DownPath: base + downSuffix}

	data := struct {
		Name, Description, Created string
		Down                       bool
	}{Name: slug, Description: description, Created: now.UTC().Format(time.RFC3339)}

	if err := writeTemplate(f.UpPath, data); err != nil {
		return nil, err
	}
	data.Down = true
	if err := writeTemplate(f.DownPath, data); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

func writeTemplate(path string, data any) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fileTemplate.Execute(out, data); err != nil {
		_ = out.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return out.Close()
}

// List returns the migrations in dir ordered by version. A missing
// directory is empty. DownPath is blank when a pair has no rollback.
func List(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	downs := make(map[string]bool)
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), downSuffix) {
			downs[strings.TrimSuffix(e.Name(), downSuffix)] = true
		}
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), upSuffix) {
			continue
		}
		base := strings.TrimSuffix(e.Name(), upSuffix)
		version, name, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		f := File{Version: version, Name: name, UpPath: filepath.Join(dir, e.Name())}
		if downs[base] {
			f.DownPath = filepath.Join(dir, base+downSuffix)
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// Slug lowercases name and folds runs of spaces, dashes and underscores into
// one underscore. Other characters are dropped.
func Slug(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pending = true
		}
	}
	return b.String()
}
