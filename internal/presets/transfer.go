package presets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/VoxDroid/waex/internal/db"
)

// Export writes the named preset into a standalone SQLite database at
// dstPath, creating the schema there. The file must not already hold a
// preset with that name.
func (r *Repository) Export(name, dstPath string) error {
	p, err := r.Get(name)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("preset %q not found", name)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("create dst dir: %w", err)
	}
	dstDB, err := db.Open(dstPath)
	if err != nil {
		return fmt.Errorf("open dst db: %w", err)
	}
	dst := NewRepository(dstDB)
	defer func() { _ = dst.Close() }()

	var desc *string
	if p.Description.Valid {
		desc = &p.Description.String
	}
	if _, err := dst.Create(p.Name, desc, p.Commands); err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	return nil
}

// uniqueName returns orig, or orig-import-N for the first N not taken.
func (r *Repository) uniqueName(orig string) (string, error) {
	name := orig
	for i := 1; ; i++ {
		p, err := r.Get(name)
		if err != nil {
			return "", err
		}
		if p == nil {
			return name, nil
		}
		name = fmt.Sprintf("%s-import-%d", orig, i)
	}
}

// Import copies every preset from the database at srcPath. Colliding names
// get an -import-N suffix. It returns the names stored.
func (r *Repository) Import(srcPath string) ([]string, error) {
	if _, err := os.Stat(srcPath); err != nil {
		return nil, fmt.Errorf("open src: %w", err)
	}
	srcDB, err := db.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("open src: %w", err)
	}
	src := NewRepository(srcDB)
	defer func() { _ = src.Close() }()

	list, err := src.List()
	if err != nil {
		return nil, err
	}
	var names []string
	// List is newest first; import oldest first to keep relative order.
	for i := len(list) - 1; i >= 0; i-- {
		p, err := src.Get(list[i].Name)
		if err != nil {
			return names, err
		}
		name, err := r.uniqueName(p.Name)
		if err != nil {
			return names, err
		}
		var desc *string
		if p.Description.Valid {
			desc = &p.Description.String
		}
		if _, err := r.Create(name, desc, p.Commands); err != nil {
			return names, fmt.Errorf("import %s: %w", p.Name, err)
		}
		names = append(names, name)
	}
	return names, nil
}
