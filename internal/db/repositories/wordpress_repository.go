package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/elliotchance/phpserialize"
	"github.com/jmoiron/sqlx"

	"leadcapture/formbridge/internal/models/entities"
)

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// WordPressRepository reads the host site's tables. Queries use ? bindvars
// (MySQL in production, SQLite in tests).
type WordPressRepository struct {
	db     *sqlx.DB
	prefix string
}

func NewWordPressRepository(db *sqlx.DB, tablePrefix string) (*WordPressRepository, error) {
	if !tablePrefixPattern.MatchString(tablePrefix) {
		return nil, fmt.Errorf("invalid table prefix %q", tablePrefix)
	}
	return &WordPressRepository{db: db, prefix: tablePrefix}, nil
}

func (r *WordPressRepository) table(name string) string {
	return r.prefix + name
}

// ActivePlugins returns the plugin files listed in the active_plugins option
func (r *WordPressRepository) ActivePlugins(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT option_value FROM %s WHERE option_name = ? LIMIT 1`, r.table("options"))

	var raw string
	err := r.db.GetContext(ctx, &raw, query, "active_plugins")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read active plugins: %w", err)
	}

	plugins, err := DecodePluginList(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode active plugins: %w", err)
	}
	return plugins, nil
}

// SetActivePlugins rewrites the active_plugins option
func (r *WordPressRepository) SetActivePlugins(ctx context.Context, plugins []string) error {
	query := fmt.Sprintf(`UPDATE %s SET option_value = ? WHERE option_name = ?`, r.table("options"))

	raw, err := EncodePluginList(plugins)
	if err != nil {
		return fmt.Errorf("failed to encode active plugins: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, raw, "active_plugins"); err != nil {
		return fmt.Errorf("failed to update active plugins: %w", err)
	}
	return nil
}

// PostsByType lists published posts of one type in id order
func (r *WordPressRepository) PostsByType(ctx context.Context, postType string) ([]entities.WPPost, error) {
	query := fmt.Sprintf(`
		SELECT ID, post_title, post_content, post_excerpt, post_type
		FROM %s
		WHERE post_type = ? AND post_status = 'publish'
		ORDER BY ID
	`, r.table("posts"))

	var posts []entities.WPPost
	if err := r.db.SelectContext(ctx, &posts, query, postType); err != nil {
		return nil, fmt.Errorf("failed to list %s posts: %w", postType, err)
	}
	return posts, nil
}

// PostByID returns nil, nil when no post of that type exists
func (r *WordPressRepository) PostByID(ctx context.Context, id int64, postType string) (*entities.WPPost, error) {
	query := fmt.Sprintf(`
		SELECT ID, post_title, post_content, post_excerpt, post_type
		FROM %s
		WHERE ID = ? AND post_type = ? AND post_status = 'publish'
	`, r.table("posts"))

	var post entities.WPPost
	err := r.db.GetContext(ctx, &post, query, id, postType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch post %d: %w", id, err)
	}
	return &post, nil
}

// PostMeta reports false when the post has no value for key
func (r *WordPressRepository) PostMeta(ctx context.Context, postID int64, key string) (string, bool, error) {
	query := fmt.Sprintf(`SELECT meta_value FROM %s WHERE post_id = ? AND meta_key = ? LIMIT 1`, r.table("postmeta"))

	var value string
	err := r.db.GetContext(ctx, &value, query, postID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read post meta %s: %w", key, err)
	}
	return value, true, nil
}

// PostIDByMetaPrefix finds the post whose meta value for key starts with prefix
func (r *WordPressRepository) PostIDByMetaPrefix(ctx context.Context, key, prefix string) (int64, bool, error) {
	if prefix == "" {
		return 0, false, nil
	}
	query := fmt.Sprintf(`
		SELECT post_id FROM %s
		WHERE meta_key = ? AND meta_value LIKE ? ESCAPE '!'
		ORDER BY post_id
		LIMIT 1
	`, r.table("postmeta"))

	var id int64
	err := r.db.GetContext(ctx, &id, query, key, escapeLike(prefix)+"%")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to look up post by %s: %w", key, err)
	}
	return id, true, nil
}

// GravityForms lists active, non-trashed Gravity Forms with their field JSON
func (r *WordPressRepository) GravityForms(ctx context.Context) ([]entities.WPGravityForm, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.title, m.display_meta
		FROM %s f
		JOIN %s m ON m.form_id = f.id
		WHERE f.is_trash = 0 AND f.is_active = 1
		ORDER BY f.id
	`, r.table("gf_form"), r.table("gf_form_meta"))

	var forms []entities.WPGravityForm
	if err := r.db.SelectContext(ctx, &forms, query); err != nil {
		return nil, fmt.Errorf("failed to list gravity forms: %w", err)
	}
	return forms, nil
}

// GravityForm returns nil, nil when the form does not exist or is trashed
func (r *WordPressRepository) GravityForm(ctx context.Context, id int64) (*entities.WPGravityForm, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.title, m.display_meta
		FROM %s f
		JOIN %s m ON m.form_id = f.id
		WHERE f.id = ? AND f.is_trash = 0
	`, r.table("gf_form"), r.table("gf_form_meta"))

	var form entities.WPGravityForm
	err := r.db.GetContext(ctx, &form, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch gravity form %d: %w", id, err)
	}
	return &form, nil
}

// DecodePluginList reads a PHP-serialized list of plugin files. WordPress
// leaves gaps in the indexes after a deactivation, so entries are ordered by
// key and anything that is not an integer-keyed string is skipped.
func DecodePluginList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	arr, err := phpserialize.UnmarshalAssociativeArray([]byte(raw))
	if err != nil {
		return nil, err
	}

	type entry struct {
		idx  int64
		file string
	}
	entries := make([]entry, 0, len(arr))
	for k, v := range arr {
		idx, ok := k.(int64)
		if !ok {
			continue
		}
		file, ok := v.(string)
		if !ok {
			continue
		}
		entries = append(entries, entry{idx: idx, file: file})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.file
	}
	return out, nil
}

// EncodePluginList serializes plugins as a zero-indexed PHP array
func EncodePluginList(plugins []string) (string, error) {
	items := make([]interface{}, len(plugins))
	for i, p := range plugins {
		items[i] = p
	}
	out, err := phpserialize.Marshal(items, nil)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}
