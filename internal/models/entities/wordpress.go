package entities

// WPPost is the subset of wp_posts the form adapters read
type WPPost struct {
	ID          int64  `db:"ID"`
	PostTitle   string `db:"post_title"`
	PostContent string `db:"post_content"`
	PostExcerpt string `db:"post_excerpt"`
	PostType    string `db:"post_type"`
}

// WPGravityForm joins gf_form with its display_meta JSON
type WPGravityForm struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	DisplayMeta string `db:"display_meta"`
}
