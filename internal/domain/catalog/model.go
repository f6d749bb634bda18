package catalog

import "time"

// Channel maps to the channels table. Channels are static rows naming a
// communication medium; nothing in the service ingests from them.
type Channel struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Identifier string    `db:"identifier" json:"identifier"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// QuickReply maps to the quick_replies table.
type QuickReply struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Category  *string   `db:"category" json:"category,omitempty"`
	CreatedBy int64     `db:"created_by" json:"created_by"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
