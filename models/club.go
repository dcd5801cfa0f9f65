package models

import "time"

type Club struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	EmblemKey *string `json:"-" db:"emblem_key"`
	EmblemURL *string `json:"emblem_url,omitempty" db:"-"`
}
