// Package domain defines the persistence models for users, prompts,
// generated responses, and votes. These types are mapped with GORM and form
// the core data layer of the farewell-page backend.
//
// Table and column names intentionally preserve the legacy schema
// (`prompts.idUser`, `reponses_prompts.idPrompt`, `votes.reponse_id`) so the
// service can run against databases created by earlier deployments.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// User is an identity record. A user owns zero or more prompts. Users are
// created at registration and never deleted by any flow in this service.
//
// Fields:
//   - ID: auto-increment primary key.
//   - Name: display name.
//   - Email: unique login identifier.
//   - PasswordHash: bcrypt hash; never serialized.
type User struct {
	ID           uint      `json:"id"    gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name"  gorm:"type:varchar(120);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"     gorm:"column:password;type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Prompt is a single farewell-generation request. Scenario, tone, and
// message are always present (enforced by the generation service before
// creation). The legacy wire vocabulary is kept in the JSON tags: "reaction"
// is the title, "cas" the scenario, "ton" the tone, "nouveaudepart" the
// fresh-start flag.
//
// IncludeGifs is a real boolean column; the legacy schema stored it as a
// string, which this model deliberately does not reproduce.
type Prompt struct {
	ID             uint      `json:"id"            gorm:"primaryKey;autoIncrement"`
	Title          string    `json:"reaction"      gorm:"column:reaction;type:varchar(255)"`
	Scenario       string    `json:"cas"           gorm:"column:cas;type:varchar(255);not null"`
	Tone           string    `json:"ton"           gorm:"column:ton;type:varchar(64);not null"`
	Message        string    `json:"message"       gorm:"type:text;not null"`
	FreshStart     bool      `json:"nouveaudepart" gorm:"column:nouveaudepart;not null;default:false"`
	IncludeGifs    bool      `json:"includeGifs"   gorm:"column:include_gifs;not null;default:false"`
	ImageFile      *string   `json:"image,omitempty"      gorm:"column:image;type:varchar(255)"`
	BackgroundFile *string   `json:"background,omitempty" gorm:"column:background;type:varchar(255)"`
	UserID         uint      `json:"idUser"        gorm:"column:idUser;not null;index:idx_prompts_user"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// User is the prompt owner. Loaded on demand; never cascaded.
	User *User `json:"-" gorm:"foreignKey:UserID;references:ID"`
}

// TableName returns the database table name for Prompt.
func (Prompt) TableName() string { return "prompts" }

// Response holds the generated farewell text for exactly one prompt. The
// content column is JSON-typed and free-form; the generation flow stores a
// JSON string, but direct API creation accepts any JSON document. One prompt
// may have many responses, although generation creates exactly one.
type Response struct {
	ID        uint           `json:"id"       gorm:"primaryKey;autoIncrement"`
	Content   datatypes.JSON `json:"reponse"  gorm:"column:reponse;not null"`
	PromptID  uint           `json:"idPrompt" gorm:"column:idPrompt;not null;index:idx_reponses_prompt"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Prompt is the owning generation request; preloaded by the query layer.
	Prompt *Prompt `json:"prompt,omitempty" gorm:"foreignKey:PromptID;references:ID"`
}

// TableName returns the database table name for Response.
func (Response) TableName() string { return "reponses_prompts" }

// Vote is a single directional signal on a response. Value is constrained to
// {-1, 0, 1}. No actor identity is recorded, so repeat voting is possible;
// the displayed tally is simply the sum of all values for a response.
type Vote struct {
	ID         uint      `json:"id"        gorm:"primaryKey;autoIncrement"`
	ResponseID uint      `json:"reponseId" gorm:"column:reponse_id;not null;index:idx_votes_reponse"`
	Value      int       `json:"valeur"    gorm:"column:valeur;not null;check:valeur IN (-1,0,1)"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Response is the rated generation output; preloaded by the query layer.
	Response *Response `json:"reponse,omitempty" gorm:"foreignKey:ResponseID;references:ID"`
}

// TableName returns the database table name for Vote.
func (Vote) TableName() string { return "votes" }
