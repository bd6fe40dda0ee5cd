// Package model holds the gitlab refresh pipeline's persistent models.
package model

import (
	"encoding/json"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Connection is one agent's GitLab documentation source. There is exactly one
// per agent; the access token is stored encrypted with its IV alongside.
type Connection struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	AgentID         string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	RepoURL         string    `gorm:"type:varchar(512);not null"`
	EncryptedToken  string    `gorm:"type:text;not null"`
	TokenIV         string    `gorm:"type:varchar(64);not null"`
	Branch          string    `gorm:"type:varchar(128);not null;default:'main'"`
	PathFilter      string    `gorm:"type:varchar(512)"`
	FileExtensions  string    `gorm:"type:varchar(256);not null;default:'.adoc,.md'"`
	ConvertAsciidoc bool      `gorm:"not null;default:true"`
	DocsBaseURL     string    `gorm:"type:varchar(512)"`
	ProductContext  string    `gorm:"type:varchar(256)"`
	// ProductMappings is a JSON object of product-key to url-segment overrides.
	ProductMappings string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName overrides the gorm table name.
func (Connection) TableName() string { return "gitlab_connections" }

// BeforeCreate hook ensures the primary key is populated for new records.
func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = gutils.UUID7Bytes()
	}
	return nil
}

// Extensions returns the configured file extensions as a cleaned slice.
func (c *Connection) Extensions() []string {
	var extensions []string
	for _, ext := range strings.Split(c.FileExtensions, ",") {
		if trimmed := strings.TrimSpace(ext); trimmed != "" {
			extensions = append(extensions, trimmed)
		}
	}
	return extensions
}

// Mappings decodes the product mapping overrides; empty input yields nil.
func (c *Connection) Mappings() (map[string]string, error) {
	if strings.TrimSpace(c.ProductMappings) == "" {
		return nil, nil
	}

	var mappings map[string]string
	if err := json.Unmarshal([]byte(c.ProductMappings), &mappings); err != nil {
		return nil, errors.Wrap(err, "decode product mappings")
	}
	return mappings, nil
}
