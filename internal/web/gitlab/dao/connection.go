// Package dao is the data access object for gitlab connections and refresh runs.
package dao

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"gorm.io/gorm"

	"github.com/Laisky/kb-refresh/internal/web/gitlab/model"
)

// ErrConnectionNotFound indicates the agent has no gitlab connection configured.
var ErrConnectionNotFound = errors.New("gitlab connection not found")

// Connections persists per-agent gitlab connections.
type Connections struct {
	db *gorm.DB
}

// NewConnections creates the connection dao.
func NewConnections(db *gorm.DB) *Connections {
	return &Connections{db: db}
}

// GetByAgent loads the agent's connection; ErrConnectionNotFound when absent.
func (d *Connections) GetByAgent(ctx context.Context, agentID string) (*model.Connection, error) {
	var conn model.Connection
	if err := d.db.WithContext(ctx).
		Where("agent_id = ?", agentID).First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrConnectionNotFound, "agent %s", agentID)
		}
		return nil, errors.Wrap(err, "load connection")
	}

	return &conn, nil
}

// Upsert creates the agent's connection or overwrites the existing one.
// There is never more than one connection per agent.
func (d *Connections) Upsert(ctx context.Context, conn *model.Connection) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Connection
		err := tx.Where("agent_id = ?", conn.AgentID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err = tx.Create(conn).Error; err != nil {
				return errors.Wrap(err, "create connection")
			}
			return nil
		case err != nil:
			return errors.Wrap(err, "load existing connection")
		}

		conn.ID = existing.ID
		conn.CreatedAt = existing.CreatedAt
		if err = tx.Save(conn).Error; err != nil {
			return errors.Wrap(err, "update connection")
		}
		return nil
	})
}
