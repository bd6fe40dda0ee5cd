package service

import (
	"context"
	"encoding/json"

	errors "github.com/Laisky/errors/v2"

	"github.com/Laisky/kb-refresh/internal/web/gitlab/dto"
	"github.com/Laisky/kb-refresh/internal/web/gitlab/model"
)

// SaveConnection encrypts the access token and creates or replaces the
// agent's connection.
func (s *Service) SaveConnection(ctx context.Context, agentID string, req dto.SaveConnectionRequest) (*model.Connection, error) {
	cipherText, iv, err := s.vault.Encrypt(req.Token)
	if err != nil {
		return nil, errors.Wrap(err, "encrypt repository token")
	}

	mappings := ""
	if len(req.ProductMappings) > 0 {
		encoded, err := json.Marshal(req.ProductMappings)
		if err != nil {
			return nil, errors.Wrap(err, "encode product mappings")
		}
		mappings = string(encoded)
	}

	branch := req.Branch
	if branch == "" {
		branch = "main"
	}
	extensions := req.FileExtensions
	if extensions == "" {
		extensions = ".adoc,.md"
	}
	convertAsciidoc := true
	if req.ConvertAsciidoc != nil {
		convertAsciidoc = *req.ConvertAsciidoc
	}

	conn := &model.Connection{
		AgentID:         agentID,
		RepoURL:         req.RepoURL,
		EncryptedToken:  cipherText,
		TokenIV:         iv,
		Branch:          branch,
		PathFilter:      req.PathFilter,
		FileExtensions:  extensions,
		ConvertAsciidoc: convertAsciidoc,
		DocsBaseURL:     req.DocsBaseURL,
		ProductContext:  req.ProductContext,
		ProductMappings: mappings,
	}
	if err = s.connections.Upsert(ctx, conn); err != nil {
		return nil, errors.WithStack(err)
	}

	return conn, nil
}

// GetConnection loads the agent's connection for display; the caller must
// never expose the encrypted token fields.
func (s *Service) GetConnection(ctx context.Context, agentID string) (*model.Connection, error) {
	conn, err := s.connections.GetByAgent(ctx, agentID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return conn, nil
}

// ListRuns returns the agent's recent audit rows, newest first.
func (s *Service) ListRuns(ctx context.Context, agentID string, limit int) ([]model.RefreshRun, error) {
	runs, err := s.runs.ListByAgent(ctx, agentID, limit)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return runs, nil
}
