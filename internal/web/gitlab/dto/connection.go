package dto

// SaveConnectionRequest is the admin payload for creating or replacing an
// agent's gitlab connection. The access token arrives in plaintext and is
// encrypted before it touches the database.
type SaveConnectionRequest struct {
	RepoURL         string            `json:"repoUrl" binding:"required"`
	Token           string            `json:"token" binding:"required"`
	Branch          string            `json:"branch"`
	PathFilter      string            `json:"pathFilter"`
	FileExtensions  string            `json:"fileExtensions"`
	ConvertAsciidoc *bool             `json:"convertAsciidoc"`
	DocsBaseURL     string            `json:"docsBaseUrl"`
	ProductContext  string            `json:"productContext"`
	ProductMappings map[string]string `json:"productMappings"`
}

// ConnectionResponse mirrors a stored connection with the token redacted.
type ConnectionResponse struct {
	AgentID         string `json:"agentId"`
	RepoURL         string `json:"repoUrl"`
	Branch          string `json:"branch"`
	PathFilter      string `json:"pathFilter"`
	FileExtensions  string `json:"fileExtensions"`
	ConvertAsciidoc bool   `json:"convertAsciidoc"`
	DocsBaseURL     string `json:"docsBaseUrl"`
	ProductContext  string `json:"productContext"`
	ProductMappings string `json:"productMappings"`
}

// ValidateConnectionRequest overrides the stored filter settings for one
// advisory validation call; empty fields fall back to the stored connection.
type ValidateConnectionRequest struct {
	PathFilter     string `json:"pathFilter"`
	FileExtensions string `json:"fileExtensions"`
}
