// Package service sequences the knowledge-base refresh pipeline: pull the
// documentation tree, convert it, snapshot it, then replace the agent's
// knowledge base wholesale.
package service

import (
	"context"
	"path"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"

	"github.com/Laisky/kb-refresh/internal/library/archive"
	"github.com/Laisky/kb-refresh/internal/library/asciidoc"
	"github.com/Laisky/kb-refresh/internal/library/docurl"
	"github.com/Laisky/kb-refresh/internal/library/gitlab"
	"github.com/Laisky/kb-refresh/internal/library/smartindex"
	"github.com/Laisky/kb-refresh/internal/web/gitlab/dao"
	"github.com/Laisky/kb-refresh/internal/web/gitlab/dto"
	"github.com/Laisky/kb-refresh/internal/web/gitlab/model"
	knowledgeDao "github.com/Laisky/kb-refresh/internal/web/knowledge/dao"
	"github.com/Laisky/kb-refresh/library/log"
)

// smartIndexFilename names the generated cross-document overview.
const smartIndexFilename = "knowledge-base-index.md"

// ErrRefreshInProgress rejects a trigger while another run holds the agent's lock.
var ErrRefreshInProgress = errors.New("a refresh is already running for this agent")

// RepoClient is the repository surface the pipeline consumes; satisfied by
// *gitlab.Client.
type RepoClient interface {
	ResolveProject(ctx context.Context) (int, error)
	CurrentCommit(ctx context.Context, branch string) (string, error)
	ListTree(ctx context.Context, pathFilter string, recursive bool) ([]gitlab.TreeEntry, error)
	FileContent(ctx context.Context, filePath string) (string, error)
	Validate(ctx context.Context, pathFilter string, extensions []string) gitlab.ValidationResult
}

// ClientFactory builds a repository client for one run's connection config.
type ClientFactory func(cfg gitlab.Config) (RepoClient, error)

// Vault is the credential surface the pipeline consumes.
type Vault interface {
	Encrypt(plaintext string) (cipherTextHex, ivHex string, err error)
	Decrypt(cipherTextHex, ivHex string) (string, error)
}

// Config wires the refresh service's collaborators.
type Config struct {
	Logger      logSDK.Logger
	Connections *dao.Connections
	Runs        *dao.Runs
	Store       *knowledgeDao.Store
	Vault       Vault
	Archives    archive.Store
	Lock        RunLock
	// NewClient is optional; defaults to the real gitlab client.
	NewClient ClientFactory
}

// Service is the refresh orchestrator. It is strictly sequential within one
// run: no two files are fetched, converted or uploaded concurrently.
type Service struct {
	logger      logSDK.Logger
	connections *dao.Connections
	runs        *dao.Runs
	store       *knowledgeDao.Store
	vault       Vault
	archives    archive.Store
	lock        RunLock
	newClient   ClientFactory
}

// New validates the wiring and builds the service.
func New(cfg Config) (*Service, error) {
	switch {
	case cfg.Connections == nil:
		return nil, errors.New("connections dao is required")
	case cfg.Runs == nil:
		return nil, errors.New("runs dao is required")
	case cfg.Store == nil:
		return nil, errors.New("document store is required")
	case cfg.Vault == nil:
		return nil, errors.New("credential vault is required")
	case cfg.Archives == nil:
		return nil, errors.New("archive store is required")
	case cfg.Lock == nil:
		return nil, errors.New("run lock is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Logger.Named("gitlab_refresh")
	}

	newClient := cfg.NewClient
	if newClient == nil {
		newClient = func(clientCfg gitlab.Config) (RepoClient, error) {
			return gitlab.NewClient(clientCfg)
		}
	}

	return &Service{
		logger:      logger,
		connections: cfg.Connections,
		runs:        cfg.Runs,
		store:       cfg.Store,
		vault:       cfg.Vault,
		archives:    cfg.Archives,
		lock:        cfg.Lock,
		newClient:   newClient,
	}, nil
}

// processedFile is the pipeline-local record of one converted document.
type processedFile struct {
	originalPath string
	filename     string
	folderPath   string
	content      string
	converted    bool
	sourceURL    string
	product      string
}

// Refresh executes one full refresh run for the agent. Configuration and
// credential errors abort before any run row exists; everything after run
// creation lands in the audit log, completed or failed.
func (s *Service) Refresh(ctx context.Context, agentID string, progress dto.ProgressCallback) (*model.RefreshRun, error) {
	logger := s.logger.With(zap.String("agent_id", agentID))

	conn, err := s.connections.GetByAgent(ctx, agentID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	token, err := s.vault.Decrypt(conn.EncryptedToken, conn.TokenIV)
	if err != nil {
		return nil, errors.Wrap(err, "decrypt repository token")
	}

	acquired, holder, err := s.lock.TryAcquire(ctx, agentID)
	if err != nil {
		return nil, errors.Wrap(err, "acquire run lock")
	}
	if !acquired {
		logger.Info("refresh already running", zap.String("holder", holder))
		return nil, errors.WithStack(ErrRefreshInProgress)
	}
	defer func() {
		if releaseErr := s.lock.Release(context.WithoutCancel(ctx), agentID); releaseErr != nil {
			logger.Error("release run lock", zap.Error(releaseErr))
		}
	}()

	run := &model.RefreshRun{AgentID: agentID}
	if err = s.runs.Create(ctx, run); err != nil {
		return nil, errors.WithStack(err)
	}
	logger = logger.With(zap.String("run_id", run.ID.String()))

	update, execErr := s.execute(ctx, logger, conn, token, run, progress)
	if execErr != nil {
		logger.Error("refresh run failed", zap.Error(execErr))
		report(progress, dto.PhaseError, 0, 0, "")
		if markErr := s.runs.MarkFailed(ctx, run.ID, execErr.Error()); markErr != nil {
			logger.Error("mark run failed", zap.Error(markErr))
		}

		failed, loadErr := s.runs.Get(ctx, run.ID)
		if loadErr != nil {
			return run, errors.WithStack(execErr)
		}
		return failed, errors.WithStack(execErr)
	}

	if err = s.runs.MarkCompleted(ctx, run.ID, *update); err != nil {
		return run, errors.WithStack(err)
	}
	report(progress, dto.PhaseDone, update.FilesProcessed, update.FilesProcessed, "")

	completed, err := s.runs.Get(ctx, run.ID)
	if err != nil {
		return run, errors.WithStack(err)
	}

	logger.Info("refresh run completed",
		zap.Int("files_processed", completed.FilesProcessed),
		zap.Int("files_converted", completed.FilesConverted),
		zap.Int("files_skipped", completed.FilesSkipped),
		zap.String("commit_sha", completed.CommitSHA))

	return completed, nil
}

// execute runs phases pulling through uploading and returns the terminal
// counters. Any returned error is unrecoverable for the whole run.
func (s *Service) execute(ctx context.Context, logger logSDK.Logger,
	conn *model.Connection, token string, run *model.RefreshRun,
	progress dto.ProgressCallback,
) (*dao.TerminalUpdate, error) {
	client, err := s.newClient(gitlab.Config{
		RepoURL: conn.RepoURL,
		Token:   token,
		Branch:  conn.Branch,
	})
	if err != nil {
		return nil, errors.Wrap(err, "build repository client")
	}

	commitSHA, err := client.CurrentCommit(ctx, conn.Branch)
	if err != nil {
		return nil, errors.Wrap(err, "resolve commit sha")
	}

	mappings, err := conn.Mappings()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	deriver := docurl.NewDeriver(conn.DocsBaseURL, mappings)

	// pulling
	report(progress, dto.PhasePulling, 0, 0, "")
	entries, err := client.ListTree(ctx, conn.PathFilter, true)
	if err != nil {
		return nil, errors.Wrap(err, "list repository tree")
	}

	extensions := conn.Extensions()
	var matched []gitlab.TreeEntry
	for _, entry := range entries {
		if entry.Type == "blob" && gitlab.MatchesExtension(entry.Name, extensions) {
			matched = append(matched, entry)
		}
	}
	logger.Info("pulled repository tree",
		zap.Int("total_entries", len(entries)),
		zap.Int("matched_files", len(matched)))

	// converting; a per-file failure is logged, counted as skipped and never
	// aborts the run
	var processed []processedFile
	var converted, skipped int
	for idx, entry := range matched {
		report(progress, dto.PhaseConverting, idx+1, len(matched), entry.Path)

		file, err := s.convertOne(ctx, client, deriver, conn, entry)
		if err != nil {
			logger.Warn("skip file", zap.Error(err), zap.String("path", entry.Path))
			skipped++
			continue
		}
		if file.converted {
			converted++
		}
		processed = append(processed, file)
	}

	// archiving; failures here are fatal, a partial archive must never be
	// mistaken for a valid snapshot
	report(progress, dto.PhaseArchiving, 0, 0, "")
	now := time.Now().UTC()
	manifestFiles := make([]archive.ManifestFile, 0, len(processed))
	archiveEntries := make([]archive.Entry, 0, len(processed))
	for _, file := range processed {
		manifestFiles = append(manifestFiles, archive.ManifestFile{
			Filename:     file.filename,
			OriginalPath: file.originalPath,
		})
		archiveEntries = append(archiveEntries, archive.Entry{
			Filename: file.filename,
			Content:  file.content,
		})
	}

	archiveBytes, err := archive.Build(archive.Manifest{
		AgentID:   conn.AgentID,
		Timestamp: now,
		CommitSHA: commitSHA,
		FileCount: len(processed),
		Files:     manifestFiles,
	}, archiveEntries)
	if err != nil {
		return nil, errors.Wrap(err, "build archive")
	}

	archivePath, err := s.archives.Put(ctx, archive.Key(conn.AgentID, now), archiveBytes)
	if err != nil {
		return nil, errors.Wrap(err, "store archive")
	}

	// clearing; only reached after the snapshot is durable, so any crash
	// before this point leaves the prior knowledge base intact
	report(progress, dto.PhaseClearing, 0, 0, "")
	if err = s.store.ClearAgent(ctx, conn.AgentID); err != nil {
		return nil, errors.Wrap(err, "clear knowledge base")
	}

	// uploading
	total := len(processed) + 1
	folderCache := make(map[string]*uuid.UUID)
	for idx, file := range processed {
		report(progress, dto.PhaseUploading, idx+1, total, file.filename)

		folderID, err := s.resolveFolder(ctx, conn.AgentID, file.folderPath, folderCache)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		_, err = s.store.Ingest(ctx, conn.AgentID, file.filename, "text/markdown",
			int64(len(file.content)), file.content, knowledgeDao.IngestOptions{
				Metadata: map[string]string{
					"originalPath": file.originalPath,
					"refreshRunId": run.ID.String(),
				},
				FolderID: folderID,
				Category: knowledgeDao.CategoryKnowledge,
			})
		if err != nil {
			return nil, errors.Wrapf(err, "upload %s", file.filename)
		}
	}

	// one extra summary document covering the whole run
	indexDocs := make([]smartindex.Document, 0, len(processed))
	for _, file := range processed {
		indexDocs = append(indexDocs, smartindex.Document{
			Filename:     file.filename,
			OriginalPath: file.originalPath,
			Content:      file.content,
		})
	}
	indexContent := smartindex.Generate(indexDocs)

	report(progress, dto.PhaseUploading, total, total, smartIndexFilename)
	_, err = s.store.Ingest(ctx, conn.AgentID, smartIndexFilename, "text/markdown",
		int64(len(indexContent)), indexContent, knowledgeDao.IngestOptions{
			Metadata: map[string]string{"refreshRunId": run.ID.String()},
			Category: knowledgeDao.CategoryKnowledge,
		})
	if err != nil {
		return nil, errors.Wrap(err, "upload smart index")
	}

	return &dao.TerminalUpdate{
		FilesProcessed: len(processed) + 1,
		FilesConverted: converted,
		FilesSkipped:   skipped,
		ArchivePath:    archivePath,
		ArchiveSize:    int64(len(archiveBytes)),
		CommitSHA:      commitSHA,
	}, nil
}

// Validate runs the advisory pre-save connection check. Transport failures
// come back inside the result; only configuration errors are returned.
func (s *Service) Validate(ctx context.Context, agentID string, req dto.ValidateConnectionRequest) (gitlab.ValidationResult, error) {
	conn, err := s.connections.GetByAgent(ctx, agentID)
	if err != nil {
		return gitlab.ValidationResult{}, errors.WithStack(err)
	}

	token, err := s.vault.Decrypt(conn.EncryptedToken, conn.TokenIV)
	if err != nil {
		return gitlab.ValidationResult{}, errors.Wrap(err, "decrypt repository token")
	}

	client, err := s.newClient(gitlab.Config{
		RepoURL: conn.RepoURL,
		Token:   token,
		Branch:  conn.Branch,
	})
	if err != nil {
		return gitlab.ValidationResult{}, errors.Wrap(err, "build repository client")
	}

	pathFilter := conn.PathFilter
	if req.PathFilter != "" {
		pathFilter = req.PathFilter
	}

	extensions := conn.Extensions()
	if req.FileExtensions != "" {
		extensions = (&model.Connection{FileExtensions: req.FileExtensions}).Extensions()
	}

	return client.Validate(ctx, pathFilter, extensions), nil
}

// convertOne fetches and rewrites a single file.
func (s *Service) convertOne(ctx context.Context, client RepoClient,
	deriver *docurl.Deriver, conn *model.Connection, entry gitlab.TreeEntry,
) (processedFile, error) {
	content, err := client.FileContent(ctx, entry.Path)
	if err != nil {
		return processedFile{}, errors.Wrapf(err, "fetch %s", entry.Path)
	}

	product := docurl.ProductKey(entry.Path)
	productContext := conn.ProductContext
	if productContext == "" {
		productContext = docurl.DisplayName(product)
	}

	prov := asciidoc.Provenance{
		ProductContext: productContext,
		SourceURL:      deriver.SourceURL(entry.Path),
	}

	isAsciidoc := strings.EqualFold(path.Ext(entry.Name), ".adoc")
	file := processedFile{
		originalPath: entry.Path,
		filename:     entry.Name,
		folderPath:   folderPathFor(entry.Path),
		sourceURL:    prov.SourceURL,
		product:      product,
	}

	if isAsciidoc && conn.ConvertAsciidoc {
		file.content = asciidoc.Convert(content, prov)
		file.converted = true
		file.filename = strings.TrimSuffix(entry.Name, path.Ext(entry.Name)) + ".md"
	} else {
		file.content = asciidoc.AnnotateMarkdown(content, prov)
	}

	return file, nil
}

// resolveFolder memoizes folder-path resolution per run, keyed by the full
// logical folder path.
func (s *Service) resolveFolder(ctx context.Context, agentID, folderPath string,
	cache map[string]*uuid.UUID,
) (*uuid.UUID, error) {
	if cached, ok := cache[folderPath]; ok {
		return cached, nil
	}

	folderID, err := s.store.ResolveFolderPath(ctx, agentID, folderPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cache[folderPath] = folderID
	return folderID, nil
}

// folderPathFor maps a repository path to its logical folder path: the product
// key plus the subpath between "pages" and the filename.
func folderPathFor(repoPath string) string {
	segments := strings.Split(strings.Trim(repoPath, "/"), "/")
	if len(segments) < 2 {
		return ""
	}

	parts := []string{docurl.ProductKey(repoPath)}
	for idx, segment := range segments {
		if segment == "pages" {
			parts = append(parts, segments[idx+1:len(segments)-1]...)
			break
		}
	}

	return strings.Join(parts, "/")
}

func report(cb dto.ProgressCallback, phase dto.Phase, current, total int, file string) {
	if cb == nil {
		return
	}

	cb(dto.Progress{
		Phase:       phase,
		Current:     current,
		Total:       total,
		CurrentFile: file,
	})
}
