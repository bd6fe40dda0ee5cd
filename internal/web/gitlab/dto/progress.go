// Package dto carries the gitlab refresh pipeline's transport types.
package dto

// Phase names one stage of a refresh run, in execution order.
type Phase string

const (
	PhasePulling    Phase = "pulling"
	PhaseConverting Phase = "converting"
	PhaseArchiving  Phase = "archiving"
	PhaseClearing   Phase = "clearing"
	PhaseUploading  Phase = "uploading"
	PhaseDone       Phase = "done"
	PhaseError      Phase = "error"
)

// Progress is one progress callback payload, emitted at every phase boundary
// and at every file boundary inside the converting and uploading phases.
type Progress struct {
	Phase       Phase  `json:"phase"`
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	CurrentFile string `json:"currentFile,omitempty"`
}

// ProgressCallback observes pipeline progress. It is optional and must be
// side-effect-free from the orchestrator's perspective.
type ProgressCallback func(Progress)
