package domain

import "time"

// JobStatus represents the status of a background generation job.
// Values include JobStatusSubmitted, JobStatusRendering, JobStatusCompleted,
// and JobStatusFailed.
type JobStatus string

const (
	JobStatusSubmitted JobStatus = "submitted"
	JobStatusRendering JobStatus = "rendering"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Artifact is an opaque reference to a rendered image held by the rendering
// backend. It resolves to image bytes via the backend's view endpoint.
type Artifact struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Kind      string `json:"type"`
}

// IsZero reports whether the artifact reference is empty.
func (a Artifact) IsZero() bool {
	return a.Filename == ""
}

// GenerationJob records one background generation request and its outcome.
// The ID is the prompt id assigned by the rendering backend at submission.
type GenerationJob struct {
	ID                string     `gorm:"type:text;primaryKey" json:"id"`
	RequestID         string     `gorm:"type:text;index" json:"request_id"`
	Status            JobStatus  `gorm:"default:submitted" json:"status"`
	Prompt            string     `gorm:"type:text" json:"prompt"`
	NegativePrompt    string     `gorm:"type:text" json:"negative_prompt"`
	Seed              int64      `json:"seed"`
	ArtifactFilename  string     `json:"artifact_filename,omitempty"`
	ArtifactSubfolder string     `json:"artifact_subfolder,omitempty"`
	ArtifactKind      string     `json:"artifact_kind,omitempty"`
	ArchiveURL        string     `json:"archive_url,omitempty"`
	ErrorText         string     `json:"error,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// TableName returns the database table name for GenerationJob.
func (GenerationJob) TableName() string {
	return "generation_jobs"
}

// SetArtifact copies an artifact reference into the job record.
func (j *GenerationJob) SetArtifact(a Artifact) {
	j.ArtifactFilename = a.Filename
	j.ArtifactSubfolder = a.Subfolder
	j.ArtifactKind = a.Kind
}

// Artifact reconstructs the artifact reference stored on the job.
func (j *GenerationJob) Artifact() Artifact {
	return Artifact{
		Filename:  j.ArtifactFilename,
		Subfolder: j.ArtifactSubfolder,
		Kind:      j.ArtifactKind,
	}
}
