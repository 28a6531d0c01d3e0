package ports

import "context"

// DiagnosticSource supplies raw pylint JSON entries for one file and rule.
type DiagnosticSource interface {
	Diagnostics(ctx context.Context, rule, path string) ([]map[string]any, error)
}

// PreparedSource is a DiagnosticSource that wants the file set of a batch
// run before its first Diagnostics call.
type PreparedSource interface {
	DiagnosticSource
	Prepare(files []string)
}

// AnnotateRequest names the rule and the files or directories to annotate.
type AnnotateRequest struct {
	Rule  string
	Paths []string
	// DryRun computes the result without writing any file.
	DryRun bool
}

// FileResult summarizes one file of a run.
type FileResult struct {
	Path      string
	Annotated []string
	Skipped   []string
	Unmatched []string
	Changed   bool
	Written   bool
	Diff      string
	Err       error
}

// AnnotateResult summarizes a batch run.
type AnnotateResult struct {
	RunID  string
	Files  []FileResult
	Failed int
}

// AnnotationService is the driving port used by the CLI.
type AnnotationService interface {
	AnnotateFile(ctx context.Context, rule, path string, dryRun bool) (FileResult, error)
	AnnotatePaths(ctx context.Context, req AnnotateRequest) (AnnotateResult, error)
}
