package domain

import "time"

// Run is the observable state of one migration run. The engine saves it to
// the RunStore after every transition so the UI and watchdog can poll it.
type Run struct {
	ID        string
	Source    string // export container path
	DryRun    bool
	Phase     Phase
	Total     int    // recipes found by the decode pass
	Position  int    // 1-based index of the recipe currently in flight
	Current   string // title of the recipe currently in flight
	Outcomes  []*RecipeOutcome
	StartedAt time.Time
	UpdatedAt time.Time
}

// Phase tracks the run through its pipeline. Transitions are strictly
// forward; Reporting is terminal.
type Phase int

const (
	PhaseDecoding Phase = iota
	PhaseResolving
	PhaseSyncing
	PhaseUploading
	PhaseReporting
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseDecoding:
		return "decoding"
	case PhaseResolving:
		return "resolving organizers"
	case PhaseSyncing:
		return "syncing recipes"
	case PhaseUploading:
		return "uploading images"
	case PhaseReporting:
		return "reporting"
	default:
		return "unknown"
	}
}

// RecipeOutcome records what happened to one recipe. Failures carry the
// stage they occurred in; image failures downgrade the outcome instead of
// failing it.
type RecipeOutcome struct {
	Index      int    // 1-based position in the export
	Title      string // original source title
	FinalTitle string // after duplicate renaming; equals Title unless renamed
	Slug       string
	Status     OutcomeStatus
	Stage      Stage  // failing stage when Status is OutcomeFailed
	Reason     string // failure detail, empty on success
	Image      ImageStatus
	ImageNote  string // upload failure detail
}

// Renamed reports whether the recipe landed under a different title.
func (o *RecipeOutcome) Renamed() bool {
	return o.FinalTitle != "" && o.FinalTitle != o.Title
}

// OutcomeStatus classifies a per-recipe result.
type OutcomeStatus int

const (
	OutcomeCreated OutcomeStatus = iota
	OutcomeRenamed
	OutcomeFailed
	OutcomeSkipped // dry run
)

// String returns a human-readable outcome status.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeCreated:
		return "created"
	case OutcomeRenamed:
		return "created-with-rename"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped-dry-run"
	default:
		return "unknown"
	}
}

// Stage identifies where in the per-recipe pipeline a failure happened.
type Stage int

const (
	StageNone Stage = iota
	StageDecode
	StageStub
	StagePatch
	StageImage
)

// String returns a human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageNone:
		return ""
	case StageDecode:
		return "decode"
	case StageStub:
		return "stub"
	case StagePatch:
		return "patch"
	case StageImage:
		return "image"
	default:
		return "unknown"
	}
}

// ImageStatus tracks the image sub-outcome for a recipe.
type ImageStatus int

const (
	ImageNone ImageStatus = iota // no embedded image, or uploads disabled
	ImageUploaded
	ImageFailed
)

// String returns a human-readable image status.
func (s ImageStatus) String() string {
	switch s {
	case ImageNone:
		return "none"
	case ImageUploaded:
		return "uploaded"
	case ImageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RunReport is the terminal output of a run: every recipe's outcome in
// source order plus aggregate counts. Produced even when recipes failed.
type RunReport struct {
	Source   string
	DryRun   bool
	Outcomes []*RecipeOutcome
	Counts   Counts
	Elapsed  time.Duration
}

// Counts aggregates outcomes for the summary.
type Counts struct {
	Created        int
	Renamed        int
	Failed         int
	Skipped        int
	ImagesUploaded int
	ImagesFailed   int
}

// Tally recomputes the counts from a list of outcomes.
func Tally(outcomes []*RecipeOutcome) Counts {
	var c Counts
	for _, o := range outcomes {
		switch o.Status {
		case OutcomeCreated:
			c.Created++
		case OutcomeRenamed:
			c.Renamed++
		case OutcomeFailed:
			c.Failed++
		case OutcomeSkipped:
			c.Skipped++
		}
		switch o.Image {
		case ImageUploaded:
			c.ImagesUploaded++
		case ImageFailed:
			c.ImagesFailed++
		}
	}
	return c
}
