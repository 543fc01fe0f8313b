package model

// Stage identifies one pipeline stage. Stages run in order; a target stage T
// executes stages 1..T.
type Stage int

const (
	StageResolve Stage = iota + 1
	StageCollect
	StageRender
	StageValidate
)

// StageNames lists the canonical stage names in execution order.
var StageNames = []string{"resolve", "collect", "render", "validate"}

func (s Stage) String() string {
	if s < StageResolve || s > StageValidate {
		return "unknown"
	}
	return StageNames[s-1]
}

// ParseStage converts a stage name to a Stage. Returns false for unknown names.
func ParseStage(name string) (Stage, bool) {
	for i, n := range StageNames {
		if n == name {
			return Stage(i + 1), true
		}
	}
	return 0, false
}

// VisitFolder is one input unit: a dated, named collection of photographs for
// a single restaurant visit. Parsed once from a YYYYMMDD_<name> folder name
// and immutable afterward.
type VisitFolder struct {
	SourceID       string `json:"source_id"`
	FolderName     string `json:"folder_name"`
	VisitDate      string `json:"visit_date"` // YYYYMMDD
	RestaurantName string `json:"restaurant_name"`
}

// ImageRef points at one discovered photo.
type ImageRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// Manifest is the stage-1 artifact: the resolved visit folder plus every
// discovered image, in discovery order.
type Manifest struct {
	Folder VisitFolder `json:"folder"`
	Images []ImageRef  `json:"images"`
}
