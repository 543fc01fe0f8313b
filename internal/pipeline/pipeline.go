// Package pipeline sequences the four stages resolve → collect → render →
// validate, persisting one artifact per stage and reloading cached artifacts
// instead of re-invoking collaborators.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/blogpipe/internal/evidence"
	"github.com/sells-group/blogpipe/internal/model"
	"github.com/sells-group/blogpipe/internal/render"
	"github.com/sells-group/blogpipe/internal/resolve"
	"github.com/sells-group/blogpipe/internal/rules"
	"github.com/sells-group/blogpipe/internal/storage"
	"github.com/sells-group/blogpipe/internal/store"
)

// ErrRulesFailed marks a run that completed every requested stage but whose
// rendered document broke content rules. The document and report are
// persisted regardless; this is an unsuccessful outcome, not an execution
// error.
var ErrRulesFailed = eris.New("pipeline: content rules failed")

// Options configures a Pipeline.
type Options struct {
	Backend     storage.Backend
	InputRoot   string
	OutputRoot  string
	TargetStage model.Stage
	Latest      int
	Force       map[model.Stage]bool
	Collector   *evidence.Collector
	Renderer    *render.Renderer
	Rules       []rules.Rule
	History     store.Store // optional
	Now         func() time.Time
}

// Pipeline is the stage orchestrator for one invocation.
type Pipeline struct {
	opts Options
}

// New creates a Pipeline. Zero-value options get working defaults.
func New(opts Options) *Pipeline {
	if opts.TargetStage == 0 {
		opts.TargetStage = model.StageValidate
	}
	if opts.Latest == 0 {
		opts.Latest = 1
	}
	if opts.Rules == nil {
		opts.Rules = rules.DefaultRules(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{opts: opts}
}

// FolderOutcome summarizes one visit folder's trip through the stages.
type FolderOutcome struct {
	Folder        model.VisitFolder `json:"folder"`
	ImageCount    int               `json:"image_count"`
	BusinessFound bool              `json:"business_found"`
	ReviewCount   int               `json:"review_count"`
	Report        *model.RuleReport `json:"report,omitempty"`
}

// Result is the outcome of a full pipeline invocation.
type Result struct {
	RunID    string          `json:"run_id"`
	Outcomes []FolderOutcome `json:"outcomes"`
}

// RulesPassed reports whether every validated folder passed. Folders without
// a report (target stage < validate) do not count against it.
func (r *Result) RulesPassed() bool {
	for _, o := range r.Outcomes {
		if o.Report != nil && !o.Report.Passed {
			return false
		}
	}
	return true
}

// Run executes stages 1..TargetStage for the latest N visit folders. Fatal
// errors abort immediately, leaving completed artifacts intact as resume
// points; soft degradations are recorded in the evidence and never propagate
// as errors.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.New().String()}
	log := zap.L().With(zap.String("run_id", result.RunID))
	log.Info("pipeline: starting",
		zap.String("input_root", p.opts.InputRoot),
		zap.Stringer("target_stage", p.opts.TargetStage),
		zap.Int("latest", p.opts.Latest),
	)

	p.recordRunStart(ctx, result.RunID)

	folders, err := p.resolveFolders(ctx)
	if err != nil {
		p.recordRunEnd(ctx, result.RunID, model.RunStatusFailed)
		return nil, err
	}

	repo := NewArtifactRepo(p.opts.Backend, p.opts.OutputRoot)
	for _, folder := range folders {
		outcome, err := p.runFolder(ctx, log, repo, result.RunID, folder)
		if err != nil {
			p.recordRunEnd(ctx, result.RunID, model.RunStatusFailed)
			return nil, err
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	status := model.RunStatusComplete
	if !result.RulesPassed() {
		status = model.RunStatusRulesFailed
	}
	p.recordRunEnd(ctx, result.RunID, status)
	log.Info("pipeline: finished", zap.String("status", string(status)))
	return result, nil
}

func (p *Pipeline) resolveFolders(ctx context.Context) ([]model.VisitFolder, error) {
	candidates, err := resolve.ListVisitFolders(ctx, p.opts.Backend, p.opts.InputRoot)
	if err != nil {
		return nil, err
	}
	return resolve.SelectLatest(candidates, p.opts.Latest)
}

func (p *Pipeline) runFolder(ctx context.Context, log *zap.Logger, repo *ArtifactRepo, runID string, folder model.VisitFolder) (FolderOutcome, error) {
	log = log.With(zap.String("folder", folder.FolderName))
	outcome := FolderOutcome{Folder: folder}

	// Stage 1: resolve → manifest.
	var manifest model.Manifest
	err := p.runStage(ctx, log, runID, folder.FolderName, model.StageResolve,
		func(ctx context.Context) (bool, error) {
			return p.cached(ctx, repo, folder.FolderName, model.StageResolve, ArtifactManifest, &manifest)
		},
		func(ctx context.Context) error {
			images, err := p.opts.Collector.DiscoverImages(ctx, folder)
			if err != nil {
				return err
			}
			manifest = model.Manifest{Folder: folder, Images: images}
			return repo.SaveJSON(ctx, folder.FolderName, ArtifactManifest, manifest)
		})
	if err != nil {
		return outcome, err
	}
	outcome.ImageCount = len(manifest.Images)

	if p.opts.TargetStage < model.StageCollect {
		return outcome, nil
	}

	// Stage 2: collect → restaurant + vision.
	var info model.BusinessInfo
	var visionEv model.VisionEvidence
	err = p.runStage(ctx, log, runID, folder.FolderName, model.StageCollect,
		func(ctx context.Context) (bool, error) {
			if ok, err := p.cached(ctx, repo, folder.FolderName, model.StageCollect, ArtifactRestaurant, &info); err != nil || !ok {
				return ok, err
			}
			return p.cached(ctx, repo, folder.FolderName, model.StageCollect, ArtifactVision, &visionEv)
		},
		func(ctx context.Context) error {
			info = p.opts.Collector.LookupBusiness(ctx, folder.RestaurantName)
			if err := repo.SaveJSON(ctx, folder.FolderName, ArtifactRestaurant, info); err != nil {
				return err
			}
			visionEv = model.VisionEvidence{
				Images: p.opts.Collector.AnalyzeImages(ctx, folder, manifest.Images),
			}
			return repo.SaveJSON(ctx, folder.FolderName, ArtifactVision, visionEv)
		})
	if err != nil {
		return outcome, err
	}
	outcome.BusinessFound = info.Found
	outcome.ReviewCount = len(info.RecentReviews)

	if p.opts.TargetStage < model.StageRender {
		return outcome, nil
	}

	// Stage 3: render → review.html.
	var doc string
	err = p.runStage(ctx, log, runID, folder.FolderName, model.StageRender,
		func(ctx context.Context) (bool, error) {
			if p.forced(model.StageRender) {
				return false, nil
			}
			ok, err := repo.Has(ctx, folder.FolderName, ArtifactReview)
			if err != nil || !ok {
				return false, err
			}
			doc, err = repo.LoadText(ctx, folder.FolderName, ArtifactReview)
			return err == nil, err
		},
		func(ctx context.Context) error {
			rendered, err := p.opts.Renderer.Render(manifest, info, visionEv.Images)
			if err != nil {
				return err
			}
			doc = rendered
			return repo.SaveText(ctx, folder.FolderName, ArtifactReview, doc)
		})
	if err != nil {
		return outcome, err
	}

	if p.opts.TargetStage < model.StageValidate {
		return outcome, nil
	}

	// Stage 4: validate → rules_report. The report is persisted either way
	// so a failing document can be inspected.
	var report model.RuleReport
	err = p.runStage(ctx, log, runID, folder.FolderName, model.StageValidate,
		func(ctx context.Context) (bool, error) {
			return p.cached(ctx, repo, folder.FolderName, model.StageValidate, ArtifactRuleReport, &report)
		},
		func(ctx context.Context) error {
			report = rules.Validate(doc, rules.EvidenceFromBusinessInfo(info), p.opts.Rules)
			return repo.SaveJSON(ctx, folder.FolderName, ArtifactRuleReport, report)
		})
	if err != nil {
		return outcome, err
	}
	outcome.Report = &report

	if !report.Passed {
		log.Warn("pipeline: content rules failed",
			zap.Strings("violations", report.Violations))
	}
	return outcome, nil
}

// runStage loads a cached artifact or executes the stage, logging and
// recording either way.
func (p *Pipeline) runStage(
	ctx context.Context,
	log *zap.Logger,
	runID, folderName string,
	stage model.Stage,
	loadCached func(ctx context.Context) (bool, error),
	execute func(ctx context.Context) error,
) error {
	start := p.opts.Now()

	hit, err := loadCached(ctx)
	if err != nil {
		p.recordStage(ctx, runID, folderName, stage, false, start, err)
		return err
	}
	if hit {
		log.Info("pipeline: stage loaded from cache", zap.Stringer("stage", stage))
		p.recordStage(ctx, runID, folderName, stage, true, start, nil)
		return nil
	}

	err = execute(ctx)
	p.recordStage(ctx, runID, folderName, stage, false, start, err)
	if err != nil {
		log.Error("pipeline: stage failed", zap.Stringer("stage", stage), zap.Error(err))
		return err
	}
	log.Info("pipeline: stage complete",
		zap.Stringer("stage", stage),
		zap.Duration("duration", p.opts.Now().Sub(start)),
	)
	return nil
}

// cached loads a JSON artifact when present and the stage is not forced.
func (p *Pipeline) cached(ctx context.Context, repo *ArtifactRepo, folderName string, stage model.Stage, artifact string, v any) (bool, error) {
	if p.forced(stage) {
		return false, nil
	}
	ok, err := repo.Has(ctx, folderName, artifact)
	if err != nil || !ok {
		return false, err
	}
	if err := repo.LoadJSON(ctx, folderName, artifact, v); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Pipeline) forced(stage model.Stage) bool {
	return p.opts.Force[stage]
}

func (p *Pipeline) recordRunStart(ctx context.Context, runID string) {
	if p.opts.History == nil {
		return
	}
	run := model.Run{
		ID:          runID,
		InputRoot:   p.opts.InputRoot,
		TargetStage: p.opts.TargetStage,
		Latest:      p.opts.Latest,
		Status:      model.RunStatusRunning,
	}
	if err := p.opts.History.CreateRun(ctx, run); err != nil {
		zap.L().Warn("pipeline: record run start failed", zap.Error(err))
	}
}

func (p *Pipeline) recordRunEnd(ctx context.Context, runID string, status model.RunStatus) {
	if p.opts.History == nil {
		return
	}
	if err := p.opts.History.CompleteRun(ctx, runID, status); err != nil {
		zap.L().Warn("pipeline: record run end failed", zap.Error(err))
	}
}

func (p *Pipeline) recordStage(ctx context.Context, runID, folderName string, stage model.Stage, cached bool, start time.Time, stageErr error) {
	if p.opts.History == nil {
		return
	}
	rec := model.StageRecord{
		ID:         uuid.New().String(),
		RunID:      runID,
		Folder:     folderName,
		Stage:      stage.String(),
		Cached:     cached,
		DurationMs: p.opts.Now().Sub(start).Milliseconds(),
		StartedAt:  start,
	}
	if stageErr != nil {
		rec.Error = stageErr.Error()
	}
	if err := p.opts.History.RecordStage(ctx, rec); err != nil {
		zap.L().Warn("pipeline: record stage failed", zap.Error(err))
	}
}
