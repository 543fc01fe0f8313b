package pipeline

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/blogpipe/internal/storage"
)

// Artifact file names, one per stage output. Each is a standalone,
// independently re-loadable snapshot under <output root>/<folder name>/.
const (
	ArtifactManifest   = "manifest.json"
	ArtifactRestaurant = "restaurant.json"
	ArtifactVision     = "vision.json"
	ArtifactReview     = "review.html"
	ArtifactRuleReport = "rules_report.json"
)

// ArtifactRepo persists and reloads per-stage artifacts, keyed by visit
// folder name and artifact file. Artifacts are replaced wholesale, never
// partially updated.
type ArtifactRepo struct {
	backend    storage.Backend
	outputRoot string
}

// NewArtifactRepo creates a repository rooted at outputRoot.
func NewArtifactRepo(backend storage.Backend, outputRoot string) *ArtifactRepo {
	return &ArtifactRepo{backend: backend, outputRoot: outputRoot}
}

// Has reports whether the artifact already exists.
func (r *ArtifactRepo) Has(ctx context.Context, folderName, artifact string) (bool, error) {
	ok, err := r.backend.Exists(ctx, filepath.Join(r.outputRoot, folderName), artifact)
	if err != nil {
		return false, eris.Wrapf(err, "pipeline: check artifact %s/%s", folderName, artifact)
	}
	return ok, nil
}

// SaveJSON marshals v and durably writes it as the artifact.
func (r *ArtifactRepo) SaveJSON(ctx context.Context, folderName, artifact string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "pipeline: marshal artifact %s/%s", folderName, artifact)
	}
	return r.SaveText(ctx, folderName, artifact, string(data))
}

// LoadJSON reloads a previously saved artifact into v.
func (r *ArtifactRepo) LoadJSON(ctx context.Context, folderName, artifact string, v any) error {
	data, err := r.backend.Read(ctx, filepath.Join(r.outputRoot, folderName, artifact))
	if err != nil {
		return eris.Wrapf(err, "pipeline: load artifact %s/%s", folderName, artifact)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "pipeline: decode artifact %s/%s", folderName, artifact)
	}
	return nil
}

// SaveText durably writes a text artifact.
func (r *ArtifactRepo) SaveText(ctx context.Context, folderName, artifact, text string) error {
	dir, err := r.backend.EnsureDir(ctx, r.outputRoot, folderName)
	if err != nil {
		return eris.Wrapf(err, "pipeline: ensure output folder %s", folderName)
	}
	if err := r.backend.Write(ctx, dir, artifact, []byte(text)); err != nil {
		return eris.Wrapf(err, "pipeline: save artifact %s/%s", folderName, artifact)
	}
	return nil
}

// LoadText reloads a text artifact.
func (r *ArtifactRepo) LoadText(ctx context.Context, folderName, artifact string) (string, error) {
	data, err := r.backend.Read(ctx, filepath.Join(r.outputRoot, folderName, artifact))
	if err != nil {
		return "", eris.Wrapf(err, "pipeline: load artifact %s/%s", folderName, artifact)
	}
	return string(data), nil
}
