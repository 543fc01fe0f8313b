package evidence

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/blogpipe/internal/model"
	"github.com/sells-group/blogpipe/pkg/vision"
)

// AnalyzeImages runs per-image analysis with bounded concurrency and returns
// one ImageEvidence per input image, in the input (discovery) order. A failed
// or unparseable analysis becomes a raw-fallback entry; the collection as a
// whole never fails.
func (c *Collector) AnalyzeImages(ctx context.Context, folder model.VisitFolder, images []model.ImageRef) []model.ImageEvidence {
	log := zap.L().With(zap.String("folder", folder.FolderName))
	results := make([]model.ImageEvidence, len(images))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			results[i] = c.analyzeOne(gCtx, log, img)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *Collector) analyzeOne(ctx context.Context, log *zap.Logger, img model.ImageRef) model.ImageEvidence {
	if c.vision == nil {
		return model.ImageEvidence{Image: img, Raw: "vision provider not configured"}
	}

	// A missing image body degrades the call, not the collection; the
	// provider can still classify by name in fixture mode.
	data, err := c.backend.Read(ctx, img.ID)
	if err != nil {
		log.Warn("evidence: image read failed", zap.String("image", img.Name), zap.Error(err))
		data = nil
	}

	result, err := c.vision.Analyze(ctx, vision.Image{
		ID:       img.ID,
		Name:     img.Name,
		MimeType: img.MimeType,
		Bytes:    data,
	})
	if err != nil {
		log.Warn("evidence: vision analysis failed", zap.String("image", img.Name), zap.Error(err))
		return model.ImageEvidence{Image: img, Raw: "analysis failed: " + err.Error()}
	}
	if result.Analysis == nil {
		log.Info("evidence: unstructured vision response retained", zap.String("image", img.Name))
		return model.ImageEvidence{Image: img, Raw: result.Raw}
	}

	return model.ImageEvidence{
		Image: img,
		Analysis: &model.ImageAnalysis{
			SceneType:        model.NormalizeScene(result.Analysis.SceneType),
			Observations:     result.Analysis.Observations,
			FoodGuess:        result.Analysis.FoodGuess,
			AmbienceHints:    result.Analysis.AmbienceHints,
			BloggableDetails: result.Analysis.BloggableDetails,
			Warnings:         result.Analysis.Warnings,
		},
	}
}
