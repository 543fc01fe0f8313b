package evidence

import (
	"context"
	"mime"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/blogpipe/internal/model"
)

// ErrNoImages is the hard failure for a visit folder with no photographic
// evidence; nothing downstream can run without it.
var ErrNoImages = eris.New("evidence: no supported images found")

var supportedImageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// IsSupportedImage reports whether the filename carries a supported image
// extension, case-insensitively.
func IsSupportedImage(name string) bool {
	_, ok := supportedImageExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// DiscoverImages recursively enumerates supported images under the visit
// folder. Order is discovery order: case-insensitive by name, stable. Zero
// images returns ErrNoImages.
func (c *Collector) DiscoverImages(ctx context.Context, folder model.VisitFolder) ([]model.ImageRef, error) {
	stack := []string{folder.SourceID}
	var images []model.ImageRef

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := c.backend.List(ctx, dir)
		if err != nil {
			return nil, eris.Wrapf(err, "evidence: scan %s", dir)
		}
		for _, entry := range entries {
			if entry.IsDir {
				stack = append(stack, entry.ID)
				continue
			}
			if !IsSupportedImage(entry.Name) {
				continue
			}
			images = append(images, model.ImageRef{
				ID:       entry.ID,
				Name:     entry.Name,
				MimeType: imageMimeType(entry.Name),
			})
		}
	}

	if len(images) == 0 {
		return nil, eris.Wrapf(ErrNoImages, "folder %s", folder.FolderName)
	}

	sort.SliceStable(images, func(i, j int) bool {
		return strings.ToLower(images[i].Name) < strings.ToLower(images[j].Name)
	})
	return images, nil
}

func imageMimeType(name string) string {
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
