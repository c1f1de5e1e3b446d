package gpu

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy2d/common"
)

// LoadTexture decodes an image file into an RGBA8 texture. Images are flipped vertically
// so that texture coordinate (0, 0) addresses the bottom-left pixel. A missing or
// undecodable file is logged as a warning.
//
// Parameters:
//   - b: the backend to allocate on
//   - path: the image file path
//   - filter: the sampling filter
//
// Returns:
//   - Texture2D: the loaded texture
//   - bool: false if the file could not be loaded
func LoadTexture(b Backend, path string, filter TextureFilter) (Texture2D, bool) {
	img, err := common.LoadImage(path, true)
	if err != nil {
		common.Logger().Warn("failed to load texture", "path", path, "err", err)
		return Texture2D{}, false
	}
	return uploadImage(b, path, img, filter)
}

// LoadTextures decodes several image files in parallel and uploads them on the calling
// goroutine. Results are in path order; failed entries hold an uninitialized texture
// and false.
func LoadTextures(b Backend, paths []string, filter TextureFilter) ([]Texture2D, []bool) {
	images := make([]common.TextureStagingData, len(paths))
	errs := make([]error, len(paths))

	workers := min(len(paths), runtime.NumCPU())
	if workers > 0 {
		pool := worker.NewDynamicWorkerPool(workers, len(paths), time.Second)
		var wg sync.WaitGroup
		for i, path := range paths {
			wg.Add(1)
			pool.SubmitTask(worker.Task{
				ID:      i,
				Payload: path,
				Do: func() (any, error) {
					defer wg.Done()
					images[i], errs[i] = common.LoadImage(path, true)
					return nil, errs[i]
				},
			})
		}
		wg.Wait()
		pool.Stop()
	}

	textures := make([]Texture2D, len(paths))
	ok := make([]bool, len(paths))
	for i, path := range paths {
		if errs[i] != nil {
			common.Logger().Warn("failed to load texture", "path", path, "err", errs[i])
			continue
		}
		textures[i], ok[i] = uploadImage(b, path, images[i], filter)
	}
	return textures, ok
}

func uploadImage(b Backend, label string, img common.TextureStagingData, filter TextureFilter) (Texture2D, bool) {
	t := NewTexture2D(b, TextureDescriptor{
		Label:  label,
		Width:  img.Width,
		Height: img.Height,
		Format: FormatR8G8B8A8,
		Filter: filter,
		Mipmap: filter == FilterLinear,
	})
	if !t.IsInit() {
		return Texture2D{}, false
	}
	t.SetData(img.Pixels)
	return t, true
}
