// internal/app/features/properties/images.go
package properties

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/assets"
	"github.com/dalemusser/listinghub/internal/app/system/formutil"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var errNoAssetStore = apierr.New(apierr.Unavailable, "Image storage is not configured")

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /api/properties/{id}/images                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleAttachImages uploads each "images" part in order and appends the
// results to the property. An upload failure aborts the request; files
// uploaded before it stay in remote storage and the property is unchanged.
func (h *Handler) HandleAttachImages(w http.ResponseWriter, r *http.Request) {
	if h.Assets == nil {
		apierr.Write(w, h.Log, errNoAssetStore)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "image upload")
	defer cancel()

	p, err := h.loadOwned(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	files, err := formutil.Files(w, r, "images")
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	for _, fh := range files {
		if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
			apierr.Write(w, h.Log, apierr.Validationf("%s is not an image", fh.Filename))
			return
		}
	}

	imgs := make([]models.Image, 0, len(files))
	for _, fh := range files {
		asset, err := h.upload(ctx, fh)
		if err != nil {
			h.Log.Error("image upload failed",
				zap.String("property_id", p.ID.Hex()),
				zap.String("filename", fh.Filename),
				zap.Int("uploaded_before_failure", len(imgs)),
				zap.Error(err))
			apierr.Write(w, h.Log, err)
			return
		}
		imgs = append(imgs, models.Image{URL: asset.URL, AssetID: asset.ID})
	}

	updated, err := h.Props.PushImages(ctx, p.ID, imgs)
	if err != nil {
		apierr.Write(w, h.Log, storeErr(err))
		return
	}
	h.Sync.Upsert(ctx, updated)

	apierr.JSON(w, http.StatusOK, propertyView{Property: *updated})
}

func (h *Handler) upload(ctx context.Context, fh *multipart.FileHeader) (assets.Asset, error) {
	f, err := fh.Open()
	if err != nil {
		return assets.Asset{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	return h.Assets.Upload(ctx, assets.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /api/properties/{id}/images/{imageId}                                |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDetachImage destroys the remote asset, then removes it from the
// property's image list.
func (h *Handler) HandleDetachImage(w http.ResponseWriter, r *http.Request) {
	if h.Assets == nil {
		apierr.Write(w, h.Log, errNoAssetStore)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.loadOwned(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	assetID := chi.URLParam(r, "imageId")
	if !hasImage(p, assetID) {
		apierr.Write(w, h.Log, apierr.NotFoundf("Image not found"))
		return
	}

	if err := h.Assets.Destroy(ctx, assetID); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	updated, err := h.Props.PullImage(ctx, p.ID, assetID)
	if err != nil {
		apierr.Write(w, h.Log, storeErr(err))
		return
	}
	h.Sync.Upsert(ctx, updated)

	apierr.JSON(w, http.StatusOK, propertyView{Property: *updated})
}

func hasImage(p *models.Property, assetID string) bool {
	for _, img := range p.Images {
		if img.AssetID == assetID {
			return true
		}
	}
	return false
}
