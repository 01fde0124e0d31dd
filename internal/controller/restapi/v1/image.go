package v1

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/Image-Hosting/internal/controller/restapi/v1/request"
	"github.com/andreyxaxa/Image-Hosting/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Image-Hosting/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/Image-Hosting/internal/dto"
	"github.com/andreyxaxa/Image-Hosting/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

const (
	msgMissingFields  = "Missing required fields: owner_id, filename, image_data"
	msgInvalidBase64  = "Invalid base64 image data"
	msgInvalidBody    = "Invalid request body"
	msgInvalidLimit   = "Invalid limit parameter"
	msgMissingImageID = "Missing image_id parameter"
	msgImageNotFound  = "Image not found"
	msgUploadFailed   = "Failed to store image"
	msgReadFailed     = "Failed to read image metadata"
	msgListFailed     = "Failed to list images"
	msgPresignFailed  = "Failed to generate download URL"
	msgDeleteFailed   = "Failed to delete image completely"
	msgInternal       = "Internal server error"
	msgUploaded       = "Image uploaded successfully"
	msgDeleted        = "Image deleted successfully"
)

// @Summary  	Upload image
// @Description Stores image bytes in the blob store and its record in the metadata store
// @Tags 		images
// @Accept 		json
// @Produce 	json
// @Param 		request body request.UploadImage true "Image with base64 data"
// @Success 	201 {object} response.UploadImage
// @Failure 	400 {object} response.Error "Missing fields or invalid base64"
// @Failure 	413 {object} response.Error "Body too large"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/images [post]
func (r *V1) uploadImage(ctx *fiber.Ctx) error {
	var req request.UploadImage

	err := ctx.BodyParser(&req)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, msgInvalidBody)
	}

	// 1. required fields
	err = validate.UploadImage(&req)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, msgMissingFields)
	}

	// 2. payload
	data, err := validate.ImageData(req.ImageData)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, msgInvalidBase64)
	}

	// 3. store
	image, err := r.img.Create(ctx.UserContext(), dto.UploadImage{
		OwnerID:     req.OwnerID,
		Filename:    req.Filename,
		Data:        data,
		Tags:        req.Tags,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, errs.ErrValidation) {
			return errorResponse(ctx, http.StatusBadRequest, msgMissingFields)
		}
		r.logger.Error(err, "restapi - v1 - uploadImage")

		return errorResponse(ctx, http.StatusInternalServerError, msgUploadFailed)
	}

	return ctx.Status(http.StatusCreated).JSON(response.UploadImage{
		Message:         msgUploaded,
		ImageID:         image.ID,
		UploadTimestamp: image.UploadTimestamp,
	})
}

// @Summary 	List images
// @Description Lists image records. date_from/date_to apply only together with owner_id
// @Tags 		images
// @Produce 	json
// @Param 		owner_id  query string false "Owner"
// @Param 		tag       query string false "Exact tag match"
// @Param 		date_from query string false "Inclusive lower bound, 2006-01-02T15:04:05.000000Z"
// @Param 		date_to   query string false "Inclusive upper bound, 2006-01-02T15:04:05.000000Z"
// @Param 		limit     query int    false "Page size" default(50)
// @Success 	200 {object} response.ImageList
// @Failure 	400 {object} response.Error "Invalid limit"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/images [get]
func (r *V1) listImages(ctx *fiber.Ctx) error {
	limit, err := validate.Limit(ctx.Query("limit"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, msgInvalidLimit)
	}

	images, err := r.img.List(ctx.UserContext(), dto.ListFilter{
		OwnerID:  ctx.Query("owner_id"),
		Tag:      ctx.Query("tag"),
		DateFrom: ctx.Query("date_from"),
		DateTo:   ctx.Query("date_to"),
		Limit:    limit,
	})
	if err != nil {
		r.logger.Error(err, "restapi - v1 - listImages")

		if r.degradeList {
			resp := response.NewImageList(nil)
			resp.Error = msgListFailed

			return ctx.Status(http.StatusOK).JSON(resp)
		}

		return errorResponse(ctx, http.StatusInternalServerError, msgListFailed)
	}

	return ctx.Status(http.StatusOK).JSON(response.NewImageList(images))
}

// @Summary 	Get image
// @Description Returns the image record with a time-limited download URL
// @Tags 		images
// @Produce 	json
// @Param 		id path string true "Image ID"
// @Success 	200 {object} response.ImageDetail
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/images/{id} [get]
func (r *V1) getImage(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		return errorResponse(ctx, http.StatusBadRequest, msgMissingImageID)
	}

	image, err := r.img.Get(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, msgImageNotFound)
		}
		r.logger.Error(err, "restapi - v1 - getImage")

		return errorResponse(ctx, http.StatusInternalServerError, msgReadFailed)
	}

	url, err := r.img.DownloadURL(ctx.UserContext(), image)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - getImage")

		return errorResponse(ctx, http.StatusInternalServerError, msgPresignFailed)
	}

	return ctx.Status(http.StatusOK).JSON(response.ImageDetail{
		Image:       response.NewImage(image),
		DownloadURL: url,
	})
}

// @Summary 	Delete image
// @Description Deletes the blob and the record. Both are attempted even if one fails
// @Tags 		images
// @Produce 	json
// @Param		id 	path	 string true "Image ID"
// @Success		200 {object} response.Message
// @Failure 	400 {object} response.Error "Missing ID"
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	500 {object} response.PartialDelete "Partial delete"
// @Router 		/v1/images/{id} [delete]
func (r *V1) deleteImage(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		return errorResponse(ctx, http.StatusBadRequest, msgMissingImageID)
	}

	err := r.img.Delete(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, msgImageNotFound)
		}
		r.logger.Error(err, "restapi - v1 - deleteImage")

		var pf *errs.PartialFailureError
		if errors.As(err, &pf) {
			return ctx.Status(http.StatusInternalServerError).JSON(response.PartialDelete{
				Error:         msgDeleteFailed,
				BlobDeleted:   pf.BlobDeleted,
				RecordDeleted: pf.RecordDeleted,
			})
		}

		return errorResponse(ctx, http.StatusInternalServerError, msgInternal)
	}

	return ctx.Status(http.StatusOK).JSON(response.Message{
		Message: msgDeleted,
		ImageID: id,
	})
}
