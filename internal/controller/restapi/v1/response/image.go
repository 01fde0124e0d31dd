package response

import "github.com/andreyxaxa/Image-Hosting/internal/entity"

type Error struct {
	Error string `json:"error" example:"Image not found"`
}

type Message struct {
	Message string `json:"message"`
	ImageID string `json:"image_id"`
}

type UploadImage struct {
	Message         string `json:"message"`
	ImageID         string `json:"image_id"`
	UploadTimestamp string `json:"upload_timestamp"`
}

type Image struct {
	ImageID         string   `json:"image_id"`
	OwnerID         string   `json:"owner_id"`
	Filename        string   `json:"filename"`
	UploadTimestamp string   `json:"upload_timestamp"`
	Tags            []string `json:"tags"`
	Description     string   `json:"description"`
}

type ImageDetail struct {
	Image
	DownloadURL string `json:"download_url"`
}

type ImageList struct {
	Images []Image `json:"images"`
	Count  int     `json:"count"`
	Error  string  `json:"error,omitempty"`
}

type PartialDelete struct {
	Error         string `json:"error"`
	BlobDeleted   bool   `json:"blob_deleted"`
	RecordDeleted bool   `json:"record_deleted"`
}

func NewImage(image *entity.Image) Image {
	tags := image.Tags
	if tags == nil {
		tags = []string{}
	}

	return Image{
		ImageID:         image.ID,
		OwnerID:         image.OwnerID,
		Filename:        image.Filename,
		UploadTimestamp: image.UploadTimestamp,
		Tags:            tags,
		Description:     image.Description,
	}
}

func NewImageList(images []*entity.Image) ImageList {
	list := ImageList{Images: make([]Image, 0, len(images))}
	for _, image := range images {
		list.Images = append(list.Images, NewImage(image))
	}
	list.Count = len(list.Images)

	return list
}
