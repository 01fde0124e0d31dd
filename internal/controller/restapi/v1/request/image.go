package request

type UploadImage struct {
	OwnerID     string   `json:"owner_id"`
	Filename    string   `json:"filename"`
	ImageData   string   `json:"image_data"` // base64
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}
