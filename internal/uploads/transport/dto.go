package transport

// UploadImageResponse reports a stored image. Orientation is the EXIF
// orientation value (1 when absent) so clients can rotate before display.
type UploadImageResponse struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	Orientation int    `json:"orientation"`
	ExpiresAt   string `json:"expiresAt"`
}
