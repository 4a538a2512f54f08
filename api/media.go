package api

// MediaRef is a media attachment as stored on a post.
type MediaRef struct {
	ID        string `json:"id" binding:"required"`
	Name      string `json:"name"`
	Type      string `json:"type" binding:"required"`
	Size      int64  `json:"size"`
	URL       string `json:"url,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Media is a MediaRef prepared for display.
type Media struct {
	MediaRef
	DisplayURL string `json:"displayUrl"`
	SizeLabel  string `json:"sizeLabel"`
}

// UploadResult is the per-file outcome of a multipart upload.
type UploadResult struct {
	Name  string    `json:"name"`
	Ref   *MediaRef `json:"ref,omitempty"`
	Error string    `json:"error,omitempty"`
}
