package request

type SignUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	EntitySlug  string `json:"entity_slug" binding:"required"`
}

type CompleteUploadRequest struct {
	Alt    string `json:"alt" binding:"max=512"`
	Format string `json:"format"`
}

type ListAssetsRequest struct {
	Kind       string `form:"kind"`
	EntitySlug string `form:"entity_slug"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PerPage    int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}
