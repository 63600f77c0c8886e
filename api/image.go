package api

type ImageRecord struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Type      string `json:"type"`
	DateAdded string `json:"date_added"`
	FilePath  string `json:"file_path"`
}

type ResizeRequest struct {
	FilePath string `form:"file_path" json:"file_path" binding:"required"`
	Width    *int   `form:"width" json:"width" binding:"required"`
	Height   *int   `form:"height" json:"height" binding:"required"`
}

type RotateRequest struct {
	FilePath string `form:"file_path" json:"file_path" binding:"required"`
	Angle    *int   `form:"angle" json:"angle" binding:"required"`
}

type Message struct {
	Message string `json:"message"`
}

type ErrorDetail struct {
	Detail string `json:"detail"`
}
