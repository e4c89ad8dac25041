package generator

import "time"

const (
	UseImageCompression     = true
	ImageCompressionQuality = 75

	// DefaultRequestTimeout は1回の画像生成リクエストに許す最大時間です。
	DefaultRequestTimeout = 2 * time.Minute

	cacheKeyReferenceImage = "reference_image:"
	userRole               = "user"
	modalityText           = "TEXT"
	modalityImage          = "IMAGE"
)
