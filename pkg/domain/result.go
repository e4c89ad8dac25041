package domain

// GenerationResult は1件分の生成結果です。
// ImageDataURI が空なら、その項目は失敗したことを意味します。
type GenerationResult struct {
	Rarity       Rarity `json:"rarity"`
	Theme        string `json:"theme"`
	ImageDataURI string `json:"imageDataUri,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	Error        string `json:"error,omitempty"`
}

// NewSuccessResult は生成済み画像から成功結果を作成します。
func NewSuccessResult(req GenerationRequest, img *ImageResponse) GenerationResult {
	if img == nil || len(img.Data) == 0 {
		return NewFailureResult(req, ErrGenerationFailure)
	}
	return GenerationResult{
		Rarity:       req.Rarity,
		Theme:        req.Theme,
		ImageDataURI: img.DataURI(),
		MimeType:     img.MimeType,
		FileName:     DownloadFileName(req, img.MimeType),
	}
}

// NewFailureResult は失敗マーカーとなる結果を作成します。
func NewFailureResult(req GenerationRequest, err error) GenerationResult {
	msg := ErrGenerationFailure.Error()
	if err != nil {
		msg = err.Error()
	}
	return GenerationResult{
		Rarity: req.Rarity,
		Theme:  req.Theme,
		Error:  msg,
	}
}

// Succeeded は画像が得られたかどうかを返します。
func (r GenerationResult) Succeeded() bool {
	return r.ImageDataURI != ""
}
