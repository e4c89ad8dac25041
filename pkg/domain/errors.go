package domain

import "errors"

var (
	// ErrGenerationFailure は外部サービスが使える画像を返さなかったことを表します。
	ErrGenerationFailure = errors.New("image generation failed")
	// ErrInvalidRequest はリクエストの検証エラーを表します。
	ErrInvalidRequest = errors.New("invalid generation request")
)
