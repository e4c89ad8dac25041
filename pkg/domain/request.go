package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// GenerationRequest は1回の送信で組み立てられる生成要求です。
// 送信ごとに新しく作り、作成後は変更しません。
type GenerationRequest struct {
	Mode         Mode   `json:"mode,omitempty" validate:"omitempty,oneof=card character"`
	Theme        string `json:"theme" validate:"required,oneof=Pirate Ninja 'Ice Cream' Robot Unicorn Wizard Cat Astronaut Superhero Dragon Fairy Alien Zombie Vampire Ghost"`
	Description  string `json:"description,omitempty"` // 追加の自由記述
	Rarity       Rarity `json:"rarity" validate:"required,oneof=Common Rare Epic Legendary Shiny"`
	Attack       *int   `json:"attack,omitempty" validate:"omitempty,min=0,max=100"`
	Defense      *int   `json:"defense,omitempty" validate:"omitempty,min=0,max=100"`
	Size         Size   `json:"size,omitempty" validate:"omitempty,oneof=Tiny Small Medium Large Giant"`
	Height       string `json:"height,omitempty" validate:"max=20"`
	ReferenceURL string `json:"referenceUrl,omitempty" validate:"omitempty,http_url"` // 画風の参照画像（任意）
}

// DefaultRequest はフォームの初期値で埋めたリクエストを返します。
func DefaultRequest() GenerationRequest {
	attack, defense := DefaultAttack, DefaultDefense
	return GenerationRequest{
		Mode:    ModeCard,
		Theme:   DefaultTheme,
		Rarity:  DefaultRarity,
		Attack:  &attack,
		Defense: &defense,
		Size:    DefaultSize,
		Height:  DefaultHeight,
	}
}

// WithRarity はレア度だけを差し替えたコピーを返します。
func (r GenerationRequest) WithRarity(rarity Rarity) GenerationRequest {
	r.Rarity = rarity
	return r
}

// Normalize は列挙値を正規表記にそろえ、前後の空白を取り除いたコピーを返します。
// 検証は行わないので、未知の値はそのまま残るのだ。
func (r GenerationRequest) Normalize() GenerationRequest {
	if t, ok := CanonicalTheme(r.Theme); ok {
		r.Theme = t
	} else {
		r.Theme = strings.TrimSpace(r.Theme)
	}
	if rr, ok := ParseRarity(string(r.Rarity)); ok {
		r.Rarity = rr
	}
	if s, ok := ParseSize(string(r.Size)); ok {
		r.Size = s
	}
	if m, ok := ParseMode(string(r.Mode)); ok {
		r.Mode = m
	}
	r.Description = strings.TrimSpace(r.Description)
	r.Height = strings.TrimSpace(r.Height)
	r.ReferenceURL = strings.TrimSpace(r.ReferenceURL)
	return r
}

// Validate は元のフォームスキーマと同じ規則でリクエストを検証します。
// 規則は構造体タグに書かれていて、go-playground/validator で評価するのだ。
// Normalize 済みのリクエストを渡す前提で、返すエラーはすべて ErrInvalidRequest をラップしています。
func (r GenerationRequest) Validate() error {
	err := requestValidator.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Join(errs...))
}

// describeFieldError はタグ違反を元のフォームと同じ文言に変換します。
func describeFieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "oneof":
		return fmt.Errorf("unknown %s: %q", fe.Field(), fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Errorf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Errorf("%s seems too long (max %s chars)", fe.Field(), fe.Param())
		}
		return fmt.Errorf("%s cannot exceed %s", fe.Field(), fe.Param())
	case "http_url":
		return fmt.Errorf("%s must be an http(s) URL: %q", fe.Field(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Errorf("%s failed on %s", fe.Field(), fe.Tag())
	}
}

var requestValidator = newRequestValidator()

// newRequestValidator はエラーに JSON のフィールド名を使う validator を作ります。
func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}
