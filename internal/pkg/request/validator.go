package request

import (
	"errors"
	"regexp"

	cErr "bastion/internal/pkg/error"

	"github.com/go-playground/validator/v10"
)

// Validator 由 DTO 實作，提供 "欄位.規則" 對應的自訂錯誤訊息
type Validator interface {
	GetMessages() ValidatorMessages
}

type ValidatorMessages map[string]string

var reg = regexp.MustCompile(`\[\d+\]`)

// GetError 從請求和錯誤中獲取錯誤信息；沒有自訂訊息時回傳 ok=false
func GetError(request Validator, err error) (*cErr.Error, bool) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil, false
	}
	messages := request.GetMessages()
	for _, v := range errs {
		field := reg.ReplaceAllString(v.Field(), ".*")
		if message, exist := messages[field+"."+v.Tag()]; exist {
			return cErr.ValidateErr(message), true
		}
	}
	return nil, false
}
