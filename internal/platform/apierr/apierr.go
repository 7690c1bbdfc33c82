// Package apierr は各機能パッケージで共通のエラーモデルと HTTP への変換。
package apierr

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT" // ValidationError
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT" // 貸出中・二重返却・重複関連付け・ISBN/メール重複
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

// CodeOf は err の Code。APIError でなければ INTERNAL。
func CodeOf(err error) Code {
	var api *APIError
	if errors.As(err, &api) {
		return api.Code
	}
	return CodeInternal
}

// IsCode は err が code の APIError かどうか。
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// ToHTTPStatus: 競合も 400 で返す（クライアントからは入力エラーと同じ扱い）
func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidArgument, CodeConflict:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Body は {"error": message} 形式のレスポンス。
func Body(msg string) gin.H {
	return gin.H{"error": msg}
}

// Respond は err をステータスコードとエラーボディに変換して書き込む。
func Respond(c *gin.Context, err error) {
	var api *APIError
	if errors.As(err, &api) {
		c.JSON(ToHTTPStatus(err), Body(api.Message))
		return
	}
	log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, Body(err.Error()))
}

// BadRequest はバインド失敗などハンドラ側で弾く入力エラー用。
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Body(msg))
}
