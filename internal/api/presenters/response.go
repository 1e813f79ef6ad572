package presenters

import (
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, data interface{}, code int, msg string) error {
	return c.Status(code).JSON(Response{
		Code: code,
		Data: data,
		Msg:  msg,
	})
}

func ErrorResponse(c *fiber.Ctx, code int, msg string, err error) error {
	res := Response{
		Code: code,
		Msg:  msg,
	}
	if err != nil {
		res.Error = err.Error()
	}
	return c.Status(code).JSON(res)
}
