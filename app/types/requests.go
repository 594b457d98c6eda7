package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type CreateOrderRequest struct {
	RegistrationID int     `json:"registrationId"`
	SheetName      string  `json:"sheetName"`
	Amount         float64 `json:"amount"`
	Description    string  `json:"description"`
}

func NewCreateOrderRequestFromContext(ctx echo.Context) (*CreateOrderRequest, error) {
	var body CreateOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.SheetName = strings.TrimSpace(body.SheetName)
	body.Description = strings.TrimSpace(body.Description)
	return &body, nil
}

func (r *CreateOrderRequest) Validate() error {
	if r.RegistrationID < 1 {
		return errors.New("registrationId is required")
	}
	if r.Amount <= 0 {
		return errors.New("amount must be > 0")
	}
	return nil
}

type CaptureOrderRequest struct {
	OrderID string `json:"orderID"`
}

func NewCaptureOrderRequestFromContext(ctx echo.Context) (*CaptureOrderRequest, error) {
	var body CaptureOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.OrderID = strings.TrimSpace(body.OrderID)
	return &body, nil
}

func (r *CaptureOrderRequest) Validate() error {
	if r.OrderID == "" {
		return errors.New("orderID is required")
	}
	return nil
}
