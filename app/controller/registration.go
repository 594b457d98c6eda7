package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/macoc/registration-service/app/entity"
	"github.com/macoc/registration-service/app/factory"
	"github.com/macoc/registration-service/app/mapper"
	"github.com/macoc/registration-service/app/service"
	"github.com/macoc/registration-service/app/types"
)

const stripeSignatureHeader = "Stripe-Signature"

type RegistrationController struct {
	registrationService *service.RegistrationService
	logger              logrus.FieldLogger
}

func NewRegistrationController(registrationService *service.RegistrationService) *RegistrationController {
	return &RegistrationController{
		registrationService: registrationService,
		logger:              factory.NewModuleLogger("registration-controller"),
	}
}

func (c *RegistrationController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *RegistrationController) SubmitSoloRegistration(ctx echo.Context) error {
	return c.submitRegistration(ctx, entity.SoloPianoSchema(), "Registration submitted successfully")
}

func (c *RegistrationController) SubmitStringRegistration(ctx echo.Context) error {
	return c.submitRegistration(ctx, entity.StringDivisionSchema(), "Registration submitted successfully")
}

func (c *RegistrationController) SubmitTeacherRegistration(ctx echo.Context) error {
	return c.submitRegistration(ctx, entity.TeacherMembershipSchema(), "Teacher membership submitted successfully")
}

func (c *RegistrationController) submitRegistration(ctx echo.Context, schema entity.CategorySchema, message string) error {
	var submission entity.Submission
	if err := ctx.Bind(&submission); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	receipt, err := c.registrationService.SubmitRegistration(ctx.Request().Context(), schema, submission)
	if err != nil {
		if errors.Is(err, service.ErrMissingField) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).
			WithField("category", schema.Category).Error("Submit registration failed")
		return c.writeError(ctx, http.StatusInternalServerError, "Failed to submit registration")
	}

	return ctx.JSON(http.StatusOK, mapper.ReceiptToResponse(receipt, message))
}

func (c *RegistrationController) CreateOrder(ctx echo.Context) error {
	req, err := types.NewCreateOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	orderID, err := c.registrationService.CreatePaymentOrder(ctx.Request().Context(), service.CreateOrderInput{
		RegistrationID: req.RegistrationID,
		SheetName:      req.SheetName,
		Amount:         req.Amount,
		Description:    req.Description,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create order failed")
		return c.writeError(ctx, http.StatusInternalServerError, "Failed to create order")
	}

	return ctx.JSON(http.StatusOK, &types.OrderResponse{ID: orderID})
}

func (c *RegistrationController) CaptureOrder(ctx echo.Context) error {
	req, err := types.NewCaptureOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	status, err := c.registrationService.CaptureOrder(ctx.Request().Context(), req.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).
			WithField("order_id", req.OrderID).Error("Capture order failed")
		return c.writeError(ctx, http.StatusInternalServerError, "Failed to capture payment")
	}

	return ctx.JSON(http.StatusOK, &types.CaptureResponse{Status: status})
}

// StripeWebhook acknowledges every verified event with 200 regardless of
// reconciliation outcome; only an absent or unverifiable signature is an
// error to the provider.
func (c *RegistrationController) StripeWebhook(ctx echo.Context) error {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	signature := ctx.Request().Header.Get(stripeSignatureHeader)
	if signature == "" {
		return c.writeError(ctx, http.StatusBadRequest, "Missing signature")
	}

	if err := c.registrationService.HandleStripeWebhook(ctx.Request().Context(), payload, signature); err != nil {
		if errors.Is(err, service.ErrCallbackRejected) {
			return c.writeError(ctx, http.StatusBadRequest, "Invalid signature")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Stripe webhook failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.WebhookResponse{Received: true})
}

func (c *RegistrationController) Directory(ctx echo.Context) error {
	entries, err := c.registrationService.ListDirectory(ctx.Request().Context())
	if err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Directory listing failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
	return ctx.JSON(http.StatusOK, mapper.DirectoryToResponse(entries))
}

func (c *RegistrationController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
