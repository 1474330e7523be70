package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/apperrors"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/services"
)

type BidHandler struct {
	bidService services.BidService
}

func NewBidHandler(bidService services.BidService) *BidHandler {
	return &BidHandler{bidService: bidService}
}

// HandleCreateDraft handles POST /tenders/:id/bids
func (h *BidHandler) HandleCreateDraft(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	tenderID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateBidDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request payload")
	}

	bid, err := h.bidService.CreateDraft(c.Context(), tenderID, req, actor)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(bid)
}

// HandleGet handles GET /bids/:id
func (h *BidHandler) HandleGet(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	bidID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	bid, err := h.bidService.Get(c.Context(), bidID, actor)
	if err != nil {
		return err
	}
	return c.JSON(bid)
}

// HandleUpdateDraft handles PATCH /bids/:id
func (h *BidHandler) HandleUpdateDraft(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	bidID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var patch models.BidDraftPatch
	if err := c.BodyParser(&patch); err != nil {
		return apperrors.Validation("invalid request payload")
	}

	bid, err := h.bidService.UpdateDraft(c.Context(), bidID, patch, actor)
	if err != nil {
		return err
	}
	return c.JSON(bid)
}

// HandlePreSubmitReview handles GET /bids/:id/readiness
func (h *BidHandler) HandlePreSubmitReview(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	bidID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	checklist, err := h.bidService.PreSubmitReview(c.Context(), bidID, actor)
	if err != nil {
		return err
	}
	return c.JSON(checklist)
}

// HandleSubmit handles POST /bids/:id/submit
func (h *BidHandler) HandleSubmit(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	bidID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	bid, err := h.bidService.Submit(c.Context(), bidID, actor)
	if err != nil {
		return err
	}
	return c.JSON(bid)
}

// HandleWithdraw handles POST /bids/:id/withdraw
func (h *BidHandler) HandleWithdraw(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	bidID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	bid, err := h.bidService.Withdraw(c.Context(), bidID, actor)
	if err != nil {
		return err
	}
	return c.JSON(bid)
}

// HandleDelete handles DELETE /bids/:id
func (h *BidHandler) HandleDelete(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	bidID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.bidService.Delete(c.Context(), bidID, actor); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleHold handles POST /bids/:id/hold
func (h *BidHandler) HandleHold(c *fiber.Ctx) error {
	return h.decide(c, h.bidService.Hold)
}

// HandleAccept handles POST /bids/:id/accept
func (h *BidHandler) HandleAccept(c *fiber.Ctx) error {
	return h.decide(c, h.bidService.Accept)
}

// HandleReject handles POST /bids/:id/reject
func (h *BidHandler) HandleReject(c *fiber.Ctx) error {
	return h.decide(c, h.bidService.Reject)
}

func (h *BidHandler) decide(c *fiber.Ctx, action func(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error)) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	bidID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	bid, err := action(c.Context(), bidID, actor)
	if err != nil {
		return err
	}
	return c.JSON(bid)
}
