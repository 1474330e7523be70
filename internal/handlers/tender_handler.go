package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/apperrors"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/services"
)

type TenderHandler struct {
	tenderService    services.TenderService
	awardCoordinator services.AwardCoordinator
}

func NewTenderHandler(
	tenderService services.TenderService,
	awardCoordinator services.AwardCoordinator,
) *TenderHandler {
	return &TenderHandler{
		tenderService:    tenderService,
		awardCoordinator: awardCoordinator,
	}
}

// HandleCreate handles POST /tenders
func (h *TenderHandler) HandleCreate(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	var req models.CreateTenderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request payload")
	}

	tender, err := h.tenderService.Create(c.Context(), req, actor)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tender)
}

// HandleList handles GET /tenders (open tenders)
func (h *TenderHandler) HandleList(c *fiber.Ctx) error {
	tenders, err := h.tenderService.ListOpen(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tenders": tenders})
}

// HandleGet handles GET /tenders/:id
func (h *TenderHandler) HandleGet(c *fiber.Ctx) error {
	tenderID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	tender, err := h.tenderService.Get(c.Context(), tenderID)
	if err != nil {
		return err
	}
	return c.JSON(tender)
}

// HandleUpdate handles PATCH /tenders/:id
func (h *TenderHandler) HandleUpdate(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	tenderID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var patch models.TenderPatch
	if err := c.BodyParser(&patch); err != nil {
		return apperrors.Validation("invalid request payload")
	}

	tender, err := h.tenderService.Update(c.Context(), tenderID, patch, actor)
	if err != nil {
		return err
	}
	return c.JSON(tender)
}

// HandlePublish handles POST /tenders/:id/publish
func (h *TenderHandler) HandlePublish(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	tenderID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	tender, err := h.tenderService.Publish(c.Context(), tenderID, actor)
	if err != nil {
		return err
	}
	return c.JSON(tender)
}

// HandleClose handles POST /tenders/:id/close
func (h *TenderHandler) HandleClose(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	tenderID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	tender, err := h.tenderService.Close(c.Context(), tenderID, actor)
	if err != nil {
		return err
	}
	return c.JSON(tender)
}

// HandleAward handles POST /tenders/:id/award
func (h *TenderHandler) HandleAward(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	tenderID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		WinningBidID string `json:"winning_bid_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request payload")
	}
	winningBidID, err := parseID(req.WinningBidID, "winning_bid_id")
	if err != nil {
		return err
	}

	tender, err := h.awardCoordinator.Award(c.Context(), tenderID, winningBidID, actor)
	if err != nil {
		return err
	}
	return c.JSON(tender)
}
