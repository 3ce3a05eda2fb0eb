package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/services"
)

type stubTrainerService struct {
	trainers        []models.Trainer
	trainer         *models.Trainer
	availability    []models.AvailabilitySlot
	err             error
	lastCaller      models.Caller
	lastTrainerID   int64
	lastSlots       []models.AvailabilitySlot
	lastProvision   services.ProvisionTrainerInput
	provisionCalled bool
}

func (s *stubTrainerService) ListTrainers(context.Context) ([]models.Trainer, error) {
	return s.trainers, s.err
}

func (s *stubTrainerService) GetTrainer(_ context.Context, trainerID int64) (*models.Trainer, error) {
	s.lastTrainerID = trainerID
	return s.trainer, s.err
}

func (s *stubTrainerService) GetAvailability(_ context.Context, trainerID int64) ([]models.AvailabilitySlot, error) {
	s.lastTrainerID = trainerID
	return s.availability, s.err
}

func (s *stubTrainerService) SetAvailability(_ context.Context, caller models.Caller, trainerID int64, slots []models.AvailabilitySlot) (*models.Trainer, error) {
	s.lastCaller = caller
	s.lastTrainerID = trainerID
	s.lastSlots = slots
	return s.trainer, s.err
}

func (s *stubTrainerService) ProvisionTrainer(_ context.Context, caller models.Caller, input services.ProvisionTrainerInput) (*models.Trainer, error) {
	s.provisionCalled = true
	s.lastCaller = caller
	s.lastProvision = input
	return s.trainer, s.err
}

func TestListTrainersReturnsEmptyArray(t *testing.T) {
	handler := &TrainerHandler{service: &stubTrainerService{}}

	app := fiber.New()
	app.Get("/trainers", handler.ListTrainers)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/trainers", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(body["trainers"]) != "[]" {
		t.Fatalf("expected empty array, got %s", body["trainers"])
	}
}

func TestGetTrainerReturnsNotFound(t *testing.T) {
	service := &stubTrainerService{err: services.ErrTrainerNotFound}
	handler := &TrainerHandler{service: service}

	app := fiber.New()
	app.Get("/trainers/:id", handler.GetTrainer)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/trainers/77", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if service.lastTrainerID != 77 {
		t.Fatalf("expected trainer 77, got %d", service.lastTrainerID)
	}
}

func TestGetAvailabilityReturnsSlots(t *testing.T) {
	service := &stubTrainerService{
		availability: []models.AvailabilitySlot{{Day: "sunday", Time: "10:00"}},
	}
	handler := &TrainerHandler{service: service}

	app := fiber.New()
	app.Get("/trainers/:id/availability", handler.GetAvailability)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/trainers/7/availability", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Availability []models.AvailabilitySlot `json:"availability"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Availability) != 1 || body.Availability[0].Day != "sunday" {
		t.Fatalf("unexpected availability %+v", body.Availability)
	}
}

func TestSetMyAvailabilityUsesCallerAsTrainer(t *testing.T) {
	service := &stubTrainerService{trainer: &models.Trainer{ID: 7}}
	handler := &TrainerHandler{service: service}

	app := fiber.New()
	withIdentity(app, "7", "trainer", "")
	app.Put("/trainers/me/availability", handler.SetMyAvailability)

	req := httptest.NewRequest(http.MethodPut, "/trainers/me/availability", strings.NewReader(`{
		"availability": [{"day": "sunday", "time": "10:00"}, {"day": "monday", "time": "18:30"}]
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastTrainerID != 7 || service.lastCaller.ID != 7 {
		t.Fatalf("expected own schedule update, got trainer %d caller %+v", service.lastTrainerID, service.lastCaller)
	}
	if len(service.lastSlots) != 2 || service.lastSlots[1].Time != "18:30" {
		t.Fatalf("unexpected slots %+v", service.lastSlots)
	}
}

func TestSetAvailabilityRejectsIncompleteSlot(t *testing.T) {
	service := &stubTrainerService{}
	handler := &TrainerHandler{service: service}

	app := fiber.New()
	withIdentity(app, "7", "trainer", "")
	app.Put("/trainers/me/availability", handler.SetMyAvailability)

	req := httptest.NewRequest(http.MethodPut, "/trainers/me/availability", strings.NewReader(`{
		"availability": [{"day": "sunday"}]
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body["error"] != "availability[0].time is required" {
		t.Fatalf("unexpected error %q", body["error"])
	}
	if service.lastSlots != nil {
		t.Fatalf("service should not be called")
	}
}

func TestSetTrainerAvailabilityForbiddenForOtherTrainer(t *testing.T) {
	service := &stubTrainerService{err: services.ErrForbidden}
	handler := &TrainerHandler{service: service}

	app := fiber.New()
	withIdentity(app, "8", "trainer", "")
	app.Put("/admin/trainers/:id/availability", handler.SetTrainerAvailability)

	req := httptest.NewRequest(http.MethodPut, "/admin/trainers/7/availability", strings.NewReader(`{"availability": []}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if service.lastTrainerID != 7 {
		t.Fatalf("expected trainer 7, got %d", service.lastTrainerID)
	}
}

func TestSetAvailabilityAcceptsHalfHourWeek(t *testing.T) {
	service := &stubTrainerService{trainer: &models.Trainer{ID: 7}}
	handler := &TrainerHandler{service: service}

	app := fiber.New()
	withIdentity(app, "7", "trainer", "")
	app.Put("/trainers/me/availability", handler.SetMyAvailability)

	days := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	slots := make([]availabilitySlotRequest, 0, len(days)*48)
	for _, day := range days {
		for minute := 0; minute < 24*60; minute += 30 {
			slots = append(slots, availabilitySlotRequest{
				Day:  day,
				Time: fmt.Sprintf("%02d:%02d", minute/60, minute%60),
			})
		}
	}
	payload, err := json.Marshal(setAvailabilityRequest{Availability: slots})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/trainers/me/availability", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(service.lastSlots) != 336 {
		t.Fatalf("expected 336 slots, got %d", len(service.lastSlots))
	}
}
